package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"whatsfleet/internal/http/handler"
	"whatsfleet/internal/http/middleware"
	"whatsfleet/internal/infra/config"
	"whatsfleet/pkg/logger"

	// Import generated docs
	_ "whatsfleet/docs"
)

// sendMessageRateLimitPerMinute bounds how many ad-hoc messages a single API
// key may dispatch through /send-message.
const sendMessageRateLimitPerMinute = 100

// Router holds all route handlers and dependencies
type Router struct {
	deviceHandler    *handler.DeviceHandler
	broadcastHandler *handler.BroadcastHandler
	messageHandler   *handler.MessageHandler
	healthHandler    *handler.HealthHandler
	config           *config.Config
	logger           logger.Logger
}

// NewRouter creates a new router with all handlers
func NewRouter(
	deviceHandler *handler.DeviceHandler,
	broadcastHandler *handler.BroadcastHandler,
	messageHandler *handler.MessageHandler,
	healthHandler *handler.HealthHandler,
	config *config.Config,
	logger logger.Logger,
) *Router {
	return &Router{
		deviceHandler:    deviceHandler,
		broadcastHandler: broadcastHandler,
		messageHandler:   messageHandler,
		healthHandler:    healthHandler,
		config:           config,
		logger:           logger,
	}
}

// SetupRoutes configures all routes and middleware
func (rt *Router) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	rt.setupGlobalMiddleware(r)
	rt.setupHealthRoutes(r)
	rt.setupSwaggerRoute(r)
	rt.setupAPIRoutes(r)

	return r
}

// setupGlobalMiddleware configures global middleware
func (rt *Router) setupGlobalMiddleware(r *chi.Mux) {
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())

	corsConfig := &middleware.CORSConfig{
		AllowedOrigins:   rt.config.Server.CORS.AllowedOrigins,
		AllowedMethods:   rt.config.Server.CORS.AllowedMethods,
		AllowedHeaders:   rt.config.Server.CORS.AllowedHeaders,
		AllowCredentials: rt.config.Server.CORS.AllowCredentials,
		MaxAge:           rt.config.Server.CORS.MaxAge,
	}
	r.Use(middleware.CORSMiddleware(corsConfig))

	r.Use(middleware.LoggingMiddleware(rt.logger))

	rateLimitConfig := &middleware.RateLimitConfig{
		RequestsPerMinute: rt.config.Server.RateLimit.RequestsPerMinute,
		BurstSize:         rt.config.Server.RateLimit.BurstSize,
		KeyFunc: func(r *http.Request) string {
			return r.RemoteAddr
		},
	}
	r.Use(middleware.RateLimitMiddleware(rateLimitConfig, rt.logger))

	r.Use(middleware.ValidationMiddleware(rt.logger))
}

// setupHealthRoutes configures the unauthenticated health route.
func (rt *Router) setupHealthRoutes(r *chi.Mux) {
	r.Get("/health", rt.healthHandler.Health)
}

// setupAPIRoutes configures API routes with authentication
func (rt *Router) setupAPIRoutes(r *chi.Mux) {
	if rt.config.Auth.Enabled {
		switch rt.config.Auth.Type {
		case "api_key":
			authConfig := &middleware.AuthConfig{
				APIKeys:    rt.config.Auth.APIKeys,
				OwnerByKey: rt.config.Auth.OwnerByKey,
				SkipPaths:  []string{"/health", "/swagger"},
				HeaderName: rt.config.Auth.HeaderName,
			}
			r.Use(middleware.AuthMiddleware(authConfig, rt.logger))
		case "basic":
			r.Use(middleware.BasicAuthMiddleware(
				rt.config.Auth.BasicAuth.Username,
				rt.config.Auth.BasicAuth.Password,
				rt.logger,
			))
		}
	}

	rt.setupDeviceRoutes(r)
	rt.setupBroadcastRoutes(r)
	rt.setupMessageRoutes(r)
}

// setupDeviceRoutes configures device lifecycle routes (§4.1-4.3).
func (rt *Router) setupDeviceRoutes(r chi.Router) {
	r.Route("/devices", func(r chi.Router) {
		r.Post("/", rt.deviceHandler.CreateDevice)
		r.Get("/", rt.deviceHandler.ListDevices)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", rt.deviceHandler.GetDevice)
			r.Delete("/", rt.deviceHandler.DeleteDevice)

			r.Post("/connect", rt.deviceHandler.ConnectDevice)
			r.Post("/disconnect", rt.deviceHandler.DisconnectDevice)
			r.Post("/logout", rt.deviceHandler.LogoutDevice)
			r.Post("/pair", rt.deviceHandler.PairDevice)
			r.Post("/proxy", rt.deviceHandler.SetProxy)
		})
	})
}

// setupBroadcastRoutes configures the durable broadcast dispatcher's HTTP
// surface (§4.5).
func (rt *Router) setupBroadcastRoutes(r chi.Router) {
	r.Route("/broadcasts", func(r chi.Router) {
		r.Post("/", rt.broadcastHandler.CreateBroadcast)
		r.Get("/", rt.broadcastHandler.ListBroadcasts)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", rt.broadcastHandler.GetBroadcast)
			r.Post("/cancel", rt.broadcastHandler.CancelBroadcast)
		})
	})
}

// setupMessageRoutes configures the ad-hoc single-message send endpoint and
// group listing, both reading the live Connection Manager directly (§6).
func (rt *Router) setupMessageRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.SendMessageRateLimitMiddleware(sendMessageRateLimitPerMinute))
		r.Post("/send-message", rt.messageHandler.SendMessage)
	})

	r.Get("/api/groups/{deviceId}", rt.messageHandler.ListGroups)
}

// setupSwaggerRoute configures the Swagger documentation route
func (rt *Router) setupSwaggerRoute(r *chi.Mux) {
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
