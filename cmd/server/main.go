// whatsfleet API
//
//	@title			whatsfleet API
//	@version		1.0.0
//	@description	API multi-tenant para gerenciamento de uma frota de dispositivos WhatsApp usando whatsmeow library. Permite registrar dispositivos, conectá-los via QR ou código de pareamento, enviar mensagens avulsas e conduzir disparos em massa.
//	@termsOfService	https://github.com/whatsfleet/whatsfleet/blob/main/LICENSE
//
//	@contact.name	whatsfleet API Support
//	@contact.url	https://github.com/whatsfleet/whatsfleet
//	@contact.email	support@whatsfleet.com
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				API Key para autenticação. Cada chave é vinculada a um dono de frota via AUTH_API_KEYS.
//
//	@securityDefinitions.basic	BasicAuth
//	@description				Autenticação básica HTTP. Configure AUTH_TYPE=basic no .env para habilitar.
//
//	@schemes	http https
//	@produce	json
//	@accept		json
//
//	@tag.name			Devices
//	@tag.description	Operações de gerenciamento de dispositivos WhatsApp
//
//	@tag.name			Broadcasts
//	@tag.description	Disparos em massa de mensagens
//
//	@tag.name			Health
//	@tag.description	Endpoints de monitoramento e saúde da aplicação
package main

import (
	"log"

	"whatsfleet/internal/app"
)

func main() {

	// Initialize and start the application
	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Start the application (this handles graceful shutdown internally)
	if err := application.Start(); err != nil {
		log.Printf("Application stopped: %v", err)
	}

	// Stop the application (cleanup)
	if err := application.Stop(); err != nil {
		log.Printf("Error stopping application: %v", err)
	}

	log.Println("Application stopped gracefully")
}
