package dto

import "time"

// SuccessResponse represents a generic success response
// @Description Resposta de sucesso padrão da API
type SuccessResponse struct {
	Success bool        `json:"success" example:"true" description:"Indica se a operação foi bem-sucedida"`
	Message string      `json:"message" example:"Operação realizada com sucesso" description:"Mensagem descritiva do resultado"`
	Data    interface{} `json:"data,omitempty" description:"Dados retornados pela operação (opcional)"`
}

// ErrorResponse represents a generic error response
// @Description Resposta de erro padrão da API
type ErrorResponse struct {
	Success bool        `json:"success" example:"false" description:"Sempre false para respostas de erro"`
	Error   string      `json:"error" example:"Erro interno do servidor" description:"Mensagem de erro"`
	Code    string      `json:"code,omitempty" example:"INTERNAL_ERROR" description:"Código do erro (opcional)"`
	Details string      `json:"details,omitempty" example:"Detalhes técnicos do erro" description:"Detalhes adicionais do erro (opcional)"`
	Context interface{} `json:"context,omitempty" description:"Contexto adicional do erro (opcional)"`
}

// ValidationErrorResponse represents a validation error response
type ValidationErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Fields  []ValidationFieldError `json:"fields"`
}

// ValidationFieldError represents a field validation error
type ValidationFieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// PaginationRequest represents pagination parameters
// @Description Parâmetros de paginação para listagens
type PaginationRequest struct {
	Limit  int `json:"limit" query:"limit" validate:"min=1,max=100" example:"10" description:"Número máximo de itens por página (1-100)"`
	Offset int `json:"offset" query:"offset" validate:"min=0" example:"0" description:"Número de itens a pular (para paginação)"`
}

// Normalize fills in sane defaults for zero-valued pagination fields.
func (req *PaginationRequest) Normalize() {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Pages  int `json:"pages"`
}

// HealthResponse represents the health check response.
// @Description Resposta do health check da aplicação
type HealthResponse struct {
	Status            string    `json:"status" example:"healthy" description:"Status geral da aplicação"`
	ActiveConnections int       `json:"activeConnections" example:"12" description:"Dispositivos com sessão WhatsApp conectada neste servidor"`
	Timestamp         time.Time `json:"timestamp" example:"2024-01-01T12:00:00Z" description:"Timestamp da verificação"`
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// NewSuccessResponse creates a new success response
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(error, code, details string) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   error,
		Code:    code,
		Details: details,
	}
}

// NewErrorResponseWithContext creates a new error response carrying
// structured context (field/tag/value or other mapper-attached details).
func NewErrorResponseWithContext(error, code, details string, context interface{}) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   error,
		Code:    code,
		Details: details,
		Context: context,
	}
}

// NewValidationErrorResponse creates a new validation error response
func NewValidationErrorResponse(fields []ValidationFieldError) *ValidationErrorResponse {
	return &ValidationErrorResponse{
		Success: false,
		Error:   "Validation failed",
		Code:    "VALIDATION_ERROR",
		Fields:  fields,
	}
}

// CalculatePages calculates the number of pages for pagination
func (p *PaginationResponse) CalculatePages() {
	if p.Limit > 0 {
		p.Pages = (p.Total + p.Limit - 1) / p.Limit
	}
}

// NewPaginationResponse creates a new pagination response
func NewPaginationResponse(total, limit, offset int) *PaginationResponse {
	pagination := &PaginationResponse{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	pagination.CalculatePages()
	return pagination
}
