package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Recurso no encontrado")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Datos de entrada inválidos")
	ErrUnauthorized    = NewDomainError("UNAUTHORIZED", "Sesión expirada o no autorizada")
	ErrForbidden       = NewDomainError("FORBIDDEN", "No tiene permisos para realizar esta acción")
	ErrSessionNotFound = NewDomainError("UNAUTHORIZED", "La sesión no existe o ha expirado")
	ErrInvalidReport   = NewDomainError("INVALID_INPUT", "Tipo de reporte no soportado")
)

// Is matches domain errors by code, so errors built with NewDomainError
// satisfy errors.Is against the common errors above.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}
