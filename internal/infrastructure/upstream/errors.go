package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failed call to a JASS upstream service. StatusCode is 0 when
// the request never produced a response.
type Error struct {
	Service    string
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("upstream %s %s %s: %v", e.Service, e.Method, e.URL, e.Err)
	case e.Message != "":
		return fmt.Sprintf("upstream %s %s %s: %d %s", e.Service, e.Method, e.URL, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("upstream %s %s %s: status %d", e.Service, e.Method, e.URL, e.StatusCode)
	}
}

// Unwrap returns the transport error, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the Spanish message shown to the UI. A message sent by the
// upstream service wins over the default for the status code.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode == 0 {
		return StatusMessage(http.StatusServiceUnavailable)
	}
	return StatusMessage(e.StatusCode)
}

// IsUnauthorized reports whether the upstream rejected the credentials
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// StatusMessage maps an HTTP status to the message shown to the user
func StatusMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "Solicitud inválida"
	case http.StatusUnauthorized:
		return "Sesión expirada o no autorizada"
	case http.StatusForbidden:
		return "No tiene permisos para realizar esta acción"
	case http.StatusNotFound:
		return "Recurso no encontrado"
	case http.StatusConflict:
		return "Conflicto con el estado actual del recurso"
	case http.StatusInternalServerError:
		return "Error interno del servidor"
	case http.StatusServiceUnavailable:
		return "Servicio no disponible"
	default:
		return fmt.Sprintf("Error inesperado (código %d)", code)
	}
}

// AsError extracts an *Error from err
func AsError(err error) (*Error, bool) {
	var uerr *Error
	if errors.As(err, &uerr) {
		return uerr, true
	}
	return nil, false
}

// IsStatus reports whether err is an upstream error with the given status
func IsStatus(err error, code int) bool {
	uerr, ok := AsError(err)
	return ok && uerr.StatusCode == code
}
