package printing

import (
	"context"
	"time"

	"github.com/jass/bff/internal/domain/report"
)

// RenderRequest is one HTML document to print
type RenderRequest struct {
	HTML   string
	Layout report.Layout
	// Title becomes the PDF document title when HTML is a fragment
	Title string
	// FooterHTML is repeated at the bottom of every page
	FooterHTML string
	// Timeout overrides the renderer default
	Timeout time.Duration
}

// RenderResult is the printed document
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns report HTML into PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// ErrorCode classifies rendering failures
type ErrorCode string

// Rendering failure codes
const (
	ErrCodeRenderTimeout ErrorCode = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  ErrorCode = "RENDER_FAILED"
	ErrCodeInvalidHTML   ErrorCode = "INVALID_HTML"
	ErrCodeBusy          ErrorCode = "RENDER_BUSY"
)

var userMessages = map[ErrorCode]string{
	ErrCodeRenderTimeout: "La generación del PDF tardó demasiado",
	ErrCodeBusy:          "El generador de PDF está ocupado, intente nuevamente",
	ErrCodeInvalidHTML:   "El reporte no tiene contenido para imprimir",
	ErrCodeRenderFailed:  "No se pudo generar el PDF",
}

// RenderError is a failed Render call. Message is for logs; UserMessage is
// what the UI shows.
type RenderError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// NewRenderError creates a new RenderError
func NewRenderError(code ErrorCode, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the Spanish message for the failure class
func (e *RenderError) UserMessage() string {
	if msg, ok := userMessages[e.Code]; ok {
		return msg
	}
	return userMessages[ErrCodeRenderFailed]
}

// Temporary reports whether retrying later may succeed
func (e *RenderError) Temporary() bool {
	return e.Code == ErrCodeBusy || e.Code == ErrCodeRenderTimeout
}
