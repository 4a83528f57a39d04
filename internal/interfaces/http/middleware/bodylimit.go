package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/interfaces/http/dto"
)

const requestTooLargeMessage = "El cuerpo de la solicitud excede el tamaño permitido"

// BodyLimit rejects bodies larger than maxBytes. A declared Content-Length
// over the limit fails with 413 before the handler runs; bodies without a
// length are cut off by http.MaxBytesReader while the handler reads them.
// A non-positive maxBytes disables the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge, requestTooLargeMessage, GetRequestID(c)))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
