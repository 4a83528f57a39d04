package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoLength answers with the number of body bytes it could read, or 413
// when the reader hit the limit
func echoLength(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusRequestEntityTooLarge)
		return
	}
	c.String(http.StatusOK, "%d", len(data))
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		limit         int64
		body          string
		contentLength int64
		wantStatus    int
		wantBody      string
	}{
		{"client payload within limit", 64, `{"firstName":"Ana"}`, 19, http.StatusOK, "19"},
		{"declared length over limit", 8, strings.Repeat("x", 32), 32, http.StatusRequestEntityTooLarge, ""},
		{"unknown length over limit", 8, strings.Repeat("x", 32), -1, http.StatusRequestEntityTooLarge, ""},
		{"limit disabled", 0, strings.Repeat("x", 32), 32, http.StatusOK, "32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(BodyLimit(tt.limit))
			r.POST("/api/v1/admin/clients", echoLength)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/clients", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestBodyLimitErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID(), BodyLimit(4))
	r.POST("/api/v1/admin/payments", echoLength)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/payments", strings.NewReader(`{"totalAmount":"25.50"}`))
	req.Header.Set(RequestIDHeader, "req-413")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
	assert.Equal(t, requestTooLargeMessage, resp.Error.Message)
	assert.Equal(t, "req-413", resp.Error.RequestID)
}

func TestBodyLimitSkipsEmptyBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(BodyLimit(1))
	r.GET("/api/v1/admin/fares", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/fares", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
