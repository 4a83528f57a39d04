package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/session"
	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/upstream"
	"github.com/jass/bff/internal/interfaces/http/dto"
	"github.com/jass/bff/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// MockUnauthorized is a mock implementation of UnauthorizedHandler
type MockUnauthorized struct {
	mock.Mock
}

func (m *MockUnauthorized) HandleUnauthorized(ctx context.Context, id, requestURL string) session.Decision {
	args := m.Called(ctx, id, requestURL)
	return args.Get(0).(session.Decision)
}

// withSession stores s the way SessionAuth does
func withSession(c *gin.Context, s *identity.Session) {
	c.Set(middleware.SessionKey, s)
	c.Set(middleware.SessionIDKey, s.ID)
}

func adminSession(orgID string, roles ...string) *identity.Session {
	if len(roles) == 0 {
		roles = []string{identity.RoleAdmin}
	}
	return &identity.Session{
		ID:             "sess-1",
		Token:          "tok",
		OrganizationID: orgID,
		CurrentUser:    &identity.User{ID: "u-1", Username: "admin", Roles: roles},
	}
}

// newTestEngine returns an engine whose requests carry session s
func newTestEngine(s *identity.Session) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.RequestIDKey, "req-test")
		if s != nil {
			withSession(c, s)
		}
		c.Next()
	})
	return r
}

func perform(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := NewBaseHandler(nil, SessionConfig{})
	c, w := newTestContext(http.MethodGet, "/")

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerCreatedAndNoContent(t *testing.T) {
	h := NewBaseHandler(nil, SessionConfig{})

	c, w := newTestContext(http.MethodPost, "/")
	h.Created(c, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newTestContext(http.MethodDelete, "/")
	h.NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandlerSuccessWithWarnings(t *testing.T) {
	h := NewBaseHandler(nil, SessionConfig{})
	c, w := newTestContext(http.MethodGet, "/")

	h.SuccessWithWarnings(c, "data", []string{"No se pudieron cargar las zonas"})

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, []string{"No se pudieron cargar las zonas"}, resp.Meta.Warnings)
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "domain not found",
			err:            shared.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
			expectedMsg:    "Recurso no encontrado",
		},
		{
			name:           "domain invalid input",
			err:            shared.NewDomainError("INVALID_INPUT", "Campo de ordenamiento no válido: foo"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidInput,
			expectedMsg:    "Campo de ordenamiento no válido: foo",
		},
		{
			name:           "wrapped domain error",
			err:            fmt.Errorf("get client: %w", shared.ErrForbidden),
			expectedStatus: http.StatusForbidden,
			expectedCode:   dto.ErrCodeForbidden,
		},
		{
			name:           "upstream not found keeps status",
			err:            &upstream.Error{Service: "users", URL: "http://users/api/users/9", StatusCode: http.StatusNotFound},
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
			expectedMsg:    "Recurso no encontrado",
		},
		{
			name:           "upstream message wins",
			err:            &upstream.Error{Service: "users", StatusCode: http.StatusConflict, Message: "El DNI ya está registrado"},
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeConflict,
			expectedMsg:    "El DNI ya está registrado",
		},
		{
			name:           "upstream 500 becomes bad gateway",
			err:            &upstream.Error{Service: "payments", StatusCode: http.StatusInternalServerError},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   dto.ErrCodeUpstream,
		},
		{
			name:           "transport failure becomes bad gateway",
			err:            &upstream.Error{Service: "payments", Err: errors.New("connection refused")},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   dto.ErrCodeUpstream,
			expectedMsg:    "Servicio no disponible",
		},
		{
			name:           "session error",
			err:            shared.ErrSessionNotFound,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   dto.ErrCodeUnauthorized,
			expectedMsg:    "La sesión no existe o ha expirado",
		},
		{
			name:           "deadline",
			err:            fmt.Errorf("list: %w", context.DeadlineExceeded),
			expectedStatus: http.StatusGatewayTimeout,
			expectedCode:   dto.ErrCodeUpstream,
		},
		{
			name:           "unknown error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
			expectedMsg:    "Error interno del servidor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBaseHandler(nil, SessionConfig{})
			c, w := newTestContext(http.MethodGet, "/")
			c.Set(middleware.RequestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, resp.Error.Message)
			}
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "/auth/login", resp.Error.RedirectTo)
			} else {
				assert.Empty(t, resp.Error.RedirectTo)
			}
		})
	}
}

func TestBaseHandlerHandleError_Nil(t *testing.T) {
	h := NewBaseHandler(nil, SessionConfig{})
	c, w := newTestContext(http.MethodGet, "/")

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}

func TestBaseHandlerHandleError_UnauthorizedClearsSession(t *testing.T) {
	policy := new(MockUnauthorized)
	h := NewBaseHandler(policy, SessionConfig{CookieName: "jass_session"})
	c, w := newTestContext(http.MethodGet, "/api/v1/admin/clients")
	withSession(c, adminSession("org-1"))

	url := "https://lab.vallegrande.edu.pe/jass/ms-users/api/auth/me"
	policy.On("HandleUnauthorized", mock.Anything, "sess-1", url).
		Return(session.Decision{ClearCredentials: true, RedirectTo: "/auth/login"})

	h.HandleError(c, &upstream.Error{Service: "auth", URL: url, StatusCode: http.StatusUnauthorized})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "/auth/login", resp.Error.RedirectTo)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "jass_session=;")
	policy.AssertExpectations(t)
}

func TestBaseHandlerHandleError_UnauthorizedOnDirectHostKeepsSession(t *testing.T) {
	policy := new(MockUnauthorized)
	h := NewBaseHandler(policy, SessionConfig{})
	c, w := newTestContext(http.MethodGet, "/api/v1/admin/water-boxes")
	withSession(c, adminSession("org-1"))

	policy.On("HandleUnauthorized", mock.Anything, "sess-1", mock.Anything).Return(session.Decision{})

	h.HandleError(c, &upstream.Error{Service: "infrastructure", URL: "https://lab.vallegrande.edu.pe/jass/ms-infrastructure/api/water-boxes", StatusCode: http.StatusUnauthorized})

	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
	assert.Empty(t, resp.Error.RedirectTo)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestListQuery(t *testing.T) {
	c, _ := newTestContext(http.MethodGet,
		"/?search=%20ana%20&status=ACTIVE&zone_id=&sort_by=name&sort_dir=DESC&page=2&page_size=25&organization_id=org-9&format=pdf")

	q, err := listQuery(c)

	require.NoError(t, err)
	assert.Equal(t, "ana", q.Search)
	assert.Equal(t, "name", q.SortBy)
	assert.Equal(t, listing.SortDesc, q.SortDir)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 25, q.PageSize)
	assert.Equal(t, map[string]string{"status": "ACTIVE"}, q.Filters)
}

func TestListQuery_DefaultsLeaveSortDirEmpty(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/")

	q, err := listQuery(c)

	require.NoError(t, err)
	assert.Empty(t, q.SortDir)
	assert.Zero(t, q.Page)
	assert.Empty(t, q.Filters)
}

func TestListQuery_RejectsNonNumericPage(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/?page=abc")

	_, err := listQuery(c)

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestOrganizationScope(t *testing.T) {
	tests := []struct {
		name     string
		session  *identity.Session
		query    string
		expected string
	}{
		{"admin held to own organization", adminSession("org-1"), "?organization_id=org-2", "org-1"},
		{"admin without query", adminSession("org-1"), "", "org-1"},
		{"super admin picks organization", adminSession("org-1", identity.RoleSuperAdmin), "?organization_id=org-2", "org-2"},
		{"super admin defaults to own", adminSession("org-1", identity.RoleSuperAdmin), "", "org-1"},
		{"session without organization", adminSession(""), "?organization_id=org-3", "org-3"},
		{"no session", nil, "?organization_id=org-4", "org-4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/"+tt.query)
			if tt.session != nil {
				withSession(c, tt.session)
			}
			assert.Equal(t, tt.expected, organizationScope(c))
		})
	}
}

func TestRespondPage(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/")
	r := &listing.Result[string]{
		Page:     listing.Page[string]{Items: []string{"a", "b"}, Total: 12, Page: 2, PageSize: 2, TotalPages: 6},
		Warnings: []string{"No se pudieron cargar las calles"},
	}

	respondPage(c, r)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, []any{"a", "b"}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 6, resp.Meta.TotalPages)
	assert.Equal(t, []string{"No se pudieron cargar las calles"}, resp.Meta.Warnings)
}
