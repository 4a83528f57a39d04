package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/listing"
	"github.com/jass/bff/internal/application/session"
	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/jass/bff/internal/infrastructure/upstream"
	"github.com/jass/bff/internal/interfaces/http/dto"
	"github.com/jass/bff/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// UnauthorizedHandler applies the 401 policy to a session
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context, id, requestURL string) session.Decision
}

// SessionConfig describes how the session id travels between the UI and
// the BFF
type SessionConfig struct {
	HeaderName   string
	CookieName   string
	CookieDomain string
	CookieSecure bool
	MaxAge       time.Duration
	LoginPath    string
}

// BaseHandler provides common handler utilities
type BaseHandler struct {
	unauthorized UnauthorizedHandler
	session      SessionConfig
}

// NewBaseHandler creates a BaseHandler. unauthorized may be nil in handlers
// that never call an upstream service.
func NewBaseHandler(unauthorized UnauthorizedHandler, cfg SessionConfig) BaseHandler {
	if cfg.HeaderName == "" {
		cfg.HeaderName = middleware.DefaultSessionHeader
	}
	if cfg.CookieName == "" {
		cfg.CookieName = middleware.DefaultSessionCookie
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}
	return BaseHandler{unauthorized: unauthorized, session: cfg}
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithWarnings sends a success response carrying name resolution
// warnings in its meta
func (h *BaseHandler) SuccessWithWarnings(c *gin.Context, data any, warnings []string) {
	c.JSON(http.StatusOK, dto.NewWarningsResponse(data, warnings))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status and code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts application errors to HTTP responses.
//
// Upstream failures keep their 4xx status and become 502 otherwise. A 401
// goes through the session policy, which may clear the session and tell
// the UI to go back to the login page.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)
	log := logger.L(c.Request.Context())

	if ue, ok := upstream.AsError(err); ok {
		if ue.IsUnauthorized() {
			h.handleUnauthorized(c, ue)
			return
		}
		status := dto.UpstreamHTTPStatus(ue.StatusCode)
		if status >= http.StatusInternalServerError {
			log.Error("Upstream request failed", zap.Error(err))
		}
		c.JSON(status, dto.NewErrorResponseWithRequestID(dto.UpstreamErrorCode(ue.StatusCode), ue.UserMessage(), requestID))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if code == dto.ErrCodeUnauthorized {
			h.clearSessionCookie(c)
			c.JSON(http.StatusUnauthorized, dto.NewRedirectErrorResponse(
				code, domainErr.Message, requestID, h.session.LoginPath))
			return
		}
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn("Request timed out", zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeUpstream, upstream.StatusMessage(http.StatusServiceUnavailable), requestID))
		return
	}

	log.Error("Unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal, upstream.StatusMessage(http.StatusInternalServerError), requestID))
}

func (h *BaseHandler) handleUnauthorized(c *gin.Context, ue *upstream.Error) {
	requestID := middleware.GetRequestID(c)
	decision := session.Decision{ClearCredentials: true, RedirectTo: h.session.LoginPath}
	if h.unauthorized != nil {
		decision = h.unauthorized.HandleUnauthorized(c.Request.Context(), h.sessionID(c), ue.URL)
	}

	if !decision.ClearCredentials {
		// the session stays; the caller lacks permission on that service
		c.JSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeForbidden, upstream.StatusMessage(http.StatusForbidden), requestID))
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusUnauthorized, dto.NewRedirectErrorResponse(
		dto.ErrCodeUnauthorized, ue.UserMessage(), requestID, decision.RedirectTo))
}

func (h *BaseHandler) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, id, int(h.session.MaxAge.Seconds()), "/", h.session.CookieDomain, h.session.CookieSecure, true)
}

func (h *BaseHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, "", -1, "/", h.session.CookieDomain, h.session.CookieSecure, true)
}

// sessionID returns the id of the caller's session, whether or not it is
// still valid
func (h *BaseHandler) sessionID(c *gin.Context) string {
	if id := c.GetString(middleware.SessionIDKey); id != "" {
		return id
	}
	return middleware.SessionIDFromRequest(c, h.session.HeaderName, h.session.CookieName)
}

// reservedParams are list query parameters that are not equality filters
var reservedParams = map[string]bool{
	"search":          true,
	"sort_by":         true,
	"sort_dir":        true,
	"page":            true,
	"page_size":       true,
	"organization_id": true,
	"format":          true,
	"paper":           true,
	"orientation":     true,
}

// listQuery reads search, sort, paging and the remaining parameters as
// equality filters
func listQuery(c *gin.Context) (listing.Query, error) {
	q := listing.Query{
		Search:  strings.TrimSpace(c.Query("search")),
		SortBy:  strings.TrimSpace(c.Query("sort_by")),
		Filters: map[string]string{},
	}
	if dir := strings.TrimSpace(c.Query("sort_dir")); dir != "" {
		q.SortDir = listing.ParseSortDir(dir)
	}

	var err error
	if q.Page, err = intParam(c, "page"); err != nil {
		return listing.Query{}, err
	}
	if q.PageSize, err = intParam(c, "page_size"); err != nil {
		return listing.Query{}, err
	}

	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		if v := strings.TrimSpace(values[0]); v != "" {
			q.Filters[key] = v
		}
	}
	return q, nil
}

func intParam(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.NewDomainError("INVALID_INPUT", "El parámetro "+name+" debe ser numérico")
	}
	return n, nil
}

// organizationScope returns the organization whose data the caller sees.
// Super administrators may pick any organization with organization_id;
// everyone else is held to the organization of their session.
func organizationScope(c *gin.Context) string {
	requested := strings.TrimSpace(c.Query("organization_id"))
	s := middleware.GetSession(c)
	if s == nil {
		return requested
	}
	if s.OrganizationID == "" || isSuperAdmin(s) {
		if requested != "" {
			return requested
		}
	}
	return s.OrganizationID
}

// organizationFilter narrows organization-level reads with the same rule as
// canAccessOrganization: callers bound to an organization only see theirs,
// while super administrators see every organization unless they pass
// organization_id. An empty result means no restriction.
func organizationFilter(c *gin.Context) string {
	requested := strings.TrimSpace(c.Query("organization_id"))
	s := middleware.GetSession(c)
	if s == nil || s.OrganizationID == "" || isSuperAdmin(s) {
		return requested
	}
	return s.OrganizationID
}

func isSuperAdmin(s *identity.Session) bool {
	for _, u := range []*identity.User{s.CurrentUser, s.CurrentUserComplete} {
		if u != nil && u.HasRole(identity.RoleSuperAdmin) {
			return true
		}
	}
	return false
}

// respondPage sends one page of an enriched listing
func respondPage[T any](c *gin.Context, r *listing.Result[T]) {
	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Data:    r.Items,
		Meta: &dto.Meta{
			Total:      int64(r.Total),
			Page:       r.Page.Page,
			PageSize:   r.PageSize,
			TotalPages: r.TotalPages,
			Warnings:   r.Warnings,
		},
	})
}

// scopedList builds the handler of a listing read within the caller's
// organization
func scopedList[T any](h *BaseHandler, list func(ctx context.Context, organizationID string, q listing.Query) (*listing.Result[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := listQuery(c)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		result, err := list(c.Request.Context(), organizationScope(c), q)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		respondPage(c, result)
	}
}
