package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/interfaces/http/middleware"
)

// SessionManager opens, refreshes and closes UI sessions
type SessionManager interface {
	UnauthorizedHandler
	Login(ctx context.Context, credentials identity.Credentials) (*identity.Session, error)
	Refresh(ctx context.Context, id string) (*identity.Session, error)
	Logout(ctx context.Context, id string) error
}

// AuthHandler handles the authentication endpoints
type AuthHandler struct {
	BaseHandler
	sessions SessionManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions SessionManager, cfg SessionConfig) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(sessions, cfg),
		sessions:    sessions,
	}
}

// LoginRequest is the login form
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
}

// SessionResponse describes an open session. Tokens stay on the server.
type SessionResponse struct {
	SessionID           string         `json:"sessionId,omitempty"`
	OrganizationID      string         `json:"organizationId"`
	ExpiresAt           time.Time      `json:"expiresAt"`
	CurrentUser         *identity.User `json:"currentUser"`
	CurrentUserComplete *identity.User `json:"currentUserComplete,omitempty"`
	DisplayName         string         `json:"displayName"`
	IsAdmin             bool           `json:"isAdmin"`
}

func newSessionResponse(s *identity.Session) SessionResponse {
	resp := SessionResponse{
		SessionID:           s.ID,
		OrganizationID:      s.OrganizationID,
		ExpiresAt:           s.ExpiresAt,
		CurrentUser:         s.CurrentUser,
		CurrentUserComplete: s.CurrentUserComplete,
	}
	profile := s.CurrentUserComplete
	if profile == nil {
		profile = s.CurrentUser
	}
	if profile != nil {
		resp.DisplayName = profile.DisplayName()
	}
	for _, u := range []*identity.User{s.CurrentUser, s.CurrentUserComplete} {
		if u != nil && u.IsAdmin() {
			resp.IsAdmin = true
		}
	}
	return resp
}

// Login handles POST /auth/login
// @ID           loginSession
// @Summary      Open a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	s, err := h.sessions.Login(c.Request.Context(), identity.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, s.ID)
	c.Header(h.session.HeaderName, s.ID)
	h.Success(c, newSessionResponse(s))
}

// Refresh handles POST /auth/refresh
// @ID           refreshSession
// @Summary      Refresh the session tokens
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Failure      401 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	id := h.sessionID(c)
	if id == "" {
		h.HandleError(c, shared.ErrSessionNotFound)
		return
	}

	s, err := h.sessions.Refresh(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setSessionCookie(c, s.ID)
	h.Success(c, newSessionResponse(s))
}

// Logout handles POST /auth/logout. It always succeeds for the caller.
// @ID           logoutSession
// @Summary      Close the session
// @Tags         auth
// @Produce      json
// @Success      204
// @Security     SessionID
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if id := h.sessionID(c); id != "" {
		if err := h.sessions.Logout(c.Request.Context(), id); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.clearSessionCookie(c)
	h.NoContent(c)
}

// Me handles GET /auth/me
// @ID           getSessionUser
// @Summary      Current session user
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Failure      401 {object} dto.Response
// @Security     SessionID
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	s := middleware.GetSession(c)
	if s == nil {
		h.HandleError(c, shared.ErrSessionNotFound)
		return
	}
	h.Success(c, newSessionResponse(s))
}
