package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jass/bff/internal/application/resolver"
	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/jass/bff/internal/infrastructure/upstream"
	"github.com/jass/bff/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Gin context keys set by SessionAuth
const (
	SessionKey   = "session"
	SessionIDKey = "session_id"
)

// Default names of the session id carriers
const (
	DefaultSessionHeader = "X-Session-ID"
	DefaultSessionCookie = "jass_session"
)

// SessionAuthenticator resolves the caller's session
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, id string) (*identity.Session, error)
	FromBearer(token string) (*identity.Session, error)
}

// SessionAuthConfig configures SessionAuth
type SessionAuthConfig struct {
	Sessions SessionAuthenticator
	// Resolver provides the request-scoped lookup tables; optional
	Resolver   *resolver.Resolver
	HeaderName string
	CookieName string
	// LoginPath is sent as redirect_to when there is no valid session
	LoginPath string
	Logger    *zap.Logger
}

// SessionAuth loads the session named by the session header, then the
// session cookie, and finally accepts a bearer token. The session's access
// token is attached to the request context for the upstream clients.
func SessionAuth(cfg SessionAuthConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultSessionHeader
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookie
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		session, err := loadSession(c, cfg)
		if err != nil {
			cfg.Logger.Debug("Request without a valid session",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			message := shared.ErrUnauthorized.Message
			var de *shared.DomainError
			if errors.As(err, &de) {
				message = de.Message
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewRedirectErrorResponse(
				dto.ErrCodeUnauthorized, message, GetRequestID(c), cfg.LoginPath))
			return
		}

		c.Set(SessionKey, session)
		if session.ID != "" {
			c.Set(SessionIDKey, session.ID)
		}

		ctx := upstream.WithToken(c.Request.Context(), session.Token)
		ctx = logger.WithSessionID(ctx, session.ID)
		userID := ""
		if session.CurrentUser != nil {
			userID = session.CurrentUser.ID
		}
		ctx = logger.WithIdentity(ctx, userID, session.OrganizationID)
		if cfg.Resolver != nil {
			ctx = resolver.WithSession(ctx, cfg.Resolver.NewSession())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func loadSession(c *gin.Context, cfg SessionAuthConfig) (*identity.Session, error) {
	if id := SessionIDFromRequest(c, cfg.HeaderName, cfg.CookieName); id != "" {
		return cfg.Sessions.Authenticate(c.Request.Context(), id)
	}
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return cfg.Sessions.FromBearer(authHeader)
	}
	return nil, shared.ErrSessionNotFound
}

// SessionIDFromRequest returns the session id sent in the header, or else
// in the cookie
func SessionIDFromRequest(c *gin.Context, headerName, cookieName string) string {
	if id := strings.TrimSpace(c.GetHeader(headerName)); id != "" {
		return id
	}
	if id, err := c.Cookie(cookieName); err == nil {
		return strings.TrimSpace(id)
	}
	return ""
}

// GetSession returns the session set by SessionAuth, or nil
func GetSession(c *gin.Context) *identity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*identity.Session); ok {
			return s
		}
	}
	return nil
}

// RequireAdmin rejects callers whose user holds neither ADMIN nor SUPER_ADMIN
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAdmin(GetSession(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, shared.ErrForbidden.Message, GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func isAdmin(s *identity.Session) bool {
	if s == nil {
		return false
	}
	for _, u := range []*identity.User{s.CurrentUser, s.CurrentUserComplete} {
		if u != nil && u.IsAdmin() {
			return true
		}
	}
	return false
}
