package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/auth"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/jass/bff/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

// Service owns the UI session: the access and refresh tokens, the user
// profiles and the organization id. It is the only place that clears them.
type Service struct {
	auth      identity.AuthGateway
	users     identity.UserDirectory
	store     identity.SessionStore
	inspector *auth.TokenInspector
	policy    UnauthorizedPolicy
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// Config holds the session settings
type Config struct {
	TTL         time.Duration
	DirectHosts []string
	LoginPath   string
}

// NewService creates a new Service
func NewService(
	authGateway identity.AuthGateway,
	users identity.UserDirectory,
	store identity.SessionStore,
	inspector *auth.TokenInspector,
	cfg Config,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{
		auth:      authGateway,
		users:     users,
		store:     store,
		inspector: inspector,
		policy:    NewUnauthorizedPolicy(cfg.DirectHosts, cfg.LoginPath),
		ttl:       ttl,
		logger:    log,
		now:       time.Now,
	}
}

// Policy returns the 401 policy
func (s *Service) Policy() UnauthorizedPolicy {
	return s.policy
}

// Login authenticates against the gateway and opens a session
func (s *Service) Login(ctx context.Context, credentials identity.Credentials) (*identity.Session, error) {
	credentials.Username = strings.TrimSpace(credentials.Username)
	if credentials.Username == "" || credentials.Password == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Usuario y contraseña son obligatorios")
	}

	result, err := s.auth.Login(ctx, credentials)
	if err != nil {
		return nil, err
	}
	if result == nil || result.AccessToken == "" {
		return nil, shared.ErrUnauthorized
	}

	log := logger.WithLogger(ctx, s.logger)
	claims, err := s.inspector.Inspect(result.AccessToken)
	if err != nil {
		if s.inspector.VerifiesSignature() {
			log.Warn("Rejected access token issued at login", zap.Error(err))
			return nil, shared.ErrUnauthorized
		}
		log.Debug("Access token is not a readable JWT", zap.Error(err))
	}

	user := result.User
	if user == nil && claims != nil {
		user = userFromClaims(claims)
	}
	if user == nil || user.ID == "" {
		return nil, shared.ErrUnauthorized
	}

	now := s.now()
	session := &identity.Session{
		ID:             auth.NewSessionID(),
		Token:          result.AccessToken,
		RefreshToken:   result.RefreshToken,
		CurrentUser:    user,
		OrganizationID: user.OrganizationID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}
	if session.OrganizationID == "" && claims != nil {
		session.OrganizationID = claims.OrganizationID
	}

	// the complete profile is optional; the session works without it
	complete, err := s.users.GetUser(upstream.WithToken(ctx, session.Token), user.ID)
	if err != nil {
		log.Warn("Could not load complete user profile", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		session.CurrentUserComplete = complete
		if session.OrganizationID == "" && complete != nil {
			session.OrganizationID = complete.OrganizationID
		}
	}

	if err := s.store.Save(ctx, session, s.ttl); err != nil {
		return nil, err
	}
	log.Info("Session opened",
		logger.SessionID(session.ID),
		zap.String("user_id", user.ID),
		zap.String("organization_id", session.OrganizationID),
	)
	return session, nil
}

// Authenticate returns the live session for id. An access token that has
// expired is refreshed when a refresh token is available.
func (s *Service) Authenticate(ctx context.Context, id string) (*identity.Session, error) {
	if id == "" {
		return nil, shared.ErrSessionNotFound
	}
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(s.now()) || !session.HasCredentials() {
		_ = s.store.Delete(ctx, id)
		return nil, shared.ErrSessionNotFound
	}

	if _, err := s.inspector.Inspect(session.Token); errors.Is(err, auth.ErrExpiredToken) && session.RefreshToken != "" {
		return s.refresh(ctx, session)
	}
	return session, nil
}

// FromBearer builds a stateless session from a bearer token, for API
// clients that do not hold a session id. Its claims grant roles and an
// organization, so bearer tokens are refused unless their signature is
// verified.
func (s *Service) FromBearer(token string) (*identity.Session, error) {
	if !s.inspector.VerifiesSignature() {
		return nil, shared.ErrUnauthorized
	}
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	claims, err := s.inspector.Inspect(token)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	user := userFromClaims(claims)
	return &identity.Session{
		Token:          token,
		CurrentUser:    user,
		OrganizationID: claims.OrganizationID,
		ExpiresAt:      claims.Expiry(),
	}, nil
}

// Refresh exchanges the refresh token of session id for a new token pair
func (s *Service) Refresh(ctx context.Context, id string) (*identity.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, session)
}

func (s *Service) refresh(ctx context.Context, session *identity.Session) (*identity.Session, error) {
	if session.RefreshToken == "" {
		return nil, shared.ErrUnauthorized
	}
	tokens, err := s.auth.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if ue, ok := upstream.AsError(err); ok && ue.IsUnauthorized() {
			s.HandleUnauthorized(ctx, session.ID, ue.URL)
		}
		return nil, err
	}
	session.Token = tokens.AccessToken
	if tokens.RefreshToken != "" {
		session.RefreshToken = tokens.RefreshToken
	}
	if err := s.store.Save(ctx, session, s.remaining(session)); err != nil {
		return nil, err
	}
	logger.WithLogger(ctx, s.logger).Debug("Session tokens refreshed", logger.SessionID(session.ID))
	return session, nil
}

// Logout revokes the refresh token upstream and deletes the session. A
// missing session is not an error.
func (s *Service) Logout(ctx context.Context, id string) error {
	session, err := s.store.Get(ctx, id)
	if errors.Is(err, shared.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if session.RefreshToken != "" {
		if err := s.auth.Logout(upstream.WithToken(ctx, session.Token), session.RefreshToken); err != nil {
			logger.WithLogger(ctx, s.logger).Warn("Upstream logout failed", zap.Error(err))
		}
	}
	return s.store.Delete(ctx, id)
}

// HandleUnauthorized applies the 401 policy to session id after an upstream
// call to requestURL was rejected
func (s *Service) HandleUnauthorized(ctx context.Context, id, requestURL string) Decision {
	decision := s.policy.Decide(requestURL)
	log := logger.WithLogger(ctx, s.logger)
	if !decision.ClearCredentials {
		log.Info("Upstream denied access, keeping session", zap.String("url", requestURL))
		return decision
	}
	if id != "" {
		if err := s.store.Delete(ctx, id); err != nil {
			log.Warn("Could not clear session", logger.SessionID(id), zap.Error(err))
		}
	}
	log.Info("Session cleared after upstream 401", logger.SessionID(id), zap.String("url", requestURL))
	return decision
}

func (s *Service) remaining(session *identity.Session) time.Duration {
	if session.ExpiresAt.IsZero() {
		return s.ttl
	}
	if left := session.ExpiresAt.Sub(s.now()); left > 0 {
		return left
	}
	return time.Second
}

func userFromClaims(c *auth.Claims) *identity.User {
	return &identity.User{
		ID:             c.UserRef(),
		Username:       c.Name(),
		OrganizationID: c.OrganizationID,
		Roles:          c.AllRoles(),
	}
}
