package identity

import (
	"context"
	"time"
)

// Session holds the authentication state of one UI session. Its fields are
// the five values the administration UI keeps between page loads.
type Session struct {
	ID                  string    `json:"id"`
	Token               string    `json:"token"`
	RefreshToken        string    `json:"refreshToken"`
	CurrentUser         *User     `json:"currentUser,omitempty"`
	CurrentUserComplete *User     `json:"currentUserComplete,omitempty"`
	OrganizationID      string    `json:"organizationId"`
	CreatedAt           time.Time `json:"createdAt"`
	ExpiresAt           time.Time `json:"expiresAt"`
}

// IsExpired reports whether the session is past its expiry
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// ClearCredentials drops every stored credential and profile
func (s *Session) ClearCredentials() {
	s.Token = ""
	s.RefreshToken = ""
	s.CurrentUser = nil
	s.CurrentUserComplete = nil
	s.OrganizationID = ""
}

// HasCredentials reports whether the session still carries an access token
func (s *Session) HasCredentials() bool {
	return s.Token != ""
}

// SessionStore persists sessions keyed by session id
type SessionStore interface {
	// Save stores the session until ttl elapses
	Save(ctx context.Context, session *Session, ttl time.Duration) error

	// Get returns the session, or shared.ErrSessionNotFound
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes the session
	Delete(ctx context.Context, id string) error
}

// Tokens is the token pair issued by the authentication service
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Tokens
	User *User `json:"userInfo,omitempty"`
}

// Credentials are the login form values
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
