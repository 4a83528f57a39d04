// Package auth inspects the access tokens issued by the JASS authentication
// service and stores UI sessions.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jass/bff/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
)

// Claims are the claims the JASS authentication service puts in its access
// tokens. Keycloak-style tokens carry the roles under realm_access.
type Claims struct {
	jwt.RegisteredClaims
	UserID            string      `json:"userId,omitempty"`
	OrganizationID    string      `json:"organizationId,omitempty"`
	Username          string      `json:"username,omitempty"`
	PreferredUsername string      `json:"preferred_username,omitempty"`
	Roles             []string    `json:"roles,omitempty"`
	RealmAccess       realmAccess `json:"realm_access"`
}

type realmAccess struct {
	Roles []string `json:"roles,omitempty"`
}

// UserRef returns the user id, falling back to sub
func (c *Claims) UserRef() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// Name returns the username, falling back to preferred_username
func (c *Claims) Name() string {
	if c.Username != "" {
		return c.Username
	}
	return c.PreferredUsername
}

// AllRoles merges the top-level and realm roles
func (c *Claims) AllRoles() []string {
	all := append(append([]string{}, c.Roles...), c.RealmAccess.Roles...)
	roles := make([]string, 0, len(all))
	seen := make(map[string]struct{}, len(all))
	for _, r := range all {
		key := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(r)), "ROLE_")
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		seen[key] = struct{}{}
		roles = append(roles, key)
	}
	return roles
}

// Expiry returns the token expiry, or the zero time when absent
func (c *Claims) Expiry() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// TokenInspector reads access tokens. The tokens are issued upstream, so the
// signature is only checked when a shared secret is configured.
type TokenInspector struct {
	secret []byte
	verify bool
	parser *jwt.Parser
}

// NewTokenInspector creates a token inspector
func NewTokenInspector(cfg config.JWTConfig) *TokenInspector {
	return &TokenInspector{
		secret: []byte(cfg.Secret),
		verify: cfg.VerifySignature && cfg.Secret != "",
		parser: jwt.NewParser(jwt.WithLeeway(30 * time.Second)),
	}
}

// VerifiesSignature reports whether signatures are checked
func (i *TokenInspector) VerifiesSignature() bool {
	return i.verify
}

// Inspect parses tokenString and validates its time-based claims
func (i *TokenInspector) Inspect(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	if i.verify {
		_, err := i.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return i.secret, nil
		})
		if err != nil {
			return nil, mapError(err)
		}
		return claims, nil
	}

	if _, _, err := i.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}
	if err := jwt.NewValidator(jwt.WithLeeway(30 * time.Second)).Validate(claims); err != nil {
		return nil, mapError(err)
	}
	return claims, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return ErrInvalidClaims
	default:
		return ErrInvalidToken
	}
}
