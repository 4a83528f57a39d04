package upstream

import (
	"context"

	"github.com/jass/bff/internal/domain/identity"
)

// AuthClient calls the gateway /auth namespace
type AuthClient struct {
	client *Client
}

// NewAuthClient wraps the gateway client
func NewAuthClient(gateway *Client) *AuthClient {
	return &AuthClient{client: gateway}
}

// Login exchanges credentials for a token pair and the user profile
func (a *AuthClient) Login(ctx context.Context, credentials identity.Credentials) (*identity.LoginResult, error) {
	var result identity.LoginResult
	if err := a.client.Post(ctx, "/auth/login", credentials, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh obtains a new token pair
func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (*identity.Tokens, error) {
	var tokens identity.Tokens
	body := map[string]string{"refreshToken": refreshToken}
	if err := a.client.Post(ctx, "/auth/refresh", body, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Logout revokes the refresh token on the gateway
func (a *AuthClient) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	return a.client.Post(ctx, "/auth/logout", body, nil)
}

var _ identity.AuthGateway = (*AuthClient)(nil)
