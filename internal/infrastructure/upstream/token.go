package upstream

import "context"

type tokenKey struct{}

// WithToken attaches the caller's access token to ctx. Every upstream call
// made with the returned context carries it as a bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the access token attached by WithToken
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	return ""
}
