package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/auth"
	"github.com/jass/bff/internal/infrastructure/config"
	"github.com/jass/bff/internal/infrastructure/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Login(ctx context.Context, credentials identity.Credentials) (*identity.LoginResult, error) {
	args := m.Called(ctx, credentials)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func (m *MockAuthGateway) Refresh(ctx context.Context, refreshToken string) (*identity.Tokens, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tokens), args.Error(1)
}

func (m *MockAuthGateway) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

type stubUsers struct {
	identity.UserDirectory
	user *identity.User
	err  error
	seen string
}

func (s *stubUsers) GetUser(ctx context.Context, _ string) (*identity.User, error) {
	s.seen = upstream.TokenFromContext(ctx)
	return s.user, s.err
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func validToken(t *testing.T) string {
	return signToken(t, jwt.MapClaims{
		"sub":            "u1",
		"username":       "admin.rinconada",
		"organizationId": "o1",
		"roles":          []string{"ROLE_ADMIN"},
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
}

func expiredToken(t *testing.T) string {
	return signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()})
}

func newTestService(gw *MockAuthGateway, users identity.UserDirectory, store identity.SessionStore) *Service {
	inspector := auth.NewTokenInspector(config.JWTConfig{})
	return NewService(gw, users, store, inspector, Config{
		TTL:         time.Hour,
		DirectHosts: []string{"lab.vallegrande.edu.pe"},
		LoginPath:   "/auth/login",
	}, nil)
}

func TestService_Login(t *testing.T) {
	gw := new(MockAuthGateway)
	token := validToken(t)
	creds := identity.Credentials{Username: "admin.rinconada", Password: "secret"}
	gw.On("Login", mock.Anything, creds).Return(&identity.LoginResult{
		Tokens: identity.Tokens{AccessToken: token, RefreshToken: "refresh-1"},
	}, nil)
	users := &stubUsers{user: &identity.User{ID: "u1", FirstName: "Ana", OrganizationID: "o1"}}
	store := auth.NewInMemorySessionStore()
	svc := newTestService(gw, users, store)

	session, err := svc.Login(context.Background(), identity.Credentials{Username: " admin.rinconada ", Password: "secret"})
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, token, session.Token)
	assert.Equal(t, "refresh-1", session.RefreshToken)
	assert.Equal(t, "o1", session.OrganizationID)
	require.NotNil(t, session.CurrentUser)
	assert.True(t, session.CurrentUser.IsAdmin(), "roles come from the token")
	require.NotNil(t, session.CurrentUserComplete)
	assert.Equal(t, "Ana", session.CurrentUserComplete.FirstName)
	assert.Equal(t, token, users.seen, "profile is fetched with the new token")

	stored, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Token, stored.Token)
}

func TestService_LoginProfileFailureIsTolerated(t *testing.T) {
	gw := new(MockAuthGateway)
	gw.On("Login", mock.Anything, mock.Anything).Return(&identity.LoginResult{
		Tokens: identity.Tokens{AccessToken: "opaque-token"},
		User:   &identity.User{ID: "u1", OrganizationID: "o1"},
	}, nil)
	svc := newTestService(gw, &stubUsers{err: errors.New("users down")}, auth.NewInMemorySessionStore())

	session, err := svc.Login(context.Background(), identity.Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)
	assert.Nil(t, session.CurrentUserComplete)
	assert.Equal(t, "o1", session.OrganizationID)
}

func TestService_LoginErrors(t *testing.T) {
	gw := new(MockAuthGateway)
	rejected := &upstream.Error{Service: "gateway", URL: "https://gw/auth/login", StatusCode: http.StatusUnauthorized}
	gw.On("Login", mock.Anything, identity.Credentials{Username: "bad", Password: "x"}).Return(nil, rejected)
	gw.On("Login", mock.Anything, identity.Credentials{Username: "empty", Password: "x"}).Return(&identity.LoginResult{}, nil)
	svc := newTestService(gw, &stubUsers{}, auth.NewInMemorySessionStore())

	_, err := svc.Login(context.Background(), identity.Credentials{Username: "", Password: "x"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Login(context.Background(), identity.Credentials{Username: "bad", Password: "x"})
	assert.ErrorIs(t, err, rejected)

	_, err = svc.Login(context.Background(), identity.Credentials{Username: "empty", Password: "x"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func saveSession(t *testing.T, store identity.SessionStore, s *identity.Session) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), s, time.Hour))
}

func TestService_Authenticate(t *testing.T) {
	store := auth.NewInMemorySessionStore()
	svc := newTestService(new(MockAuthGateway), &stubUsers{}, store)
	saveSession(t, store, &identity.Session{ID: "s1", Token: validToken(t), ExpiresAt: time.Now().Add(time.Hour)})
	saveSession(t, store, &identity.Session{ID: "s2", Token: "", ExpiresAt: time.Now().Add(time.Hour)})
	saveSession(t, store, &identity.Session{ID: "s3", Token: "x", ExpiresAt: time.Now().Add(-time.Minute)})

	s, err := svc.Authenticate(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)

	for _, id := range []string{"", "s2", "s3", "missing"} {
		_, err := svc.Authenticate(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrSessionNotFound, id)
	}
}

func TestService_AuthenticateRefreshesExpiredToken(t *testing.T) {
	gw := new(MockAuthGateway)
	fresh := validToken(t)
	gw.On("Refresh", mock.Anything, "refresh-1").Return(&identity.Tokens{AccessToken: fresh, RefreshToken: "refresh-2"}, nil)
	store := auth.NewInMemorySessionStore()
	svc := newTestService(gw, &stubUsers{}, store)
	saveSession(t, store, &identity.Session{ID: "s1", Token: expiredToken(t), RefreshToken: "refresh-1", ExpiresAt: time.Now().Add(time.Hour)})

	s, err := svc.Authenticate(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, fresh, s.Token)

	stored, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", stored.RefreshToken)
}

func TestService_RefreshRejectedClearsSession(t *testing.T) {
	gw := new(MockAuthGateway)
	gw.On("Refresh", mock.Anything, "refresh-1").
		Return(nil, &upstream.Error{Service: "gateway", URL: "https://gw.jass.pe/api/auth/refresh", StatusCode: http.StatusUnauthorized})
	store := auth.NewInMemorySessionStore()
	svc := newTestService(gw, &stubUsers{}, store)
	saveSession(t, store, &identity.Session{ID: "s1", Token: "t", RefreshToken: "refresh-1"})

	_, err := svc.Refresh(context.Background(), "s1")
	require.Error(t, err)

	_, err = store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, shared.ErrSessionNotFound)
}

func TestService_HandleUnauthorized(t *testing.T) {
	store := auth.NewInMemorySessionStore()
	svc := newTestService(new(MockAuthGateway), &stubUsers{}, store)
	saveSession(t, store, &identity.Session{ID: "s1", Token: "t"})

	d := svc.HandleUnauthorized(context.Background(), "s1", "https://lab.vallegrande.edu.pe/jass/ms-users/api/admin/users")
	assert.Empty(t, d.RedirectTo)
	assert.Equal(t, 1, store.Len(), "direct-host 401 keeps the session")

	d = svc.HandleUnauthorized(context.Background(), "s1", "https://gw.jass.pe/api/auth/me")
	assert.Equal(t, "/auth/login", d.RedirectTo)
	assert.Equal(t, 0, store.Len())
}

func TestService_Logout(t *testing.T) {
	gw := new(MockAuthGateway)
	gw.On("Logout", mock.Anything, "refresh-1").Return(errors.New("gateway down"))
	store := auth.NewInMemorySessionStore()
	svc := newTestService(gw, &stubUsers{}, store)
	saveSession(t, store, &identity.Session{ID: "s1", Token: "t", RefreshToken: "refresh-1"})

	require.NoError(t, svc.Logout(context.Background(), "s1"), "upstream failure does not keep the session")
	assert.Equal(t, 0, store.Len())
	require.NoError(t, svc.Logout(context.Background(), "s1"))
	gw.AssertNumberOfCalls(t, "Logout", 1)
}

func TestService_FromBearer(t *testing.T) {
	inspector := auth.NewTokenInspector(config.JWTConfig{Secret: "upstream-secret", VerifySignature: true})
	svc := NewService(new(MockAuthGateway), &stubUsers{}, auth.NewInMemorySessionStore(), inspector, Config{}, nil)

	s, err := svc.FromBearer("Bearer " + validToken(t))
	require.NoError(t, err)
	assert.Equal(t, "o1", s.OrganizationID)
	assert.Equal(t, "u1", s.CurrentUser.ID)
	assert.Equal(t, []string{"ADMIN"}, s.CurrentUser.Roles)

	_, err = svc.FromBearer("Bearer " + expiredToken(t))
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestService_FromBearerRejectsForgedToken(t *testing.T) {
	inspector := auth.NewTokenInspector(config.JWTConfig{Secret: "upstream-secret", VerifySignature: true})
	svc := NewService(new(MockAuthGateway), &stubUsers{}, auth.NewInMemorySessionStore(), inspector, Config{}, nil)

	claims := jwt.MapClaims{
		"sub":            "attacker",
		"organizationId": "org-victim",
		"roles":          []string{"SUPER_ADMIN"},
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-upstream-secret"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	parts := strings.Split(validToken(t), ".")
	garbage := parts[0] + "." + parts[1] + ".Z2FyYmFnZQ"

	for name, token := range map[string]string{
		"other key":         otherKey,
		"alg none":          unsigned,
		"garbage signature": garbage,
	} {
		t.Run(name, func(t *testing.T) {
			s, err := svc.FromBearer("Bearer " + token)
			assert.ErrorIs(t, err, shared.ErrUnauthorized)
			assert.Nil(t, s)
		})
	}
}

func TestService_FromBearerWithoutVerification(t *testing.T) {
	svc := newTestService(new(MockAuthGateway), &stubUsers{}, auth.NewInMemorySessionStore())

	s, err := svc.FromBearer("Bearer " + validToken(t))
	assert.ErrorIs(t, err, shared.ErrUnauthorized, "unverified claims never open a session")
	assert.Nil(t, s)
}
