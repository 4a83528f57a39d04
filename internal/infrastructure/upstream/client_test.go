package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jass/bff/internal/domain/identity"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/jass/bff/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{
		Name:       "users",
		BaseURL:    srv.URL + "/jass/ms-users/",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://x"})
	assert.Error(t, err)

	_, err = NewClient(Config{Name: "users", BaseURL: "ms-users"})
	assert.Error(t, err)
}

func TestClient_Get_UnwrapsEnvelopeAndPropagatesHeaders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jass/ms-users/api/admin/users/u1", r.URL.Path)
		assert.Equal(t, "Bearer caller-token", r.Header.Get("Authorization"))
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":"u1","firstName":"Ana","lastName":"Quispe"}}`)
	})

	ctx := WithToken(context.Background(), "caller-token")
	ctx = logger.WithRequestID(ctx, "req-42")

	var user identity.User
	require.NoError(t, c.Get(ctx, "/api/admin/users/u1", nil, &user))
	assert.Equal(t, "Ana Quispe", user.DisplayName())
}

func TestClient_Get_RawBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"nombres":"JUAN","apellidoPaterno":"PEREZ","apellidoMaterno":"LOPEZ","numeroDocumento":"12345678"}`)
	})

	var person identity.Person
	require.NoError(t, c.Get(context.Background(), "/reniec/dni", nil, &person))
	assert.Equal(t, "JUAN PEREZ LOPEZ", person.FullName())
}

func TestClient_StaticTokenWins(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{}`)
	}, func(cfg *Config) { cfg.StaticToken = "service-token" })

	require.NoError(t, c.Get(WithToken(context.Background(), "caller"), "/x", nil, nil))
}

func TestClient_RetriesGetOnServerError(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, `{}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":[{"id":"u1"}]}`)
	})

	users, err := getList[identity.User](context.Background(), c, "/api/admin/users", nil)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusTooManyRequests, `{}`)
	})

	err := c.Get(context.Background(), "/x", nil, nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusTooManyRequests))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "first attempt plus two retries")
}

func TestClient_DoesNotRetryClientErrorsOrWrites(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusBadGateway, `{}`)
			return
		}
		writeJSON(w, http.StatusNotFound, `{"error":"Not Found","status":404}`)
	})

	err := c.Get(context.Background(), "/missing", nil, nil)
	uerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, uerr.StatusCode)
	assert.Equal(t, "Recurso no encontrado", uerr.UserMessage())
	assert.Equal(t, "users", uerr.Service)

	err = c.Post(context.Background(), "/api/admin/clients", map[string]string{"a": "b"}, nil)
	assert.True(t, IsStatus(err, http.StatusBadGateway))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_UpstreamMessageWins(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, `{"success":false,"message":"El DNI ya está registrado"}`)
	})

	err := c.Post(context.Background(), "/api/admin/clients", map[string]string{}, nil)
	uerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "El DNI ya está registrado", uerr.UserMessage())
}

func TestClient_SuccessFalseIsRejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"message":"Código de pago duplicado","data":null}`)
	})

	var out map[string]any
	err := c.Post(context.Background(), "/api/admin/payments", map[string]string{}, &out)
	uerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, uerr.StatusCode)
	assert.Equal(t, "Código de pago duplicado", uerr.UserMessage())
}

func TestClient_PageContent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "org1", r.URL.Query().Get("organizationId"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"content":[{"id":"a"},{"id":"b"}],"totalElements":2}}`)
	})

	users, err := getList[identity.User](context.Background(), c, "/api/admin/users", orgQuery("org1"))
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b", users[1].ID)
}

func TestClient_NullDataIsEmptyList(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":null}`)
	})

	users, err := getList[identity.User](context.Background(), c, "/api/admin/users", nil)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestClient_TransportErrorAndCancellation(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	}, func(cfg *Config) { cfg.MaxRetries = 0 })
	srv.Close()

	err := c.Get(context.Background(), "/x", nil, nil)
	uerr, ok := AsError(err)
	require.True(t, ok)
	assert.Zero(t, uerr.StatusCode)
	assert.Equal(t, "Servicio no disponible", uerr.UserMessage())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.Get(ctx, "/x", nil, nil))
}

func TestClient_RecordsMetrics(t *testing.T) {
	metrics := telemetry.NewMetrics()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{}}`)
	}))
	defer srv.Close()

	c, err := NewClient(Config{Name: "payments", BaseURL: srv.URL, RatePerSecond: 100, Burst: 5}, WithMetrics(metrics))
	require.NoError(t, err)
	require.NoError(t, c.Get(context.Background(), "/api/admin/fares", nil, nil))

	count, err := testutil.GatherAndCount(metrics.Registry(), telemetry.MetricUpstreamRequestsTotal)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDecodeInto_RawMessage(t *testing.T) {
	var raw json.RawMessage
	require.NoError(t, decodeInto([]byte(`{"data":[1,2]}`), &raw))
	assert.JSONEq(t, `[1,2]`, string(raw))

	require.NoError(t, decodeInto(nil, &raw))
	assert.NoError(t, decodeInto([]byte(`{"data":{"x":1}}`), nil))
}
