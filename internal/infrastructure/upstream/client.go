// Package upstream contains the HTTP clients of the JASS REST services.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/jass/bff/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 16 << 20

// Config configures one upstream client
type Config struct {
	Name             string
	BaseURL          string
	Timeout          time.Duration
	MaxRetries       int
	RetryInterval    time.Duration
	RetryMaxInterval time.Duration
	RatePerSecond    float64 // 0 disables client-side limiting
	Burst            int
	// StaticToken replaces the caller's bearer token, e.g. for RENIEC
	StaticToken string
	UserAgent   string
}

// Client performs JSON requests against one upstream service. GET requests
// are retried with exponential backoff on transport errors, 5xx and 429.
type Client struct {
	name       string
	baseURL    string
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *telemetry.Metrics
	logger     *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics records request metrics
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for retry warnings
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for cfg.BaseURL
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("upstream client name is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream %s: invalid base URL %q", cfg.Name, cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "jass-bff/1.0"
	}

	c := &Client{
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: zap.NewNop(),
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Name returns the service name used in logs, metrics and errors
func (c *Client) Name() string {
	return c.name
}

// Request is one upstream call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Get fetches path and decodes the unwrapped payload into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post sends body as JSON and decodes the unwrapped payload into out
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put sends body as JSON and decodes the unwrapped payload into out
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete removes the resource at path
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
}

// Do executes req and decodes the unwrapped payload into out
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	target := c.resolve(req.Path, req.Query)

	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("upstream %s: encode request body: %w", c.name, err)
		}
		payload = b
	}

	ctx, span := telemetry.StartUpstreamSpan(ctx, c.name, req.Method, target)
	defer span.End()

	var (
		status int
		body   []byte
	)
	operation := func() error {
		var err error
		status, body, err = c.send(ctx, req.Method, target, payload)
		if err != nil {
			uerr := &Error{Service: c.name, Method: req.Method, URL: target, Err: err}
			if ctx.Err() != nil {
				return backoff.Permanent(uerr)
			}
			return uerr
		}
		if status >= http.StatusBadRequest {
			uerr := &Error{
				Service:    c.name,
				Method:     req.Method,
				URL:        target,
				StatusCode: status,
				Message:    errorMessage(status, body),
			}
			if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
				return uerr
			}
			return backoff.Permanent(uerr)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.metrics.IncUpstreamRetry(c.name)
		logger.WithLogger(ctx, c.logger).Warn("Retrying upstream request",
			zap.String("service", c.name),
			zap.String("method", req.Method),
			zap.String("url", target),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, c.backoffFor(ctx, req.Method), notify); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if err := decodeInto(body, out); err != nil {
		uerr := &Error{Service: c.name, Method: req.Method, URL: target, StatusCode: status, Err: err}
		var rejected *errRejected
		if errors.As(err, &rejected) {
			uerr = &Error{
				Service:    c.name,
				Method:     req.Method,
				URL:        target,
				StatusCode: http.StatusBadRequest,
				Message:    rejected.message,
			}
		}
		telemetry.RecordError(span, uerr)
		return uerr
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return 0, nil, err
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveUpstream(c.name, method, 0, time.Since(start))
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.ObserveUpstream(c.name, method, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) token(ctx context.Context) string {
	if c.cfg.StaticToken != "" {
		return c.cfg.StaticToken
	}
	return TokenFromContext(ctx)
}

// backoffFor retries only idempotent reads
func (c *Client) backoffFor(ctx context.Context, method string) backoff.BackOff {
	if method != http.MethodGet || c.cfg.MaxRetries <= 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInterval
	b.MaxInterval = c.cfg.RetryMaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx)
}

func (c *Client) resolve(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// getList fetches a list endpoint, accepting a bare array or a page object
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	items, err := decodeList[T](raw)
	if err != nil {
		return nil, &Error{Service: c.name, Method: http.MethodGet, URL: c.resolve(path, query), StatusCode: http.StatusOK, Err: err}
	}
	return items, nil
}

// orgQuery builds ?organizationId=<id>, or nil when id is empty
func orgQuery(organizationID string) url.Values {
	if organizationID == "" {
		return nil
	}
	return url.Values{"organizationId": []string{organizationID}}
}
