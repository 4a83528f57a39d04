// Package resolver turns foreign keys into display names. A lookup fetches
// the full referenced collection once per request, builds an id→name table
// and never fails: when the fetch fails every id resolves to the fallback of
// its kind and a warning is recorded.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jass/bff/internal/domain/shared"
	"github.com/jass/bff/internal/infrastructure/logger"
	"github.com/jass/bff/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errNoGateway = errors.New("resolver: gateway not configured")

// FetchFunc loads the id→name table of a referenced collection
type FetchFunc func(ctx context.Context) (map[string]string, error)

// Lookup names one referenced collection
type Lookup struct {
	Kind Kind
	// Scope narrows the collection, usually an organization id. Empty means all.
	Scope string
	Fetch FetchFunc
}

func (l Lookup) key() string {
	scope := l.Scope
	if scope == "" {
		scope = "all"
	}
	return string(l.Kind) + ":" + scope
}

// Names builds an id→name table from a collection
func Names[T any](items []T, id, name func(T) string) map[string]string {
	names := make(map[string]string, len(items))
	for _, item := range items {
		if k := id(item); k != "" {
			names[k] = name(item)
		}
	}
	return names
}

// FromList adapts a list call into a FetchFunc
func FromList[T any](list func(context.Context) ([]T, error), id, name func(T) string) FetchFunc {
	return func(ctx context.Context) (map[string]string, error) {
		items, err := list(ctx)
		if err != nil {
			return nil, err
		}
		return Names(items, id, name), nil
	}
}

// Table resolves ids of one kind
type Table struct {
	kind     Kind
	names    map[string]string
	degraded bool
}

// NewTable wraps an id→name map
func NewTable(kind Kind, names map[string]string) *Table {
	return &Table{kind: kind, names: names}
}

// Name returns the display name of id, or the fallback for the kind
func (t *Table) Name(id string) string {
	if name, ok := t.names[id]; ok && name != "" {
		return name
	}
	return t.kind.Fallback(id)
}

// NameList resolves several ids, keeping their order
func (t *Table) NameList(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = t.Name(id)
	}
	return out
}

// Degraded reports whether the table fell back after a failed fetch
func (t *Table) Degraded() bool {
	return t.degraded
}

// Len returns the number of known ids
func (t *Table) Len() int {
	return len(t.names)
}

// Resolver creates request-scoped sessions
type Resolver struct {
	cache    shared.NameCache
	cacheTTL time.Duration
	metrics  *telemetry.Metrics
	logger   *zap.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCache shares tables between requests for ttl
func WithCache(cache shared.NameCache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

// WithMetrics counts degraded tables
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver
func New(opts ...Option) *Resolver {
	r := &Resolver{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.cacheTTL <= 0 {
		r.cache = nil
	}
	return r
}

// Session memoizes lookups for the lifetime of one request. It is safe for
// concurrent use.
type Session struct {
	r        *Resolver
	mu       sync.Mutex
	entries  map[string]*entry
	warnings []string
}

type entry struct {
	once  sync.Once
	table *Table
}

// NewSession starts a request-scoped session
func (r *Resolver) NewSession() *Session {
	return &Session{r: r, entries: make(map[string]*entry)}
}

// Table returns the table for l, fetching it at most once per session
func (s *Session) Table(ctx context.Context, l Lookup) *Table {
	key := l.key()

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	s.mu.Unlock()

	e.once.Do(func() {
		e.table = s.load(ctx, l, key)
	})
	return e.table
}

// Prefetch loads several lookups in parallel
func (s *Session) Prefetch(ctx context.Context, lookups ...Lookup) {
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range lookups {
		g.Go(func() error {
			s.Table(gctx, l)
			return nil
		})
	}
	_ = g.Wait()
}

// Warnings returns the messages of degraded lookups, in the order they failed
func (s *Session) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

func (s *Session) load(ctx context.Context, l Lookup, key string) *Table {
	log := logger.WithLogger(ctx, s.r.logger)

	if s.r.cache != nil {
		names, found, err := s.r.cache.Get(ctx, key)
		if err != nil {
			log.Debug("Name cache read failed", zap.String("lookup", key), zap.Error(err))
		}
		if found {
			return NewTable(l.Kind, names)
		}
	}

	names, err := l.Fetch(ctx)
	if err != nil {
		log.Warn("Lookup failed, using fallback names",
			zap.String("kind", string(l.Kind)),
			zap.String("scope", l.Scope),
			zap.Error(err),
		)
		s.r.metrics.IncResolverFallback(string(l.Kind))
		s.mu.Lock()
		s.warnings = append(s.warnings, fmt.Sprintf("No se pudieron cargar los nombres de %s", l.Kind.plural()))
		s.mu.Unlock()
		return &Table{kind: l.Kind, names: map[string]string{}, degraded: true}
	}

	if s.r.cache != nil {
		if err := s.r.cache.Set(ctx, key, names, s.r.cacheTTL); err != nil {
			log.Debug("Name cache write failed", zap.String("lookup", key), zap.Error(err))
		}
	}
	return NewTable(l.Kind, names)
}

type sessionKey struct{}

// WithSession attaches a request-scoped session to ctx
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached to ctx, or a new one from r. Every
// service called while handling one request then shares the same tables.
func (r *Resolver) SessionFrom(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey{}).(*Session); ok && s != nil {
		return s
	}
	return r.NewSession()
}
