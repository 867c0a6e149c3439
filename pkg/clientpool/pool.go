// Package clientpool maintains one logical connection pool per
// provider: a bounded concurrency semaphore plus consecutive-failure
// tracking that tears a client down and lets it be recreated. The
// mutex-plus-monotonic-time bookkeeping style follows
// pkg/limits/ratelimit's token bucket; the semaphore itself is a
// buffered channel, the idiomatic Go substitute for the same resource
// cap.
package clientpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mercator-hq/orison/pkg/providers"
)

// DefaultMaxInFlight is the per-provider concurrency cap when the
// caller doesn't override it (spec §4.6).
const DefaultMaxInFlight = 8

// DefaultFailureThreshold is the number of consecutive failures that
// tears a client down for recreation.
const DefaultFailureThreshold = 5

// DefaultFailureWindow is the window the threshold is counted over.
const DefaultFailureWindow = 60 * time.Second

// Factory constructs a fresh provider client for name.
type Factory func(name string) (providers.Provider, error)

// Pool manages bounded per-provider concurrency and client lifecycle.
type Pool struct {
	factory          Factory
	maxInFlight      map[string]int
	defaultMax       int
	failureThreshold int
	failureWindow    time.Duration
	log              *slog.Logger

	mu       sync.Mutex
	entries  map[string]*providerEntry
}

type providerEntry struct {
	sem    chan struct{}
	client providers.Provider

	mu            sync.Mutex
	consecutive   int
	windowStart   time.Time
}

// Option configures a Pool.
type Option func(*Pool)

// WithPerProviderLimit overrides the concurrency cap for a single provider.
func WithPerProviderLimit(provider string, limit int) Option {
	return func(p *Pool) { p.maxInFlight[provider] = limit }
}

// WithDefaultLimit overrides DefaultMaxInFlight for providers without
// an explicit override.
func WithDefaultLimit(limit int) Option {
	return func(p *Pool) { p.defaultMax = limit }
}

// WithFailureThreshold overrides DefaultFailureThreshold/DefaultFailureWindow.
func WithFailureThreshold(count int, window time.Duration) Option {
	return func(p *Pool) {
		p.failureThreshold = count
		p.failureWindow = window
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// New builds a Pool that lazily creates clients via factory.
func New(factory Factory, opts ...Option) *Pool {
	p := &Pool{
		factory:          factory,
		maxInFlight:      make(map[string]int),
		defaultMax:       DefaultMaxInFlight,
		failureThreshold: DefaultFailureThreshold,
		failureWindow:    DefaultFailureWindow,
		log:              slog.Default(),
		entries:          make(map[string]*providerEntry),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pool) limitFor(provider string) int {
	if n, ok := p.maxInFlight[provider]; ok {
		return n
	}
	return p.defaultMax
}

func (p *Pool) entry(provider string) (*providerEntry, error) {
	p.mu.Lock()
	e, ok := p.entries[provider]
	if !ok {
		e = &providerEntry{sem: make(chan struct{}, p.limitFor(provider))}
		p.entries[provider] = e
	}
	p.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e, nil
	}

	client, err := p.factory(provider)
	if err != nil {
		return nil, fmt.Errorf("clientpool: creating client for %q: %w", provider, err)
	}
	e.client = client
	p.log.Debug("clientpool: client created", "provider", provider)
	return e, nil
}

// Lease is an acquired pool slot; callers must call Release exactly
// once, reporting whether the call the slot was used for succeeded.
type Lease struct {
	pool     *Pool
	provider string
	entry    *providerEntry
	Client   providers.Provider
}

// Acquire blocks until a concurrency slot for provider is available or
// ctx is done, then returns a Lease wrapping a ready client.
func (p *Pool) Acquire(ctx context.Context, provider string) (*Lease, error) {
	e, err := p.entry(provider)
	if err != nil {
		return nil, err
	}

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	e.mu.Lock()
	client := e.client
	e.mu.Unlock()

	return &Lease{pool: p, provider: provider, entry: e, Client: client}, nil
}

// Release returns the lease's slot to the pool. ok reports whether the
// call succeeded; consecutive failures reaching the configured threshold
// tear the client down so the next Acquire recreates it.
func (l *Lease) Release(ok bool) {
	<-l.entry.sem

	e := l.entry
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if e.windowStart.IsZero() || now.Sub(e.windowStart) > l.pool.failureWindow {
		e.windowStart = now
		e.consecutive = 0
	}

	if ok {
		e.consecutive = 0
		return
	}

	e.consecutive++
	if e.consecutive >= l.pool.failureThreshold {
		l.pool.log.Warn("clientpool: tearing down client after consecutive failures",
			"provider", l.provider, "consecutive_failures", e.consecutive)
		e.client = nil
		e.consecutive = 0
	}
}
