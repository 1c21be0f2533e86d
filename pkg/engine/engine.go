package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/postpilot/postpilot/pkg/core"
)

// Default lane parameters. These mirror the selection predicates the lanes
// were designed around: metrics are considered stale after an hour, and
// credentials are renewed once they are within a week of expiry.
const (
	DefaultFreshness      = time.Hour
	DefaultRenewalHorizon = 7 * 24 * time.Hour
	DefaultCallTimeout    = 30 * time.Second
	DefaultBatchLimit     = 500

	// DefaultClaimTTL is how long a post may sit in publishing before the
	// claim is considered abandoned by a dead process.
	DefaultClaimTTL = 15 * time.Minute
)

// Engine runs the three lanes against a store and a platform client.
type Engine struct {
	store    core.Store
	platform core.Platform
	logger   *slog.Logger

	freshness      time.Duration
	renewalHorizon time.Duration
	callTimeout    time.Duration
	claimTTL       time.Duration
	batchLimit     int

	subsMu sync.Mutex
	subs   []chan core.Event
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by all lanes.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithFreshness sets the metrics freshness window.
func WithFreshness(d time.Duration) Option {
	return func(e *Engine) { e.freshness = d }
}

// WithRenewalHorizon sets how far ahead of expiry credentials are renewed.
func WithRenewalHorizon(d time.Duration) Option {
	return func(e *Engine) { e.renewalHorizon = d }
}

// WithCallTimeout bounds each individual platform call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.callTimeout = d }
}

// WithClaimTTL sets how long a claim may stay in publishing before it is
// released back to the due set.
func WithClaimTTL(d time.Duration) Option {
	return func(e *Engine) { e.claimTTL = d }
}

// WithBatchLimit caps how many rows one analytics tick processes.
func WithBatchLimit(n int) Option {
	return func(e *Engine) { e.batchLimit = n }
}

// New creates an Engine with the given store and platform client.
func New(store core.Store, platform core.Platform, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		platform:       platform,
		logger:         slog.Default(),
		freshness:      DefaultFreshness,
		renewalHorizon: DefaultRenewalHorizon,
		callTimeout:    DefaultCallTimeout,
		claimTTL:       DefaultClaimTTL,
		batchLimit:     DefaultBatchLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe returns a channel receiving engine events. Slow subscribers drop
// events rather than stalling a lane.
func (e *Engine) Subscribe() <-chan core.Event {
	ch := make(chan core.Event, 100)
	e.subsMu.Lock()
	e.subs = append(e.subs, ch)
	e.subsMu.Unlock()
	return ch
}

func (e *Engine) emit(ev core.Event) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// callPlatform runs fn under the engine's per-call timeout.
func (e *Engine) callPlatform(ctx context.Context, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return fn(callCtx)
}
