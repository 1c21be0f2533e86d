// Package postpilot provides a background engine that publishes scheduled
// social posts, keeps their metrics fresh, and renews delegated platform
// credentials.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	// Create store and engine
//	db, _ := gorm.Open(sqlite.Open("postpilot.db"), &gorm.Config{})
//	store := postpilot.NewGormStore(db)
//	store.Migrate(context.Background())
//
//	linkedin := postpilot.NewLinkedIn(clientID, clientSecret)
//	engine := postpilot.New(store, linkedin)
//
//	// Run the three lanes until the context is cancelled
//	sched := postpilot.NewScheduler(engine)
//	sched.Start(ctx)
package postpilot

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/postpilot/postpilot/pkg/core"
	"github.com/postpilot/postpilot/pkg/engine"
	"github.com/postpilot/postpilot/pkg/platform"
	"github.com/postpilot/postpilot/pkg/schedule"
	"github.com/postpilot/postpilot/pkg/scheduler"
	"github.com/postpilot/postpilot/pkg/security"
	"github.com/postpilot/postpilot/pkg/storage"
)

// Type aliases for the public API
type (
	// Post is a pre-authored piece of content waiting to be published.
	Post = core.Post

	// Account stores one owner's delegated platform credentials.
	Account = core.Account

	// MetricsSnapshot is the single current metrics reading for a post.
	MetricsSnapshot = core.MetricsSnapshot

	// Metrics is a platform metrics reading before it is persisted.
	Metrics = core.Metrics

	// TokenGrant is the result of a successful credential refresh.
	TokenGrant = core.TokenGrant

	// PostStatus represents the current state of a scheduled post.
	PostStatus = core.PostStatus

	// Store defines the persistence layer for the engine.
	Store = core.Store

	// Platform is the engine's view of the social platform.
	Platform = core.Platform

	// PlatformError is a classified failure from a Platform call.
	PlatformError = core.PlatformError

	// ErrorKind classifies a platform failure.
	ErrorKind = core.ErrorKind

	// Event is the interface for all engine events.
	Event = core.Event

	// PostPublished is emitted when a post lands on the platform.
	PostPublished = core.PostPublished

	// PostFailed is emitted when a publish attempt fails terminally.
	PostFailed = core.PostFailed

	// MetricsCaptured is emitted when a fresh metrics snapshot is stored.
	MetricsCaptured = core.MetricsCaptured

	// PostRemoved is emitted when metrics polling finds the content gone.
	PostRemoved = core.PostRemoved

	// TokenRefreshed is emitted when an account's credentials are rotated.
	TokenRefreshed = core.TokenRefreshed

	// Engine runs the three lanes against a store and a platform client.
	Engine = engine.Engine

	// EngineOption configures an Engine.
	EngineOption = engine.Option

	// GormStore implements Store using GORM.
	GormStore = storage.GormStore

	// LinkedIn implements Platform against the LinkedIn REST API.
	LinkedIn = platform.LinkedIn

	// Scheduler runs lanes on their own cadences.
	Scheduler = scheduler.Scheduler

	// Lane is one independently scheduled unit of work.
	Lane = scheduler.Lane

	// Schedule defines when a lane should run next.
	Schedule = schedule.Schedule
)

// Status constants
const (
	StatusScheduled  = core.StatusScheduled
	StatusPublishing = core.StatusPublishing
	StatusPublished  = core.StatusPublished
	StatusFailed     = core.StatusFailed
	StatusDeleted    = core.StatusDeleted
)

// Platform error kinds
const (
	KindOther     = core.KindOther
	KindDuplicate = core.KindDuplicate
	KindNotFound  = core.KindNotFound
)

// Security limits
const (
	MaxContentLength      = security.MaxContentLength
	MaxErrorMessageLength = security.MaxErrorMessageLength
)

// Error variables
var (
	ErrPostNotClaimed   = core.ErrPostNotClaimed
	ErrPostNotPublished = core.ErrPostNotPublished
	ErrAccountNotFound  = core.ErrAccountNotFound
	ErrNoAccessToken    = core.ErrNoAccessToken
	ErrEmptyContent     = core.ErrEmptyContent
	ErrContentTooLong   = core.ErrContentTooLong
)

// New creates an Engine with the given store and platform client.
func New(store Store, p Platform, opts ...EngineOption) *Engine {
	return engine.New(store, p, opts...)
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return storage.NewGormStore(db)
}

// NewLinkedIn creates a LinkedIn platform client.
func NewLinkedIn(clientID, clientSecret string, opts ...platform.Option) *LinkedIn {
	return platform.NewLinkedIn(clientID, clientSecret, opts...)
}

// SchedulerConfig controls the cadences NewScheduler wires up.
type SchedulerConfig struct {
	PublishEvery   time.Duration // default: 1 minute
	AnalyticsEvery time.Duration // default: 1 minute
	RenewalHour    int           // default: 03:00 UTC
	RenewalMinute  int
}

// NewScheduler wires the engine's three lanes onto their default cadences:
// publishing and analytics every minute, credential renewal daily at 03:00
// UTC. Zero-value config fields keep the defaults.
func NewScheduler(e *Engine, cfg SchedulerConfig, opts ...scheduler.Option) *Scheduler {
	if cfg.PublishEvery <= 0 {
		cfg.PublishEvery = time.Minute
	}
	if cfg.AnalyticsEvery <= 0 {
		cfg.AnalyticsEvery = time.Minute
	}
	if cfg.RenewalHour == 0 && cfg.RenewalMinute == 0 {
		cfg.RenewalHour = 3
	}

	s := scheduler.New(opts...)
	s.Add(Lane{Name: "publish", Schedule: Every(cfg.PublishEvery), Run: e.PublishTick})
	s.Add(Lane{Name: "analytics", Schedule: Every(cfg.AnalyticsEvery), Run: e.AnalyticsTick})
	s.Add(Lane{Name: "renewal", Schedule: Daily(cfg.RenewalHour, cfg.RenewalMinute), Run: e.RenewalTick})
	return s
}

// Engine option functions

// WithLogger sets the logger used by all lanes.
func WithLogger(l *slog.Logger) EngineOption {
	return engine.WithLogger(l)
}

// WithFreshness sets the metrics freshness window.
func WithFreshness(d time.Duration) EngineOption {
	return engine.WithFreshness(d)
}

// WithRenewalHorizon sets how far ahead of expiry credentials are renewed.
func WithRenewalHorizon(d time.Duration) EngineOption {
	return engine.WithRenewalHorizon(d)
}

// WithCallTimeout bounds each individual platform call.
func WithCallTimeout(d time.Duration) EngineOption {
	return engine.WithCallTimeout(d)
}

// WithClaimTTL sets how long a claim may stay in publishing before it is
// released back to the due set.
func WithClaimTTL(d time.Duration) EngineOption {
	return engine.WithClaimTTL(d)
}

// WithBatchLimit caps how many rows one analytics tick processes.
func WithBatchLimit(n int) EngineOption {
	return engine.WithBatchLimit(n)
}

// Schedule functions

// Every creates a schedule that runs at fixed intervals.
func Every(d time.Duration) Schedule {
	return schedule.Every(d)
}

// Daily creates a schedule that runs at a specific time each day.
func Daily(hour, minute int) Schedule {
	return schedule.Daily(hour, minute)
}

// Weekly creates a schedule that runs at a specific day and time each week.
func Weekly(day time.Weekday, hour, minute int) Schedule {
	return schedule.Weekly(day, hour, minute)
}

// Cron creates a schedule from a cron expression.
func Cron(expr string) Schedule {
	return schedule.Cron(expr)
}

// ValidateContent checks post text against platform constraints.
func ValidateContent(text string) error {
	return security.ValidateContent(text)
}

// SanitizeErrorMessage truncates and sanitizes error messages for storage.
func SanitizeErrorMessage(msg string) string {
	return security.SanitizeErrorMessage(msg)
}
