package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/postpilot/postpilot/pkg/schedule"
)

// Lane is one independently scheduled unit of work.
type Lane struct {
	// Name identifies the lane in logs.
	Name string

	// Schedule decides when the lane runs next.
	Schedule schedule.Schedule

	// Run executes one tick. Implementations should check ctx.Done() for
	// graceful cancellation.
	Run func(ctx context.Context) error
}

// Scheduler runs lanes on their own cadences. Each lane gets its own
// goroutine and failure boundary: a failing or panicking tick is logged and
// the lane keeps its cadence, with no effect on the other lanes.
type Scheduler struct {
	lanes        []Lane
	logger       *slog.Logger
	pollInterval time.Duration
	wg           sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger for lane lifecycle and tick errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithPollInterval sets how often each lane checks whether it is due.
// Tick resolution, not cadence: a lane still runs per its Schedule.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.pollInterval = d }
}

// New creates an empty Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:       slog.Default(),
		pollInterval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a lane. Must be called before Start.
func (s *Scheduler) Add(lane Lane) {
	s.lanes = append(s.lanes, lane)
}

// Start runs all lanes and blocks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, lane := range s.lanes {
		s.wg.Add(1)
		go s.runLane(ctx, lane)
	}
	s.wg.Wait()
	return ctx.Err()
}

func (s *Scheduler) runLane(ctx context.Context, lane Lane) {
	defer s.wg.Done()

	s.logger.Info("lane started", "lane", lane.Name)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	lastRun := time.Now()
	next := lane.Schedule.Next(lastRun)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("lane stopped", "lane", lane.Name)
			return
		case <-ticker.C:
			now := time.Now()
			if now.Before(next) {
				continue
			}
			s.tick(ctx, lane)
			lastRun = now
			next = lane.Schedule.Next(lastRun)
		}
	}
}

// tick runs one lane invocation inside its own failure boundary.
func (s *Scheduler) tick(ctx context.Context, lane Lane) {
	start := time.Now()
	err := s.safeRun(ctx, lane)
	if err != nil {
		s.logger.Error("lane tick failed", "lane", lane.Name, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("lane tick complete", "lane", lane.Name, "duration", time.Since(start))
}

func (s *Scheduler) safeRun(ctx context.Context, lane Lane) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return lane.Run(ctx)
}
