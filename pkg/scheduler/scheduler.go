package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/llmstxt/pkg/export"
)

// ErrNotScheduled is returned by Reschedule when nothing has been scheduled.
var ErrNotScheduled = errors.New("no callback scheduled")

// Scheduler fires a callback once per regeneration interval.
// At most one callback is scheduled; scheduling again replaces it. A tick is
// skipped while the previous one is still running.
type Scheduler struct {
	cron     *cron.Cron
	entry    cron.EntryID
	interval export.Interval
	fn       func(context.Context)
	ctx      context.Context
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool

	// period maps an interval to its recurrence; tests shorten it.
	period func(export.Interval) time.Duration
}

// New creates a scheduler. Nothing fires until Schedule is called.
func New() *Scheduler {
	logger := slog.Default().With("component", "scheduler")
	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		period: export.Interval.Duration,
	}
}

// Schedule registers fn to run every interval, replacing any previous
// callback. fn receives ctx; when ctx is done the scheduler stops.
func (s *Scheduler) Schedule(ctx context.Context, interval export.Interval, fn func(context.Context)) error {
	if !interval.Valid() {
		return fmt.Errorf("invalid interval %q", interval)
	}
	if fn == nil {
		return fmt.Errorf("callback cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	s.fn = fn
	s.add(interval)

	if !s.running {
		s.cron.Start()
		s.running = true

		go func() {
			<-ctx.Done()
			s.Stop()
		}()
	}

	s.logger.Info("export scheduled",
		"interval", interval,
		"period", s.period(interval),
	)
	return nil
}

// Reschedule changes the interval of the scheduled callback without
// restarting the scheduler. Rescheduling to the current interval is a no-op.
func (s *Scheduler) Reschedule(interval export.Interval) error {
	if !interval.Valid() {
		return fmt.Errorf("invalid interval %q", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fn == nil {
		return ErrNotScheduled
	}
	if s.entry != 0 && s.interval == interval {
		return nil
	}

	previous := s.interval
	s.add(interval)

	s.logger.Info("export rescheduled",
		"previous_interval", previous,
		"interval", interval,
	)
	return nil
}

// add replaces the cron entry. Caller must hold mu.
func (s *Scheduler) add(interval export.Interval) {
	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}

	fn, ctx := s.fn, s.ctx
	s.entry = s.cron.Schedule(cron.Every(s.period(interval)), cron.FuncJob(func() {
		fn(ctx)
	}))
	s.interval = interval
}

// Cancel removes the pending tick. The callback is kept so Reschedule can
// bring it back.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry == 0 {
		return
	}
	s.cron.Remove(s.entry)
	s.entry = 0
	s.logger.Info("scheduled export cancelled")
}

// Stop cancels the pending tick and waits for a running callback to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}

	done := s.cron.Stop()
	s.running = false
	s.mu.Unlock()

	// Wait outside the lock so a running callback may still query the scheduler.
	<-done.Done()
	s.logger.Info("scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// IsScheduled returns true if a tick is pending.
func (s *Scheduler) IsScheduled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running && s.entry != 0
}

// Interval returns the interval of the scheduled callback.
func (s *Scheduler) Interval() export.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.interval
}

// NextRun returns the next scheduled tick, or nil if none is pending.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.entry == 0 {
		return nil
	}

	next := s.cron.Entry(s.entry).Next
	if next.IsZero() {
		// The cron loop has not picked up the entry yet.
		next = time.Now().Add(s.period(s.interval))
	}
	return &next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
