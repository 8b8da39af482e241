package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/llmstxt/pkg/export"
	"mercator-hq/llmstxt/pkg/settings"
	"mercator-hq/llmstxt/pkg/telemetry/logging"
)

// Job is the export job driven by the runner.
type Job interface {
	Run(ctx context.Context, cfg export.ExportConfig) (export.Report, error)
	Path() string
}

// Scheduler fires the scheduled tick. *scheduler.Scheduler implements it.
type Scheduler interface {
	Schedule(ctx context.Context, interval export.Interval, fn func(context.Context)) error
	Reschedule(interval export.Interval) error
	Stop()
	IsScheduled() bool
	Interval() export.Interval
	NextRun() *time.Time
}

// History records finished runs. settings.Store implements it.
type History interface {
	RecordRun(ctx context.Context, run *settings.RunRecord) error
}

// Observer receives run outcomes and schedule changes. *metrics.Collector
// implements it.
type Observer interface {
	ObserveRun(trigger string, report export.Report, err error)
	ObserveSchedule(interval export.Interval, next *time.Time)
}

// Config wires a Runner. Job and Provider are required.
type Config struct {
	Job      Job
	Provider export.ConfigProvider

	// Scheduler is nil when scheduled regeneration is disabled.
	Scheduler Scheduler

	History  History
	Observer Observer

	// RunOnStart triggers one run from Start.
	RunOnStart bool

	// RunTimeout bounds a single run. Zero means no bound.
	RunTimeout time.Duration
}

// Status is a snapshot of the runner state.
type Status struct {
	Scheduled   bool                `json:"scheduled"`
	Interval    export.Interval     `json:"interval,omitempty"`
	NextRun     *time.Time          `json:"next_run,omitempty"`
	Running     int                 `json:"running"`
	LastRun     *settings.RunRecord `json:"last_run,omitempty"`
	LastSuccess *time.Time          `json:"last_success,omitempty"`
}

// Runner connects the scheduler and the manual trigger to the export job.
// Every run reads the current configuration first, and a changed interval
// reschedules the timer without a restart.
type Runner struct {
	cfg    Config
	logger *slog.Logger

	mu          sync.Mutex
	running     int
	lastRun     *settings.RunRecord
	lastSuccess time.Time

	wg sync.WaitGroup
}

// New creates a runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Job == nil {
		return nil, errors.New("runner: job is required")
	}
	if cfg.Provider == nil {
		return nil, errors.New("runner: config provider is required")
	}

	return &Runner{
		cfg:    cfg,
		logger: slog.Default().With("component", "runner"),
	}, nil
}

// Start schedules the recurring tick with the configured interval and, when
// RunOnStart is set, fires one run in the background. Scheduled ticks stop
// when ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	if r.cfg.Scheduler != nil {
		exportCfg, err := r.cfg.Provider.ExportConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load export config: %w", err)
		}

		if err := r.cfg.Scheduler.Schedule(ctx, exportCfg.Interval, r.OnScheduledTick); err != nil {
			return fmt.Errorf("failed to schedule export: %w", err)
		}
		r.observeSchedule()
	}

	if r.cfg.RunOnStart {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			_, _ = r.run(ctx, settings.TriggerStartup)
		}()
	}

	return nil
}

// OnScheduledTick runs the export for a scheduler tick. Failures are logged
// and recorded; the previous document stays in place.
func (r *Runner) OnScheduledTick(ctx context.Context) {
	_, _ = r.run(ctx, settings.TriggerScheduled)
}

// OnManualTrigger runs the export now and returns its outcome.
func (r *Runner) OnManualTrigger(ctx context.Context) (export.Report, error) {
	return r.run(ctx, settings.TriggerManual)
}

// Reschedule re-reads the configuration and moves the timer when the
// interval changed. It is a no-op without a scheduler.
func (r *Runner) Reschedule(ctx context.Context) error {
	if r.cfg.Scheduler == nil {
		return nil
	}

	exportCfg, err := r.cfg.Provider.ExportConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load export config: %w", err)
	}
	return r.reschedule(exportCfg.Interval)
}

// reschedule applies interval to the scheduler if it differs.
func (r *Runner) reschedule(interval export.Interval) error {
	s := r.cfg.Scheduler
	if s == nil || !s.IsScheduled() || s.Interval() == interval {
		return nil
	}

	if err := s.Reschedule(interval); err != nil {
		return err
	}
	r.observeSchedule()
	return nil
}

// Stop cancels the pending scheduled tick and waits for the startup run.
// Runs already in progress from the scheduler finish on their own.
func (r *Runner) Stop() {
	if r.cfg.Scheduler != nil {
		r.cfg.Scheduler.Stop()
		r.observeSchedule()
	}
	r.wg.Wait()
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() Status {
	var st Status

	if s := r.cfg.Scheduler; s != nil && s.IsScheduled() {
		st.Scheduled = true
		st.Interval = s.Interval()
		st.NextRun = s.NextRun()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st.Running = r.running
	if r.lastRun != nil {
		last := *r.lastRun
		st.LastRun = &last
	}
	if !r.lastSuccess.IsZero() {
		at := r.lastSuccess
		st.LastSuccess = &at
	}
	return st
}

// LastSuccess returns when the last successful run finished.
func (r *Runner) LastSuccess() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSuccess, !r.lastSuccess.IsZero()
}

// run executes one export for trigger.
func (r *Runner) run(ctx context.Context, trigger string) (export.Report, error) {
	runID := uuid.NewString()
	ctx = logging.WithTrigger(ctx, trigger)
	ctx = logging.WithRunID(ctx, runID)

	if r.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RunTimeout)
		defer cancel()
	}

	r.mu.Lock()
	r.running++
	r.mu.Unlock()

	started := time.Now()
	report, err := r.export(ctx)
	if report.RunID == "" {
		report.RunID = runID
		report.Path = r.cfg.Job.Path()
		report.StartedAt = started
		report.Duration = time.Since(started)
	}

	r.finish(ctx, trigger, report, err)
	return report, err
}

// export loads the configuration and runs the job.
func (r *Runner) export(ctx context.Context) (export.Report, error) {
	exportCfg, err := r.cfg.Provider.ExportConfig(ctx)
	if err != nil {
		return export.Report{}, fmt.Errorf("failed to load export config: %w", err)
	}

	if err := r.reschedule(exportCfg.Interval); err != nil {
		r.logger.WarnContext(ctx, "failed to reschedule export",
			"interval", exportCfg.Interval,
			"error", err,
		)
	}

	return r.cfg.Job.Run(ctx, exportCfg)
}

// finish records the outcome of a run.
func (r *Runner) finish(ctx context.Context, trigger string, report export.Report, err error) {
	record := settings.NewRunRecord(trigger, report, err)

	r.mu.Lock()
	r.running--
	r.lastRun = record
	if err == nil {
		r.lastSuccess = record.FinishedAt
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.WarnContext(ctx, "export run failed",
			"run_id", report.RunID,
			"error", err,
		)
	}

	if r.cfg.History != nil {
		if herr := r.cfg.History.RecordRun(context.WithoutCancel(ctx), record); herr != nil {
			r.logger.ErrorContext(ctx, "failed to record export run",
				"run_id", report.RunID,
				"error", herr,
			)
		}
	}

	if r.cfg.Observer != nil {
		r.cfg.Observer.ObserveRun(trigger, report, err)
	}
}

// observeSchedule publishes the current schedule to the observer.
func (r *Runner) observeSchedule() {
	if r.cfg.Observer == nil || r.cfg.Scheduler == nil {
		return
	}

	s := r.cfg.Scheduler
	if !s.IsScheduled() {
		r.cfg.Observer.ObserveSchedule(s.Interval(), nil)
		return
	}
	r.cfg.Observer.ObserveSchedule(s.Interval(), s.NextRun())
}
