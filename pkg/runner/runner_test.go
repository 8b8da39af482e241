package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mercator-hq/llmstxt/pkg/export"
	"mercator-hq/llmstxt/pkg/settings"
	"mercator-hq/llmstxt/pkg/telemetry/logging"
)

type fakeJob struct {
	mu    sync.Mutex
	calls []export.ExportConfig
	ctxs  []context.Context
	err   error
	block chan struct{}
}

func (j *fakeJob) Run(ctx context.Context, cfg export.ExportConfig) (export.Report, error) {
	if j.block != nil {
		<-j.block
	}

	j.mu.Lock()
	j.calls = append(j.calls, cfg)
	j.ctxs = append(j.ctxs, ctx)
	j.mu.Unlock()

	report := export.Report{
		RunID:      logging.GetRunID(ctx),
		Path:       j.Path(),
		Bytes:      10,
		Sections:   len(cfg.Types()),
		TypeCounts: map[string]int{},
		StartedAt:  time.Now(),
		Duration:   time.Millisecond,
	}
	return report, j.err
}

func (j *fakeJob) Path() string { return "llms.txt" }

func (j *fakeJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.calls)
}

type fakeScheduler struct {
	mu          sync.Mutex
	interval    export.Interval
	fn          func(context.Context)
	ctx         context.Context
	scheduled   bool
	reschedules int
	scheduleErr error
}

func (s *fakeScheduler) Schedule(ctx context.Context, interval export.Interval, fn func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduleErr != nil {
		return s.scheduleErr
	}
	s.ctx, s.interval, s.fn, s.scheduled = ctx, interval, fn, true
	return nil
}

func (s *fakeScheduler) Reschedule(interval export.Interval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	s.reschedules++
	return nil
}

func (s *fakeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = false
}

func (s *fakeScheduler) IsScheduled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled
}

func (s *fakeScheduler) Interval() export.Interval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *fakeScheduler) NextRun() *time.Time {
	if !s.IsScheduled() {
		return nil
	}
	next := time.Now().Add(s.Interval().Duration())
	return &next
}

// tick fires the scheduled callback like the timer would.
func (s *fakeScheduler) tick() {
	s.mu.Lock()
	fn, ctx := s.fn, s.ctx
	s.mu.Unlock()
	fn(ctx)
}

type fakeObserver struct {
	mu        sync.Mutex
	runs      []string
	schedules []*time.Time
}

func (o *fakeObserver) ObserveRun(trigger string, report export.Report, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status := settings.StatusSuccess
	if err != nil {
		status = settings.StatusFailure
	}
	o.runs = append(o.runs, trigger+"/"+status)
}

func (o *fakeObserver) ObserveSchedule(interval export.Interval, next *time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.schedules = append(o.schedules, next)
}

type failingProvider struct{}

func (failingProvider) ExportConfig(context.Context) (export.ExportConfig, error) {
	return export.ExportConfig{}, errors.New("settings database is locked")
}

func newProvider(t *testing.T, store settings.Store, opts *settings.Options) *settings.Provider {
	t.Helper()
	p := settings.NewProvider(store, settings.Options{PostTypes: []string{"post"}, Interval: "daily"})
	if opts != nil {
		if _, err := p.Save(context.Background(), *opts); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no job", Config{Provider: failingProvider{}}},
		{"no provider", Config{Job: &fakeJob{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() succeeded")
			}
		})
	}
}

func TestRunner_StartSchedulesConfiguredInterval(t *testing.T) {
	store := settings.NewMemoryStore()
	sched := &fakeScheduler{}
	obs := &fakeObserver{}
	r, err := New(Config{
		Job:       &fakeJob{},
		Provider:  newProvider(t, store, &settings.Options{PostTypes: []string{"page"}, Interval: "hourly"}),
		Scheduler: sched,
		Observer:  obs,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sched.Interval() != export.IntervalHourly {
		t.Errorf("scheduled interval = %q, want hourly", sched.Interval())
	}

	st := r.Status()
	if !st.Scheduled || st.NextRun == nil || st.Interval != export.IntervalHourly {
		t.Errorf("Status() = %+v", st)
	}

	r.Stop()
	if r.Status().Scheduled {
		t.Error("still scheduled after Stop")
	}
	if n := len(obs.schedules); n != 2 || obs.schedules[0] == nil || obs.schedules[1] != nil {
		t.Errorf("observed schedules = %v, want a pending tick then none", obs.schedules)
	}
}

func TestRunner_StartErrors(t *testing.T) {
	r, _ := New(Config{Job: &fakeJob{}, Provider: failingProvider{}, Scheduler: &fakeScheduler{}})
	if err := r.Start(context.Background()); err == nil {
		t.Error("Start() succeeded with a failing provider")
	}

	r, _ = New(Config{
		Job:       &fakeJob{},
		Provider:  newProvider(t, settings.NewMemoryStore(), nil),
		Scheduler: &fakeScheduler{scheduleErr: errors.New("boom")},
	})
	if err := r.Start(context.Background()); err == nil {
		t.Error("Start() succeeded with a failing scheduler")
	}
}

func TestRunner_RunOnStart(t *testing.T) {
	job := &fakeJob{}
	store := settings.NewMemoryStore()
	r, _ := New(Config{
		Job:        job,
		Provider:   newProvider(t, store, nil),
		History:    store,
		RunOnStart: true,
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	r.Stop()

	if job.count() != 1 {
		t.Fatalf("job ran %d times, want 1", job.count())
	}
	runs, _ := store.ListRuns(context.Background(), 0)
	if len(runs) != 1 || runs[0].Trigger != settings.TriggerStartup {
		t.Errorf("runs = %+v, want one startup run", runs)
	}
}

func TestRunner_OnManualTrigger(t *testing.T) {
	job := &fakeJob{}
	store := settings.NewMemoryStore()
	obs := &fakeObserver{}
	r, _ := New(Config{
		Job:      job,
		Provider: newProvider(t, store, &settings.Options{PostTypes: []string{"post", "page"}}),
		History:  store,
		Observer: obs,
	})

	report, err := r.OnManualTrigger(context.Background())
	if err != nil {
		t.Fatalf("OnManualTrigger() error = %v", err)
	}
	if report.RunID == "" || report.Sections != 2 {
		t.Errorf("report = %+v", report)
	}

	if got := logging.GetTrigger(job.ctxs[0]); got != settings.TriggerManual {
		t.Errorf("trigger on context = %q, want manual", got)
	}

	runs, _ := store.ListRuns(context.Background(), 0)
	if len(runs) != 1 || runs[0].ID != report.RunID || runs[0].Status != settings.StatusSuccess {
		t.Errorf("runs = %+v", runs)
	}

	st := r.Status()
	if st.LastRun == nil || st.LastRun.ID != report.RunID || st.LastSuccess == nil {
		t.Errorf("Status() = %+v", st)
	}
	if _, ok := r.LastSuccess(); !ok {
		t.Error("LastSuccess() not set")
	}
	if len(obs.runs) != 1 || obs.runs[0] != "manual/success" {
		t.Errorf("observed runs = %v", obs.runs)
	}
}

func TestRunner_ReadsConfigEveryRun(t *testing.T) {
	job := &fakeJob{}
	store := settings.NewMemoryStore()
	provider := newProvider(t, store, nil)
	r, _ := New(Config{Job: job, Provider: provider})

	ctx := context.Background()
	if _, err := r.OnManualTrigger(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := provider.Save(ctx, settings.Options{PostTypes: []string{"page", "product"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.OnManualTrigger(ctx); err != nil {
		t.Fatal(err)
	}

	if got := job.calls[0].Types(); len(got) != 1 || got[0] != "post" {
		t.Errorf("first run types = %v, want fallback [post]", got)
	}
	if got := job.calls[1].Types(); len(got) != 2 || got[0] != "page" {
		t.Errorf("second run types = %v, want saved selection", got)
	}
}

func TestRunner_FailedRuns(t *testing.T) {
	tests := []struct {
		name     string
		job      *fakeJob
		provider export.ConfigProvider
		wantRuns int
	}{
		{
			name:     "job error",
			job:      &fakeJob{err: export.NewWriteError("llms.txt", errors.New("read-only file system"))},
			provider: nil,
			wantRuns: 1,
		},
		{
			name:     "provider error",
			job:      &fakeJob{},
			provider: failingProvider{},
			wantRuns: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := settings.NewMemoryStore()
			provider := tt.provider
			if provider == nil {
				provider = newProvider(t, store, nil)
			}
			obs := &fakeObserver{}
			r, _ := New(Config{Job: tt.job, Provider: provider, History: store, Observer: obs})

			report, err := r.OnManualTrigger(context.Background())
			if err == nil {
				t.Fatal("OnManualTrigger() succeeded")
			}
			if report.RunID == "" || report.Path != "llms.txt" {
				t.Errorf("report = %+v, want run ID and path", report)
			}
			if tt.job.count() != tt.wantRuns {
				t.Errorf("job ran %d times, want %d", tt.job.count(), tt.wantRuns)
			}

			runs, _ := store.ListRuns(context.Background(), 0)
			if len(runs) != 1 || runs[0].Status != settings.StatusFailure || runs[0].Error == "" {
				t.Errorf("runs = %+v, want one failure", runs)
			}
			if _, ok := r.LastSuccess(); ok {
				t.Error("LastSuccess() set after a failure")
			}
			if len(obs.runs) != 1 || obs.runs[0] != "manual/failure" {
				t.Errorf("observed runs = %v", obs.runs)
			}
		})
	}
}

func TestRunner_ScheduledTickReschedules(t *testing.T) {
	job := &fakeJob{}
	store := settings.NewMemoryStore()
	provider := newProvider(t, store, nil)
	sched := &fakeScheduler{}
	r, _ := New(Config{Job: job, Provider: provider, Scheduler: sched, History: store})

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatal(err)
	}

	sched.tick()
	if sched.reschedules != 0 {
		t.Errorf("rescheduled %d times with an unchanged interval", sched.reschedules)
	}

	if _, err := provider.Save(ctx, settings.Options{PostTypes: []string{"post"}, Interval: "twicedaily"}); err != nil {
		t.Fatal(err)
	}
	sched.tick()

	if sched.Interval() != export.IntervalTwiceDaily || sched.reschedules != 1 {
		t.Errorf("interval = %q after %d reschedules, want twicedaily after 1", sched.Interval(), sched.reschedules)
	}

	runs, _ := store.ListRuns(ctx, 0)
	if len(runs) != 2 || runs[0].Trigger != settings.TriggerScheduled {
		t.Errorf("runs = %+v", runs)
	}
}

func TestRunner_Reschedule(t *testing.T) {
	store := settings.NewMemoryStore()
	provider := newProvider(t, store, nil)
	sched := &fakeScheduler{}
	r, _ := New(Config{Job: &fakeJob{}, Provider: provider, Scheduler: sched})

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := provider.Save(ctx, settings.Options{Interval: "hourly"}); err != nil {
		t.Fatal(err)
	}

	if err := r.Reschedule(ctx); err != nil {
		t.Fatalf("Reschedule() error = %v", err)
	}
	if sched.Interval() != export.IntervalHourly {
		t.Errorf("interval = %q, want hourly", sched.Interval())
	}

	noSched, _ := New(Config{Job: &fakeJob{}, Provider: provider})
	if err := noSched.Reschedule(ctx); err != nil {
		t.Errorf("Reschedule() without scheduler error = %v", err)
	}
}

func TestRunner_RunTimeout(t *testing.T) {
	job := &fakeJob{}
	r, _ := New(Config{
		Job:        job,
		Provider:   newProvider(t, settings.NewMemoryStore(), nil),
		RunTimeout: time.Minute,
	})

	if _, err := r.OnManualTrigger(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := job.ctxs[0].Deadline(); !ok {
		t.Error("run context has no deadline")
	}
}

func TestRunner_StatusCountsRunning(t *testing.T) {
	job := &fakeJob{block: make(chan struct{})}
	r, _ := New(Config{Job: job, Provider: newProvider(t, settings.NewMemoryStore(), nil)})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.OnManualTrigger(context.Background())
	}()

	deadline := time.Now().Add(time.Second)
	for r.Status().Running != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if r.Status().Running != 1 {
		t.Error("Status().Running != 1 during a run")
	}

	close(job.block)
	<-done
	if r.Status().Running != 0 {
		t.Error("Status().Running != 0 after the run")
	}
}
