// Package runner drives the export job from its two triggers: the
// recurring scheduler tick and the manual trigger behind the CLI and the
// HTTP API.
//
//	r, err := runner.New(runner.Config{
//	    Job:        job,
//	    Provider:   settingsProvider,
//	    Scheduler:  scheduler.New(),
//	    History:    settingsStore,
//	    Observer:   collector,
//	    RunOnStart: cfg.Export.RunOnStart,
//	})
//	if err := r.Start(ctx); err != nil {
//	    return err
//	}
//	defer r.Stop()
//
//	report, err := r.OnManualTrigger(ctx)
//
// Both triggers read the current configuration at the start of the run, so
// a saved post type selection applies to the next run. A changed interval
// is applied to the scheduler by the next run or by an explicit Reschedule.
package runner
