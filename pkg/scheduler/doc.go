// Package scheduler runs the export on the configured regeneration interval.
//
// It wraps robfig/cron with a single constant-delay entry:
//
//	hourly     -> every 1h
//	twicedaily -> every 12h
//	daily      -> every 24h
//
// Reschedule swaps the entry in place when the interval setting changes, so
// no restart is needed. Cancel removes the pending tick; Stop also waits for
// a tick that is already running.
package scheduler
