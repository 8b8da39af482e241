// Package logging configures structured logging for llmstxt.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Optional rotating log files (lumberjack)
//   - Context-aware fields: trigger and request ID are attached to records
//     logged with the *Context methods
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    File:   logging.FileConfig{Path: "logs/llmstxt.log", MaxSizeMB: 50},
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Shutdown()
//	logger.SetDefault()
//
//	ctx = logging.WithTrigger(ctx, "manual")
//	slog.InfoContext(ctx, "regenerating")  // includes trigger=manual
package logging
