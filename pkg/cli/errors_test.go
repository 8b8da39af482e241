package cli

import (
	"errors"
	"fmt"
	"testing"

	"mercator-hq/llmstxt/pkg/export"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"config with field", NewConfigError("export.interval", "unknown interval"), "config error in export.interval: unknown interval"},
		{"config without field", NewConfigError("", "file not found"), "config error: file not found"},
		{"usage", NewUsageError("unknown shell %q", "tcsh"), `unknown shell "tcsh"`},
		{"command", NewCommandError("generate", errors.New("disk full")), "generate failed: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	cause := export.NewWriteError("llms.txt", errors.New("read-only"))
	err := NewCommandError("generate", cause)

	var writeErr *export.WriteError
	if !errors.As(err, &writeErr) || writeErr.Path != "llms.txt" {
		t.Errorf("errors.As() did not reach the WriteError")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", NewUsageError("bad"), ExitUsage},
		{"config", NewConfigError("", "bad"), ExitConfig},
		{"wrapped settings", NewCommandError("settings show", export.NewConfigError("llms_txt_generator_options", errors.New("bad"))), ExitConfig},
		{"export failure", NewCommandError("generate", export.NewStoreError("fetch_published", "post", errors.New("gone"))), ExitFailure},
		{"plain", fmt.Errorf("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
