package server

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"mercator-hq/llmstxt/pkg/export"
	"mercator-hq/llmstxt/pkg/settings"
)

// maxSettingsBody caps the PUT /api/v1/settings body.
const maxSettingsBody = 64 << 10

// settingsResponse is the body of the settings endpoints.
type settingsResponse struct {
	PostTypes []string `json:"post_types"`
	Interval  string   `json:"interval"`
	Warning   string   `json:"warning,omitempty"`
}

// contentTypeResponse is one entry of GET /api/v1/content-types.
type contentTypeResponse struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// regenerateResponse is the body of POST /api/v1/regenerate.
type regenerateResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Report  *export.Report `json:"report,omitempty"`
}

// handleDocument serves the last generated document.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(s.deps.DocumentPath)
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusNotFound, "llms.txt has not been generated yet")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to open document", "path", s.deps.DocumentPath, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read llms.txt")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read llms.txt")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	http.ServeContent(w, r, "llms.txt", info.ModTime(), f)
}

// handleGetSettings returns the stored options. Malformed settings are
// reported the way the export job reads them, with a warning.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	opts, err := s.deps.Settings.Options(r.Context())
	if err != nil {
		var cfgErr *export.ConfigError
		if !errors.As(err, &cfgErr) {
			s.logger.ErrorContext(r.Context(), "failed to read settings", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read settings")
			return
		}
		writeJSON(w, http.StatusOK, settingsResponse{
			PostTypes: []string{},
			Interval:  string(export.DefaultInterval),
			Warning:   cfgErr.Error(),
		})
		return
	}

	cfg := opts.ExportConfig()
	writeJSON(w, http.StatusOK, settingsResponse{
		PostTypes: nonNil(cfg.Types()),
		Interval:  string(cfg.Interval),
	})
}

// handlePutSettings replaces the stored options and applies a changed
// interval to the scheduler.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSettingsBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	opts, err := settings.DecodeOptions(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := opts.Normalize(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.deps.Settings.Save(r.Context(), opts)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to save settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	if s.deps.Runner != nil {
		if err := s.deps.Runner.Reschedule(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "failed to reschedule export", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		PostTypes: nonNil(saved.PostTypes),
		Interval:  saved.Interval,
	})
}

// handleContentTypes lists the public types and marks the selected ones.
func (s *Server) handleContentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.deps.Types.PublicTypes(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to list content types", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list content types")
		return
	}

	selected := make(map[string]bool)
	if opts, err := s.deps.Settings.Options(r.Context()); err == nil {
		for _, t := range opts.ExportConfig().Types() {
			selected[t] = true
		}
	}

	out := make([]contentTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, contentTypeResponse{
			Name:     t.Name,
			Label:    t.DisplayLabel(),
			Selected: selected[t.Name],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRegenerate runs the export now and reports a single outcome.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Runner.OnManualTrigger(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, regenerateResponse{
			Status:  settings.StatusFailure,
			Message: "llms.txt generation failed: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, regenerateResponse{
		Status:  settings.StatusSuccess,
		Message: "llms.txt regenerated",
		Report:  &report,
	})
}

// handleStatus returns the runner state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Runner.Status())
}

// handleRuns lists recent runs.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := s.deps.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.deps.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []settings.RunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
