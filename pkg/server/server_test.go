package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"mercator-hq/llmstxt/pkg/config"
	"mercator-hq/llmstxt/pkg/content"
	"mercator-hq/llmstxt/pkg/content/storage"
	"mercator-hq/llmstxt/pkg/export"
	"mercator-hq/llmstxt/pkg/runner"
	"mercator-hq/llmstxt/pkg/settings"
)

type fakeRunner struct {
	err         error
	triggers    int
	reschedules int
}

func (f *fakeRunner) OnManualTrigger(ctx context.Context) (export.Report, error) {
	f.triggers++
	return export.Report{RunID: "run-1", Path: "llms.txt", Bytes: 42}, f.err
}

func (f *fakeRunner) Reschedule(ctx context.Context) error {
	f.reschedules++
	return nil
}

func (f *fakeRunner) Status() runner.Status {
	return runner.Status{Scheduled: true, Interval: export.IntervalDaily}
}

type fixture struct {
	server   *Server
	runner   *fakeRunner
	store    *settings.MemoryStore
	provider *settings.Provider
	docPath  string
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	ctx := context.Background()

	types := storage.NewMemoryStorage()
	for _, ct := range []content.ContentType{
		{Name: "post", Label: "Posts", Public: true},
		{Name: "page", Label: "Pages", Public: true},
		{Name: "revision", Label: "Revisions"},
	} {
		if err := types.RegisterType(ctx, ct); err != nil {
			t.Fatal(err)
		}
	}

	store := settings.NewMemoryStore()
	provider := settings.NewProvider(store, settings.Options{PostTypes: []string{"post"}, Interval: "daily"})
	fr := &fakeRunner{}
	docPath := filepath.Join(t.TempDir(), "llms.txt")

	srv := New(&config.ServerConfig{AdminToken: token, ShutdownTimeout: time.Second}, Dependencies{
		Runner:       fr,
		Settings:     provider,
		Types:        types,
		Runs:         store,
		Metrics:      http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "metrics") }),
		DocumentPath: docPath,
	})

	return &fixture{server: srv, runner: fr, store: store, provider: provider, docPath: docPath}
}

func (f *fixture) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestPublicRoutes(t *testing.T) {
	f := newFixture(t, "s3cret")

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/version", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, "", nil)
			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d", rec.Code, tt.want)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestDocument(t *testing.T) {
	f := newFixture(t, "")

	if rec := f.do(t, http.MethodGet, "/llms.txt", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("code before generation = %d, want 404", rec.Code)
	}

	doc := "# Acme\n> Widgets"
	if err := os.WriteFile(f.docPath, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	rec := f.do(t, http.MethodGet, "/llms.txt", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != doc {
		t.Errorf("code = %d, body = %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestAuth(t *testing.T) {
	f := newFixture(t, "s3cret")

	if rec := f.do(t, http.MethodGet, "/api/v1/status", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("code without token = %d, want 401", rec.Code)
	}
	rec := f.do(t, http.MethodGet, "/api/v1/status", "", map[string]string{"Authorization": "Bearer s3cret"})
	if rec.Code != http.StatusOK {
		t.Errorf("code with token = %d, want 200", rec.Code)
	}

	var st runner.Status
	decode(t, rec, &st)
	if !st.Scheduled || st.Interval != export.IntervalDaily {
		t.Errorf("status = %+v", st)
	}
}

func TestSettings(t *testing.T) {
	f := newFixture(t, "")

	var got settingsResponse
	rec := f.do(t, http.MethodGet, "/api/v1/settings", "", nil)
	decode(t, rec, &got)
	if !reflect.DeepEqual(got.PostTypes, []string{"post"}) || got.Interval != "daily" {
		t.Errorf("initial settings = %+v, want fallback", got)
	}

	rec = f.do(t, http.MethodPut, "/api/v1/settings", `{"post_types":"page","interval":"twice-daily"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT code = %d, body = %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &got)
	if !reflect.DeepEqual(got.PostTypes, []string{"page"}) || got.Interval != "twicedaily" {
		t.Errorf("saved settings = %+v", got)
	}
	if f.runner.reschedules != 1 {
		t.Errorf("reschedules = %d, want 1", f.runner.reschedules)
	}

	blob, err := f.store.GetOption(context.Background(), settings.OptionsKey)
	if err != nil || string(blob) != `{"post_types":["page"],"interval":"twicedaily"}` {
		t.Errorf("stored blob = %s, err = %v", blob, err)
	}
}

func TestSettings_Invalid(t *testing.T) {
	f := newFixture(t, "")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"post_types":`, http.StatusBadRequest},
		{"post types object", `{"post_types":{"a":1}}`, http.StatusBadRequest},
		{"unknown interval", `{"interval":"weekly"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPut, "/api/v1/settings", tt.body, nil)
			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
	if f.runner.reschedules != 0 {
		t.Error("rejected settings triggered a reschedule")
	}
}

func TestSettings_MalformedStoredBlob(t *testing.T) {
	f := newFixture(t, "")
	if err := f.store.PutOption(context.Background(), settings.OptionsKey, []byte(`{"post_types":42}`)); err != nil {
		t.Fatal(err)
	}

	var got settingsResponse
	rec := f.do(t, http.MethodGet, "/api/v1/settings", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	decode(t, rec, &got)
	if len(got.PostTypes) != 0 || got.Interval != "daily" || got.Warning == "" {
		t.Errorf("settings = %+v, want empty types, daily and a warning", got)
	}
}

func TestContentTypes(t *testing.T) {
	f := newFixture(t, "")

	var got []contentTypeResponse
	rec := f.do(t, http.MethodGet, "/api/v1/content-types", "", nil)
	decode(t, rec, &got)

	want := []contentTypeResponse{
		{Name: "page", Label: "Pages", Selected: false},
		{Name: "post", Label: "Posts", Selected: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("content types = %+v, want %+v", got, want)
	}
}

func TestRegenerate(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
	}{
		{"success", nil, http.StatusOK, settings.StatusSuccess},
		{"failure", export.NewWriteError("llms.txt", errors.New("read-only")), http.StatusInternalServerError, settings.StatusFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			f.runner.err = tt.err

			rec := f.do(t, http.MethodPost, "/api/v1/regenerate", "", nil)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}

			var got regenerateResponse
			decode(t, rec, &got)
			if got.Status != tt.wantStatus || got.Message == "" {
				t.Errorf("response = %+v", got)
			}
			if tt.err == nil && (got.Report == nil || got.Report.Bytes != 42) {
				t.Errorf("report = %+v", got.Report)
			}
			if f.runner.triggers != 1 {
				t.Errorf("triggers = %d, want 1", f.runner.triggers)
			}
		})
	}
}

func TestRegenerate_RateLimited(t *testing.T) {
	fr := &fakeRunner{}
	srv := New(&config.ServerConfig{RegenerateBurst: 2, RegenerateRefill: time.Hour}, Dependencies{
		Runner:   fr,
		Settings: settings.NewProvider(settings.NewMemoryStore(), settings.Options{}),
		Types:    storage.NewMemoryStorage(),
		Runs:     settings.NewMemoryStore(),
	})
	handler := srv.Handler()

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/api/v1/regenerate", nil))
		codes = append(codes, last.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
	if fr.triggers != 2 {
		t.Errorf("triggers = %d, want 2", fr.triggers)
	}
}

func TestRuns(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		run := &settings.RunRecord{ID: id, Trigger: settings.TriggerManual, Status: settings.StatusSuccess, StartedAt: time.Unix(int64(i), 0)}
		if err := f.store.RecordRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	var runs []settings.RunRecord
	rec := f.do(t, http.MethodGet, "/api/v1/runs?limit=2", "", nil)
	decode(t, rec, &runs)
	if len(runs) != 2 || runs[0].ID != "c" {
		t.Errorf("runs = %+v, want the 2 newest", runs)
	}

	if rec := f.do(t, http.MethodGet, "/api/v1/runs?limit=zero", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid limit code = %d, want 400", rec.Code)
	}
}

func TestStartAndShutdown(t *testing.T) {
	f := newFixture(t, "")
	f.server.config.ListenAddress = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.server.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for f.server.Addr() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !f.server.IsRunning() {
		t.Fatal("server not running")
	}

	resp, err := http.Get("http://" + f.server.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("code = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
	if f.server.IsRunning() {
		t.Error("still running after shutdown")
	}
}
