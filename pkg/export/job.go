package export

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/llmstxt/pkg/telemetry/logging"
)

// TracerName is the instrumentation name used for export spans.
const TracerName = "mercator-hq/llmstxt/export"

// Job regenerates the export document. A Job holds no per-run state, so the
// same value may be shared by the scheduler and the manual trigger; two
// overlapping runs each overwrite the output path and the last one wins.
type Job struct {
	store  ContentStore
	site   SiteInfoProvider
	sink   FileSink
	path   string
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewJob creates an export job writing to path.
func NewJob(store ContentStore, site SiteInfoProvider, sink FileSink, path string) *Job {
	return &Job{
		store:  store,
		site:   site,
		sink:   sink,
		path:   path,
		logger: slog.Default().With("component", "export.job"),
		tracer: otel.Tracer(TracerName),
		now:    time.Now,
	}
}

// Path returns the fixed output path.
func (j *Job) Path() string {
	return j.path
}

// Run builds the document for cfg and overwrites the output path with it.
//
// Unknown content types and types without published items are skipped.
// A StoreError aborts the run before anything is written; a WriteError is
// returned when the sink fails.
func (j *Job) Run(ctx context.Context, cfg ExportConfig) (Report, error) {
	started := j.now()

	runID := logging.GetRunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}

	types := cfg.Types()

	ctx, span := j.tracer.Start(ctx, "export.run", trace.WithAttributes(
		attribute.String("llmstxt.run_id", runID),
		attribute.String("llmstxt.path", j.path),
		attribute.StringSlice("llmstxt.types", types),
	))
	defer span.End()

	report, err := j.run(ctx, types)
	report.RunID = runID
	report.Path = j.path
	report.StartedAt = started
	report.Duration = j.now().Sub(started)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		j.logger.ErrorContext(ctx, "export run failed",
			"run_id", runID,
			"path", j.path,
			"error", err,
		)
		return report, err
	}

	span.SetAttributes(
		attribute.Int("llmstxt.bytes", report.Bytes),
		attribute.Int("llmstxt.sections", report.Sections),
		attribute.Int("llmstxt.items", report.Items),
	)
	span.SetStatus(codes.Ok, "")

	j.logger.InfoContext(ctx, "export run completed",
		"run_id", runID,
		"path", j.path,
		"bytes", report.Bytes,
		"sections", report.Sections,
		"items", report.Items,
		"duration_ms", report.Duration.Milliseconds(),
	)

	return report, nil
}

// run renders and writes the document.
func (j *Job) run(ctx context.Context, types []string) (Report, error) {
	var report Report

	site, err := j.site.SiteInfo(ctx)
	if err != nil {
		return report, NewStoreError("site_info", "", err)
	}

	doc := NewDocument(site)
	counts := make(map[string]int, len(types))

	for _, contentType := range types {
		label, ok, err := j.store.TypeLabel(ctx, contentType)
		if err != nil {
			return report, NewStoreError("type_label", contentType, err)
		}
		if !ok {
			j.logger.DebugContext(ctx, "skipping unknown content type", "type", contentType)
			continue
		}

		items, err := j.store.FetchPublished(ctx, contentType)
		if err != nil {
			return report, NewStoreError("fetch_published", contentType, err)
		}
		if len(items) == 0 {
			j.logger.DebugContext(ctx, "skipping content type without published items", "type", contentType)
			continue
		}

		doc.AddSection(label, prepareItems(site, items))
		counts[contentType] = len(items)
	}

	data := doc.Bytes()
	if err := j.sink.Write(ctx, j.path, data); err != nil {
		return report, NewWriteError(j.path, err)
	}

	report.Bytes = len(data)
	report.Sections = doc.Sections()
	report.Items = doc.Items()
	report.TypeCounts = counts
	return report, nil
}

// prepareItems orders items newest first and normalizes titles and links.
// The sort is stable so ties keep the store's order.
func prepareItems(site SiteInfo, items []ContentItem) []ContentItem {
	out := make([]ContentItem, len(items))
	copy(out, items)

	slices.SortStableFunc(out, func(a, b ContentItem) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})

	for i := range out {
		out[i].Title = CleanTitle(out[i].Title)
		out[i].Permalink = ResolvePermalink(site.BaseURL, out[i].Permalink, out[i].ID)
	}
	return out
}
