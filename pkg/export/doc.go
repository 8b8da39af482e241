// Package export builds the llms.txt document from published site content.
//
// # Document Layout
//
// A run produces a flat, Markdown-like index:
//
//	# {site name}
//	> {site description}
//
//	This site contains structured content formatted for LLM-friendly consumption.
//
//	## {type label}
//	- [{title}]({permalink}): ID {id}
//
// Sections follow the configured type order. Types that are unknown, not
// public, or without published items produce no section. Items are listed
// newest first. Lines are joined with "\n" and there is no trailing newline.
//
// # Basic Usage
//
//	job := export.NewJob(contentStore, export.StaticSiteInfo{
//	    Name:        "Acme",
//	    Description: "Widgets",
//	    BaseURL:     "https://acme.test",
//	}, sink.NewFile(nil), "/var/www/html/llms.txt")
//
//	report, err := job.Run(ctx, export.ExportConfig{
//	    IncludedTypes: []string{"post", "page"},
//	    Interval:      export.IntervalDaily,
//	})
//
// # Errors
//
//   - StoreError: the content store or site info provider failed. Nothing
//     is written and the previous file stays in place.
//   - WriteError: the sink could not write the output path.
//   - ConfigError: malformed stored settings. Raised by config providers,
//     which fall back to an empty type list instead of failing the run.
//
// The job holds no lock. Overlapping runs each overwrite the same path and the
// last writer wins; callers that need stricter ordering serialize runs.
package export
