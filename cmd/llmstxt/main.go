// llmstxt exports an llms.txt index of a site's published content.
//
// The export lists every published item of the selected content types under
// a heading per type and is regenerated on a schedule (hourly, twice daily or
// daily) and on demand.
//
// Usage:
//
//	# Run the scheduler and the admin API
//	llmstxt run --config config.yaml
//
//	# Regenerate the file once
//	llmstxt generate
//
//	# Select the exported types and the interval
//	llmstxt settings set --post-types post,page --interval hourly
//
//	# Import content from a fixture file
//	llmstxt content import fixtures/content.yaml
//
//	# Show the latest runs
//	llmstxt runs --limit 10
package main

func main() {
	Execute()
}
