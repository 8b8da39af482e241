// Package sink provides FileSink implementations for the export job.
//
// File writes to the local filesystem, either in place (truncate and
// rewrite) or atomically through a temporary file that is renamed over the
// target. Memory keeps documents in a map and is meant for tests and dry runs.
//
//	s := sink.NewFile(&sink.Config{Atomic: true})
//	job := export.NewJob(store, site, s, "/var/www/html/llms.txt")
package sink
