// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"

	// Run configuration fields.
	FieldWriteBack  = "write_back"
	FieldFast       = "fast"
	FieldJobs       = "jobs"
	FieldLineLength = "line_length"
	FieldTargets    = "target_versions"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldReformatted     = "reformatted"
	FieldUnchanged       = "unchanged"
	FieldFailed          = "failed"
	FieldCacheHits       = "cache_hits"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
