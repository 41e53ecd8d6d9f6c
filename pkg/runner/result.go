package runner

import (
	"errors"

	"github.com/yaklabco/pyfmt/pkg/formatter"
	"github.com/yaklabco/pyfmt/pkg/pyparse"
)

// FileOutcome records what happened to one file.
type FileOutcome struct {
	// Path is the absolute path that was processed.
	Path string

	// Changed reports whether formatting would alter the file.
	Changed bool

	// Written reports whether new contents were written back.
	Written bool

	// Cached reports the file was skipped via the clean-file cache.
	Cached bool

	// Diff holds the unified diff under the diff write-back modes.
	Diff string

	// Error is set when the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found.
	FilesDiscovered int

	// Reformatted counts files that changed (or would change).
	Reformatted int

	// Unchanged counts files already in canonical form.
	Unchanged int

	// Failed counts files that could not be processed.
	Failed int

	// CacheHits counts files skipped because the cache proved them
	// clean.
	CacheHits int
}

// Result is the overall runner result. Files are ordered by path.
type Result struct {
	Files []FileOutcome
	Stats Stats
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	switch {
	case outcome.Error != nil:
		r.Stats.Failed++
	case outcome.Changed:
		r.Stats.Reformatted++
	default:
		r.Stats.Unchanged++
		if outcome.Cached {
			r.Stats.CacheHits++
		}
	}
}

// HasInternalFault reports whether any file tripped a self check.
func (r *Result) HasInternalFault() bool {
	if r == nil {
		return false
	}
	for _, f := range r.Files {
		if formatter.IsInternalFault(f.Error) {
			return true
		}
	}
	return false
}

// HasInvalidInput reports whether any file failed to parse.
func (r *Result) HasInvalidInput() bool {
	if r == nil {
		return false
	}
	for _, f := range r.Files {
		var inv *pyparse.InvalidInputError
		if errors.As(f.Error, &inv) {
			return true
		}
	}
	return false
}

// ExitCode folds the run into the process status: 0 when nothing needed
// doing, 1 when --check found work or an input could not be parsed, and
// 123 when a self check failed.
func (r *Result) ExitCode(writeBack WriteBack) int {
	if r == nil {
		return 0
	}
	if r.HasInternalFault() {
		return 123
	}
	if r.Stats.Failed > 0 {
		return 1
	}
	if writeBack == WriteBackCheck && r.Stats.Reformatted > 0 {
		return 1
	}
	return 0
}
