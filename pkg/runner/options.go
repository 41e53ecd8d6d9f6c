// Package runner provides multi-file formatting orchestration.
package runner

import (
	"regexp"

	"github.com/yaklabco/pyfmt/pkg/formatter"
)

// WriteBack selects what happens with a reformatted file.
type WriteBack int

const (
	// WriteBackYes writes the new contents over the file.
	WriteBackYes WriteBack = iota

	// WriteBackCheck reports files that would change without touching
	// them.
	WriteBackCheck

	// WriteBackDiff prints a unified diff instead of writing.
	WriteBackDiff

	// WriteBackColorDiff prints a colored unified diff.
	WriteBackColorDiff
)

func (w WriteBack) String() string {
	switch w {
	case WriteBackYes:
		return "write"
	case WriteBackCheck:
		return "check"
	case WriteBackDiff:
		return "diff"
	case WriteBackColorDiff:
		return "color-diff"
	}
	return "unknown"
}

// IsDiff reports whether the mode prints diffs instead of writing.
func (w WriteBack) IsDiff() bool {
	return w == WriteBackDiff || w == WriteBackColorDiff
}

// DefaultIncludePattern matches the files formatted when none is given.
const DefaultIncludePattern = `(\.pyi?|\.ipynb)$`

// DefaultExcludePattern skips virtual environments, VCS metadata and
// build output. Patterns match against /-separated paths relative to the
// working directory, with a leading slash, and directories carry a
// trailing slash.
const DefaultExcludePattern = `/(\.direnv|\.eggs|\.git|\.hg|\.ipynb_checkpoints|\.mypy_cache|\.nox|\.pytest_cache|\.ruff_cache|\.tox|\.venv|\.svn|\.vscode|__pypackages__|_build|buck-out|build|dist|venv)/`

// Options controls one formatting run.
type Options struct {
	// Paths are the user-specified files or directories to process.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir resolves relative Paths; empty means the process
	// working directory.
	WorkingDir string

	// Include must match a file's relative path for it to be picked up
	// during directory traversal. Explicitly named files bypass it.
	Include *regexp.Regexp

	// Exclude and ExtendExclude skip matching paths during traversal.
	// ForceExclude applies even to explicitly named files.
	Exclude       *regexp.Regexp
	ExtendExclude *regexp.Regexp
	ForceExclude  *regexp.Regexp

	// WriteBack selects write, check or diff behavior.
	WriteBack WriteBack

	// Mode is the formatting configuration shared by every file.
	Mode formatter.Mode

	// Fast skips the equivalence and stability self checks.
	Fast bool

	// NoCache disables the clean-file cache.
	NoCache bool

	// Jobs caps the worker count; zero or negative means one worker
	// per CPU.
	Jobs int
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

func (o Options) effectiveInclude() *regexp.Regexp {
	if o.Include != nil {
		return o.Include
	}
	return regexp.MustCompile(DefaultIncludePattern)
}

func (o Options) effectiveExclude() *regexp.Regexp {
	if o.Exclude != nil {
		return o.Exclude
	}
	return regexp.MustCompile(DefaultExcludePattern)
}
