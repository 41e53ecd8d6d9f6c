package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/pyfmt/pkg/runner"
)

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// FormatSummary renders the end-of-run report line in the shape
// "N files reformatted, M files left unchanged, K files failed to
// reformat." with check and diff modes switching to the conditional
// wording.
func (s *Styles) FormatSummary(stats runner.Stats, writeBack runner.WriteBack) string {
	var parts []string

	reformatted := "reformatted"
	failed := "failed to reformat"
	if writeBack != runner.WriteBackYes {
		reformatted = "would be reformatted"
		failed = "would fail to reformat"
	}

	if stats.Reformatted > 0 {
		parts = append(parts, s.Changed.Render(
			fmt.Sprintf("%s %s", plural(stats.Reformatted, "file"), reformatted)))
	}
	if stats.Unchanged > 0 {
		parts = append(parts, s.Dim.Render(
			fmt.Sprintf("%s left unchanged", plural(stats.Unchanged, "file"))))
	}
	if stats.Failed > 0 {
		parts = append(parts, s.Failure.Render(
			fmt.Sprintf("%s %s", plural(stats.Failed, "file"), failed)))
	}
	if len(parts) == 0 {
		return s.Dim.Render("No Python files are present to be formatted. Nothing to do.") + "\n"
	}

	head := ""
	if stats.Failed == 0 {
		head = s.Success.Render("All done!") + "\n"
	} else {
		head = s.Failure.Render("Oh no!") + "\n"
	}
	return head + strings.Join(parts, ", ") + ".\n"
}

// FormatFileStatus renders one per-file progress line for verbose mode.
func (s *Styles) FormatFileStatus(outcome runner.FileOutcome, writeBack runner.WriteBack) string {
	path := s.FilePath.Render(outcome.Path)
	switch {
	case outcome.Error != nil:
		return fmt.Sprintf("%s %s: %v\n", s.Failure.Render("error:"), path, outcome.Error)
	case outcome.Changed && writeBack == runner.WriteBackCheck:
		return fmt.Sprintf("%s %s\n", s.Changed.Render("would reformat"), path)
	case outcome.Changed && writeBack == runner.WriteBackYes:
		return fmt.Sprintf("%s %s\n", s.Changed.Render("reformatted"), path)
	case outcome.Cached:
		return s.Dim.Render(fmt.Sprintf("%s already formatted (cached)", outcome.Path)) + "\n"
	default:
		return s.Dim.Render(fmt.Sprintf("%s already formatted", outcome.Path)) + "\n"
	}
}
