package pystr

import (
	"math"
	"strings"
)

const tabStop = 8

// FixDocstring re-indents a docstring body so every line after the first
// sits at the given target prefix. Leading tabs are expanded (tab stops
// of eight) before indentation is measured; the minimum indentation
// across all lines but the first is stripped, and non-blank retained
// lines (plus the final line, blank or not) get the target prefix. The
// first line shares the line with the opening delimiter, so it is
// trimmed outright and never re-indented.
func FixDocstring(docstring, prefix string) string {
	if docstring == "" {
		return ""
	}
	lines := linesWithLeadingTabsExpanded(docstring)

	indent := math.MaxInt
	for _, line := range lines[1:] {
		stripped := strings.TrimLeft(line, " \t")
		if stripped != "" && len(line)-len(stripped) < indent {
			indent = len(line) - len(stripped)
		}
	}

	trimmed := []string{strings.TrimSpace(lines[0])}
	if indent < math.MaxInt {
		lastLineIdx := len(lines) - 2
		for i, line := range lines[1:] {
			if len(line) > indent {
				line = line[indent:]
			} else {
				line = ""
			}
			strippedLine := strings.TrimRight(line, " \t")
			if strippedLine != "" || i == lastLineIdx {
				trimmed = append(trimmed, prefix+strippedLine)
			} else {
				trimmed = append(trimmed, "")
			}
		}
	}
	return strings.Join(trimmed, "\n")
}

// linesWithLeadingTabsExpanded splits into lines and expands tabs in the
// leading whitespace only, following the normal tab-stop rules.
func linesWithLeadingTabsExpanded(s string) []string {
	rawLines := strings.Split(s, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		line = strings.TrimSuffix(line, "\r")
		leadEnd := 0
		sawTab := false
		for leadEnd < len(line) && (line[leadEnd] == ' ' || line[leadEnd] == '\t') {
			if line[leadEnd] == '\t' {
				sawTab = true
			}
			leadEnd++
		}
		if sawTab && leadEnd > 0 {
			lines = append(lines, expandTabs(line[:leadEnd])+line[leadEnd:])
		} else {
			lines = append(lines, line)
		}
	}
	return lines
}

// expandTabs replaces tabs with spaces up to the next multiple-of-eight
// column.
func expandTabs(s string) string {
	var sb strings.Builder
	col := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\t' {
			n := tabStop - col%tabStop
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteByte(s[i])
		col++
	}
	return sb.String()
}
