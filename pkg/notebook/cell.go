// Package notebook prepares Jupyter cell sources for the formatter and
// restores their notebook specific syntax afterwards.
package notebook

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsupportedCell marks a cell the formatter must leave alone, either
// because masking could not survive a round trip or because the cell is
// not Python at all.
type errUnsupportedCell struct{ reason string }

func (e *errUnsupportedCell) Error() string { return "unsupported cell: " + e.reason }

// IsUnsupportedCell reports whether err means the cell must pass through
// untouched.
func IsUnsupportedCell(err error) bool {
	_, ok := err.(*errUnsupportedCell)
	return ok
}

var trailingSemiPat = regexp.MustCompile(`;[ \t]*((#[^\n]*)?)$`)

// RemoveTrailingSemicolon strips a semicolon ending the last statement
// of a cell, the Jupyter idiom for muting output. The boolean tells
// PutTrailingSemicolonBack whether to restore it.
func RemoveTrailingSemicolon(src string) (string, bool) {
	trimmed := strings.TrimRight(src, " \t\n")
	loc := trailingSemiPat.FindStringIndex(trimmed)
	if loc == nil {
		return src, false
	}
	rest := trimmed[loc[0]+1:]
	out := trimmed[:loc[0]] + rest + src[len(trimmed):]
	return out, true
}

// PutTrailingSemicolonBack reinstates the semicolon removed before
// formatting, placing it after the last code character and before any
// trailing comment.
func PutTrailingSemicolonBack(src string, hadSemicolon bool) string {
	if !hadSemicolon {
		return src
	}
	trimmed := strings.TrimRight(src, " \t\n")
	lines := strings.Split(trimmed, "\n")
	last := lines[len(lines)-1]
	if idx := strings.Index(last, "  #"); idx >= 0 {
		last = last[:idx] + ";" + last[idx:]
	} else {
		last += ";"
	}
	lines[len(lines)-1] = last
	return strings.Join(lines, "\n") + src[len(trimmed):]
}

// Line magics (%), cell magics (%%), shell escapes (!), help (?) and
// automagic-ish tokens get masked so the Python parser never sees them.
var magicLinePat = regexp.MustCompile(`^(\s*)(%%?|!!?|\?\??)(.*)$`)

// Replacement masks are hashes of the original line, so distinct magics
// never collide and unmasking can verify it found its own token.
func magicMask(line string) string {
	sum := sha256.Sum256([]byte(line))
	return "__magic_" + hex.EncodeToString(sum[:8]) + "__"
}

// MaskCellMagics rewrites magic lines into placeholder identifiers the
// parser accepts. The returned map drives UnmaskCellMagics. An error
// means the cell cannot be masked faithfully and must not be formatted.
func MaskCellMagics(src string) (string, map[string]string, error) {
	lines := strings.Split(src, "\n")
	masks := make(map[string]string)
	for i, line := range lines {
		m := magicLinePat.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[2] == "%%" && i > 0 {
			// A cell magic below the first line cannot be isolated.
			return "", nil, &errUnsupportedCell{reason: "cell magic not at cell start"}
		}
		mask := magicMask(line)
		masks[mask] = strings.TrimRight(line, " \t")
		lines[i] = m[1] + mask
	}
	return strings.Join(lines, "\n"), masks, nil
}

// UnmaskCellMagics restores the original magic lines. If the formatter
// transformed a placeholder beyond recognition the cell is refused, so
// a notebook never loses a magic.
func UnmaskCellMagics(src string, masks map[string]string) (string, error) {
	for mask, original := range masks {
		count := strings.Count(src, mask)
		if count != 1 {
			return "", &errUnsupportedCell{reason: fmt.Sprintf("magic placeholder %s appears %d times", mask, count)}
		}
		idx := strings.Index(src, mask)
		lineStart := strings.LastIndexByte(src[:idx], '\n') + 1
		lineEnd := idx + len(mask)
		if lineEnd < len(src) && src[lineEnd] != '\n' {
			return "", &errUnsupportedCell{reason: "magic placeholder no longer ends its line"}
		}
		if strings.TrimSpace(src[lineStart:idx]) != "" {
			return "", &errUnsupportedCell{reason: "magic placeholder no longer starts its line"}
		}
		src = src[:lineStart] + original + src[lineEnd:]
	}
	return src, nil
}

// magicMaskPat matches the placeholder shape produced by magicMask. A
// cell already containing one was transformed by an earlier run and
// cannot be masked unambiguously.
var magicMaskPat = regexp.MustCompile(`__magic_[0-9a-f]{16}__`)

// ValidateCell rejects cells the formatter must skip outright: help
// syntax anywhere, stale magic placeholders, and cell magics that are
// not plain Python, unless the magic is in the allow list.
func ValidateCell(src string, pythonCellMagics map[string]bool) error {
	if magicMaskPat.MatchString(src) {
		return &errUnsupportedCell{reason: "cell contains a magic placeholder"}
	}
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "%%") {
		name := strings.TrimPrefix(strings.Fields(trimmed)[0], "%%")
		if !pythonCellMagics[name] {
			return &errUnsupportedCell{reason: "non-python cell magic %%" + name}
		}
	}
	if strings.HasSuffix(strings.TrimRight(trimmed, " \t"), "?") {
		return &errUnsupportedCell{reason: "help syntax"}
	}
	return nil
}

// DefaultPythonCellMagics are the cell magics whose bodies are Python.
func DefaultPythonCellMagics() map[string]bool {
	return map[string]bool{
		"capture": true, "prun": true, "pypy": true, "python": true,
		"python3": true, "time": true, "timeit": true,
	}
}
