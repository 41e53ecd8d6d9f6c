// Package textdiff renders the unified diff shown by --diff and carried
// inside self-check failures.
package textdiff

import (
	"fmt"
	"strings"
)

// Line kinds within a hunk.
type lineKind int

const (
	kindContext lineKind = iota
	kindAdd
	kindRemove
)

const contextLines = 3

type diffLine struct {
	kind    lineKind
	content string
}

type hunk struct {
	origStart, origCount int
	modStart, modCount   int
	lines                []diffLine
}

// Unified returns a unified diff from original to formatted, or "" when
// the two are identical. srcLabel and dstLabel become the header names.
func Unified(original, formatted, srcLabel, dstLabel string) string {
	origLines := splitLines(original)
	newLines := splitLines(formatted)
	hunks := computeHunks(origLines, newLines)
	if len(hunks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", srcLabel)
	fmt.Fprintf(&b, "+++ %s\n", dstLabel)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
			h.origStart, h.origCount, h.modStart, h.modCount)
		for _, line := range h.lines {
			switch line.kind {
			case kindContext:
				b.WriteByte(' ')
			case kindAdd:
				b.WriteByte('+')
			case kindRemove:
				b.WriteByte('-')
			}
			b.WriteString(line.content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type op struct {
	kind    lineKind
	content string
}

func computeHunks(orig, mod []string) []hunk {
	ops := buildOps(orig, mod, lcs(orig, mod))

	type span struct{ start, end int }
	var spans []span
	open := false
	start := 0
	for i, o := range ops {
		change := o.kind != kindContext
		if change && !open {
			start, open = i, true
		} else if !change && open {
			spans = append(spans, span{start, i})
			open = false
		}
	}
	if open {
		spans = append(spans, span{start, len(ops)})
	}
	if len(spans) == 0 {
		return nil
	}

	var hunks []hunk
	for i := 0; i < len(spans); {
		j := i + 1
		for j < len(spans) && spans[j].start-spans[j-1].end <= contextLines*2 {
			j++
		}
		hunks = append(hunks, buildHunk(ops, spans[i].start, spans[j-1].end))
		i = j
	}
	return hunks
}

func buildOps(orig, mod, common []string) []op {
	var ops []op
	oi, mi, ci := 0, 0, 0
	for oi < len(orig) || mi < len(mod) {
		if ci < len(common) && oi < len(orig) && mi < len(mod) &&
			orig[oi] == common[ci] && mod[mi] == common[ci] {
			ops = append(ops, op{kindContext, orig[oi]})
			oi, mi, ci = oi+1, mi+1, ci+1
			continue
		}
		for oi < len(orig) && (ci >= len(common) || orig[oi] != common[ci]) {
			ops = append(ops, op{kindRemove, orig[oi]})
			oi++
		}
		for mi < len(mod) && (ci >= len(common) || mod[mi] != common[ci]) {
			ops = append(ops, op{kindAdd, mod[mi]})
			mi++
		}
	}
	return ops
}

func buildHunk(ops []op, changeStart, changeEnd int) hunk {
	start := changeStart - contextLines
	if start < 0 {
		start = 0
	}
	end := changeEnd + contextLines
	if end > len(ops) {
		end = len(ops)
	}

	h := hunk{origStart: 1, modStart: 1}
	for i := 0; i < start; i++ {
		if ops[i].kind != kindAdd {
			h.origStart++
		}
		if ops[i].kind != kindRemove {
			h.modStart++
		}
	}
	for i := start; i < end; i++ {
		h.lines = append(h.lines, diffLine{ops[i].kind, ops[i].content})
		switch ops[i].kind {
		case kindContext:
			h.origCount++
			h.modCount++
		case kindRemove:
			h.origCount++
		case kindAdd:
			h.modCount++
		}
	}
	return h
}

// lcs computes the longest common subsequence of two line slices.
func lcs(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}
	n := dp[len(a)][len(b)]
	if n == 0 {
		return nil
	}
	out := make([]string, n)
	i, j := len(a), len(b)
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			n--
			out[n] = a[i-1]
			i--
			j--
		case dp[i-1][j] > dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	return out
}
