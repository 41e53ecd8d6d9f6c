// Package comments extracts typed comment records from leaf whitespace
// prefixes and collapses fmt: off/on and fmt: skip regions into frozen
// leaves.
//
// Comments never exist as real tokens: the tokenizer shoves them into the
// whitespace prefix of the following leaf. This package re-derives them
// on demand. Because prefixes are immutable once parsed, extraction is a
// pure function of the prefix text and is memoized.
package comments

import (
	"strings"
	"sync"
)

// Comment describes one comment parsed out of a leaf prefix.
type Comment struct {
	// Standalone is true when the comment occupies its own line, sharing
	// it with no code. A trailing comment after code is not standalone.
	Standalone bool

	// Text is the normalized comment text, always starting with "#".
	Text string

	// Newlines is the number of blank lines immediately before the
	// comment.
	Newlines int

	// Consumed is how many characters of the prefix were consumed up to
	// and including this comment's line.
	Consumed int
}

const maxCacheEntries = 4096

// listCache memoizes ListComments results. Entries are immutable once
// inserted, so concurrent readers need no coordination beyond the map
// lock. When the cache fills up it is dropped wholesale; correctness
// never depends on a hit.
var listCache = struct {
	sync.RWMutex
	m map[listKey][]Comment
}{m: make(map[listKey][]Comment)}

type listKey struct {
	prefix      string
	isEndMarker bool
}

// ListComments parses the given leaf prefix into an ordered list of
// Comment records. isEndMarker must be true when the prefix belongs to
// the end-of-input leaf: every comment there is standalone because no
// code can follow it.
func ListComments(prefix string, isEndMarker bool) []Comment {
	if prefix == "" || !strings.Contains(prefix, "#") {
		return nil
	}

	key := listKey{prefix: prefix, isEndMarker: isEndMarker}
	listCache.RLock()
	cached, ok := listCache.m[key]
	listCache.RUnlock()
	if ok {
		return cached
	}

	result := listComments(prefix, isEndMarker)

	listCache.Lock()
	if len(listCache.m) >= maxCacheEntries {
		listCache.m = make(map[listKey][]Comment)
	}
	listCache.m[key] = result
	listCache.Unlock()
	return result
}

func listComments(prefix string, isEndMarker bool) []Comment {
	var result []Comment
	consumed := 0
	nlines := 0
	ignoredLines := 0
	for index, line := range splitLines(prefix) {
		consumed += len(line) + 1 // plus the newline removed by the split
		line = strings.TrimLeft(line, " \t\f\v")
		if line == "" {
			nlines++
		}
		if !strings.HasPrefix(line, "#") {
			// An escaped newline outside a comment is not a real line
			// break. A comment following it is a trailing comment of the
			// continued line, not a standalone one.
			if strings.HasSuffix(line, "\\") {
				ignoredLines++
			}
			continue
		}

		standalone := index != ignoredLines || isEndMarker
		result = append(result, Comment{
			Standalone: standalone,
			Text:       MakeComment(line),
			Newlines:   nlines,
			Consumed:   consumed,
		})
		nlines = 0
	}
	return result
}

// splitLines splits on "\n" and "\r\n" boundaries the way the original
// prefix was accumulated.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

const nonBreakingSpace = " "

// MakeComment returns a consistently formatted comment from the given
// content. All comments except "#!", "#:", "##", "#'" and "#%" get
// exactly one space between the hash sign and the content. A missing
// leading hash sign is supplied.
func MakeComment(content string) string {
	content = strings.TrimRight(content, " \t\f\v\r\n")
	if content == "" {
		return "#"
	}

	if content[0] == '#' {
		content = content[1:]
	}
	if strings.HasPrefix(content, nonBreakingSpace) &&
		!strings.HasPrefix(strings.TrimLeft(content, nonBreakingSpace+" \t"), "type:") {
		content = " " + content[len(nonBreakingSpace):]
	}
	if content != "" && !strings.ContainsRune(" !:#'%", rune(content[0])) {
		content = " " + content
	}
	return "#" + content
}
