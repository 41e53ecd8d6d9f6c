package pystr

import "regexp"

// quotePatterns holds the compiled escape-rewriting patterns for one
// quote-style pair.
type quotePatterns struct {
	// unescapedNew matches an occurrence of the new quote that is not
	// preceded by an odd number of backslashes.
	unescapedNew *regexp.Regexp

	// escapedNew matches the new quote preceded by exactly one effective
	// backslash, i.e. an unnecessary escape once the quote roles swap.
	escapedNew *regexp.Regexp

	// escapedOrig is the same for the original quote.
	escapedOrig *regexp.Regexp
}

// patternsFor compiles (or returns cached) patterns for the given quote
// pair. There are only four possible pairs, so the cache stays tiny;
// the bound guards against misuse.
func patternsFor(origQuote, newQuote string) *quotePatterns {
	key := origQuote + "\x00" + newQuote
	patternCache.RLock()
	pats, ok := patternCache.m[key]
	patternCache.RUnlock()
	if ok {
		return pats
	}

	pats = &quotePatterns{
		unescapedNew: regexp.MustCompile(`(([^\\]|^)(\\\\)*)` + newQuote),
		escapedNew:   regexp.MustCompile(`([^\\]|^)\\((?:\\\\)*)` + newQuote),
		escapedOrig:  regexp.MustCompile(`([^\\]|^)\\((?:\\\\)*)` + origQuote),
	}

	patternCache.Lock()
	if len(patternCache.m) >= maxPatternEntries {
		patternCache.m = make(map[string]*quotePatterns)
	}
	patternCache.m[key] = pats
	patternCache.Unlock()
	return pats
}

// subTwice applies the replacement twice so overlapping matches (two
// escapes sharing a boundary character) are rewritten too.
func subTwice(re *regexp.Regexp, repl, s string) string {
	return re.ReplaceAllString(re.ReplaceAllString(s, repl), repl)
}
