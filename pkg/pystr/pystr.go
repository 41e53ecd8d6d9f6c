// Package pystr canonicalizes the lexical form of Python string
// literals: quote characters, escaping, prefix casing, f-string brace
// conventions and docstring indentation. It works on raw token text and
// never needs a parse tree.
package pystr

import (
	"strings"
	"sync"
)

// PrefixChars are all legal string-prefix characters.
const PrefixChars = "furbFURB"

// Prefix returns the literal's prefix: the characters before the first
// quote, e.g. "", "r", "rb" or "f".
func Prefix(s string) string {
	i := 0
	for i < len(s) && strings.IndexByte(PrefixChars, s[i]) >= 0 {
		i++
	}
	return s[:i]
}

// HasTripleQuotes reports whether the literal body is delimited by
// triple quotes.
func HasTripleQuotes(s string) bool {
	raw := strings.TrimLeft(s, PrefixChars)
	return strings.HasPrefix(raw, `"""`) || strings.HasPrefix(raw, "'''")
}

// NormalizePrefix lowercases the f and b prefix characters and drops the
// legacy u prefix entirely. When two characters remain the r character
// moves to the front so equivalent literals share one spelling.
func NormalizePrefix(s string) string {
	prefix := Prefix(s)
	rest := s[len(prefix):]
	newPrefix := strings.NewReplacer("F", "f", "B", "b", "U", "", "u", "").Replace(prefix)
	if len(newPrefix) == 2 && lower(newPrefix[0]) != 'r' {
		newPrefix = string(newPrefix[1]) + string(newPrefix[0])
	}
	return newPrefix + rest
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

const maxPatternEntries = 64

// patternCache memoizes compiled quote-rewriting patterns. The pattern
// set is tiny (one per quote style) so the bound is never hit in
// practice; it exists to keep the cache from growing on adversarial
// input.
var patternCache = struct {
	sync.RWMutex
	m map[string]*quotePatterns
}{m: make(map[string]*quotePatterns)}

// NormalizeQuotes prefers double quotes, but only when that does not
// increase the amount of escaping. It adds and removes backslashes as
// the quote roles swap. Strings nested inside f-string expressions are
// never touched: if swapping quotes would force a new escape inside an
// interpolated expression, the literal is returned unchanged.
func NormalizeQuotes(s string) string {
	value := strings.TrimLeft(s, PrefixChars)
	var origQuote, newQuote string
	switch {
	case strings.HasPrefix(value, `"""`):
		return s
	case strings.HasPrefix(value, "'''"):
		origQuote, newQuote = "'''", `"""`
	case strings.HasPrefix(value, `"`):
		origQuote, newQuote = `"`, "'"
	default:
		origQuote, newQuote = "'", `"`
	}

	firstQuotePos := strings.Index(s, origQuote)
	if firstQuotePos == -1 {
		return s
	}

	prefix := s[:firstQuotePos]
	if len(s) < firstQuotePos+2*len(origQuote) {
		return s
	}
	body := s[firstQuotePos+len(origQuote) : len(s)-len(origQuote)]
	pats := patternsFor(origQuote, newQuote)

	var newBody string
	if strings.ContainsAny(prefix, "rR") {
		if pats.unescapedNew.MatchString(body) {
			// An unescaped new-style quote inside a raw string cannot be
			// escaped, so converting is impossible.
			return s
		}
		newBody = body
	} else {
		// Remove escapes that target the alternate quote but are no
		// longer necessary.
		newBody = subTwice(pats.escapedNew, "${1}${2}"+newQuote, body)
		if body != newBody {
			// Treat the cleaned-up body as the original from here on.
			body = newBody
			s = prefix + origQuote + body + origQuote
		}
		newBody = subTwice(pats.escapedOrig, "${1}${2}"+origQuote, newBody)
		newBody = subTwice(pats.unescapedNew, "${1}\\"+newQuote, newBody)
	}

	if strings.ContainsAny(prefix, "fF") {
		for _, span := range FStringSpans(newBody) {
			if strings.Contains(newBody[span.Start:span.End], `\`) {
				// Never introduce backslashes inside interpolated
				// expressions.
				return s
			}
		}
	}

	if newQuote == `"""` && strings.HasSuffix(newBody, `"`) {
		newBody = newBody[:len(newBody)-1] + `\"`
	}
	origEscapes := strings.Count(body, `\`)
	newEscapes := strings.Count(newBody, `\`)
	if newEscapes > origEscapes {
		return s
	}
	if newEscapes == origEscapes && origQuote == `"` {
		// Tie: keep the double quotes we already have.
		return s
	}
	return prefix + newQuote + newBody + newQuote
}

// NormalizeFString drops the f prefix from f-strings that contain no
// interpolated expression and collapses their doubled braces, since the
// doubling was only needed to keep the literal syntactically an
// f-string.
func NormalizeFString(s string) string {
	prefix := Prefix(s)
	if !strings.ContainsAny(prefix, "fF") || len(FStringSpans(s)) > 0 {
		return s
	}
	newPrefix := strings.NewReplacer("f", "", "F", "").Replace(prefix)
	rest := s[len(prefix):]
	rest = collapseDoubled(rest, '{')
	rest = collapseDoubled(rest, '}')
	return newPrefix + rest
}

// collapseDoubled replaces every non-overlapping doubled occurrence of b
// with a single one, scanning left to right.
func collapseDoubled(s string, b byte) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		sb.WriteByte(s[i])
		if s[i] == b && i+1 < len(s) && s[i+1] == b {
			i++
		}
	}
	return sb.String()
}
