package pystr

// Span is a half-open character range: Start inclusive, End exclusive.
type Span struct {
	Start int
	End   int
}

// FStringSpans returns the spans of the interpolated expressions in an
// f-string body, outer braces included. Doubled braces outside an
// expression are literal and skipped. Inside an expression, nested
// string delimiters (single, double or triple quoted) are fast-forwarded
// without brace counting; backslashes are not legal there, so no escape
// handling is needed. Invalid input yields a best-effort result rather
// than a failure.
func FStringSpans(s string) []Span {
	var spans []Span
	var stack []int
	i := 0
	for i < len(s) {
		switch s[i] {
		case '{':
			if len(stack) == 0 && i+1 < len(s) && s[i+1] == '{' {
				i += 2
				continue
			}
			stack = append(stack, i)
			i++
			continue
		case '}':
			if len(stack) == 0 {
				i++
				continue
			}
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				spans = append(spans, Span{Start: j, End: i + 1})
			}
			i++
			continue
		}

		if len(stack) > 0 {
			var delim string
			switch {
			case i+3 <= len(s) && (s[i:i+3] == `"""` || s[i:i+3] == "'''"):
				delim = s[i : i+3]
			case s[i] == '\'' || s[i] == '"':
				delim = s[i : i+1]
			}
			if delim != "" {
				i += len(delim)
				for i < len(s) && !hasAt(s, i, delim) {
					i++
				}
				i += len(delim)
				continue
			}
		}
		i++
	}
	return spans
}

func hasAt(s string, i int, sub string) bool {
	return i+len(sub) <= len(s) && s[i:i+len(sub)] == sub
}
