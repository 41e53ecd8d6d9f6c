package pyparse

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/yaklabco/pyfmt/pkg/pystr"
	"github.com/yaklabco/pyfmt/pkg/pytree"
)

// Structural reduces source to a canonical token fingerprint. Two texts
// with equal fingerprints carry the same program: whitespace, comments
// and the cosmetic freedom inside string literals (prefix casing, quote
// choice, redundant escapes, docstring reindentation) are erased, while
// names, numbers, operators, line structure and indentation survive.
func Structural(text string) (string, error) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	toks, err := tokenize(text)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, tok := range toks {
		switch tok.Class {
		case classIndent:
			b.WriteString("indent\n")
			continue
		case classDedent:
			b.WriteString("dedent\n")
			continue
		}
		switch tok.Kind {
		case pytree.KindNewline:
			b.WriteString("newline\n")
		case pytree.KindEndMarker:
			b.WriteString("end\n")
		case pytree.KindString:
			b.WriteString("string ")
			b.WriteString(canonicalString(tok.Value))
			b.WriteByte('\n')
		default:
			fmt.Fprintf(&b, "%s %s\n", tok.Kind, tok.Value)
		}
	}
	return b.String(), nil
}

var foldWS = regexp.MustCompile(`[ \t]*\n[ \t]*`)

// canonicalString maps a string literal to a form invariant under every
// rewrite the formatter is allowed to make.
func canonicalString(s string) string {
	prefix := pystr.Prefix(s)
	body := s[len(prefix):]

	lower := strings.ToLower(prefix)
	lower = strings.ReplaceAll(lower, "u", "")
	raw := strings.Contains(lower, "r")
	fstr := strings.Contains(lower, "f")

	quote := body[:1]
	if len(body) >= 6 && (strings.HasPrefix(body, `"""`) || strings.HasPrefix(body, "'''")) {
		quote = body[:3]
	}
	inner := body[len(quote) : len(body)-len(quote)]

	if fstr && len(pystr.FStringSpans(inner)) == 0 {
		// An f-string with no replacement fields is a plain string with
		// doubled braces.
		fstr = false
		inner = strings.ReplaceAll(inner, "{{", "{")
		inner = strings.ReplaceAll(inner, "}}", "}")
	}
	if !raw {
		inner = decodeEscapes(inner)
	}

	chars := strings.Split(lower, "")
	sort.Strings(chars)
	canon := strings.Join(chars, "")
	if !fstr {
		canon = strings.ReplaceAll(canon, "f", "")
	}

	inner = foldWS.ReplaceAllString(inner, "\n")
	inner = strings.TrimSpace(inner)
	return canon + ":" + inner
}

// decodeEscapes resolves the backslash escapes whose spelling the quote
// normalizer may change. Escapes it does not recognize keep their
// backslash, so no information is invented.
func decodeEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch c := s[i]; c {
		case '\n':
			// Line continuation inside a literal.
		case '\\', '\'', '"':
			b.WriteByte(c)
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte(7)
		case 'b':
			b.WriteByte(8)
		case 'f':
			b.WriteByte(12)
		case 'v':
			b.WriteByte(11)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(c - '0')
			for n := 0; n < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
				i++
				v = v*8 + int(s[i]-'0')
			}
			b.WriteByte(byte(v))
		case 'x':
			if i+2 < len(s) && isHexDigit(s[i+1]) && isHexDigit(s[i+2]) {
				b.WriteByte(hexVal(s[i+1])<<4 | hexVal(s[i+2]))
				i += 2
			} else {
				b.WriteString(`\x`)
			}
		default:
			b.WriteByte('\\')
			b.WriteByte(c)
		}
	}
	return b.String()
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
