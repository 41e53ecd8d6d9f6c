package pyparse

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yaklabco/pyfmt/pkg/pytree"
)

// tokenClass distinguishes real leaves from the synthetic indentation
// events consumed by the tree builder.
type tokenClass int

const (
	classLeaf tokenClass = iota
	classIndent
	classDedent
)

// Token is one lexical unit. Comments, whitespace, blank lines and
// escaped newlines are never tokens: they accumulate in the Prefix of
// the next token, which is how the tree preserves them byte for byte.
type Token struct {
	Class  tokenClass
	Kind   pytree.Kind
	Value  string
	Prefix string
	Line   int // 1-based
	Col    int // 0-based byte offset within the line
}

type tokenizer struct {
	src      string
	pos      int
	line     int
	lineStart int // byte offset of the current line's first character

	brackets []byte
	indents  []int
	pending  strings.Builder
	tokens   []Token

	atLineStart bool
}

func (t *tokenizer) col() int { return t.pos - t.lineStart }

func (t *tokenizer) eof() bool { return t.pos >= len(t.src) }

func (t *tokenizer) emit(kind pytree.Kind, value string, line, col int) {
	t.tokens = append(t.tokens, Token{
		Class: classLeaf, Kind: kind, Value: value,
		Prefix: t.pending.String(), Line: line, Col: col,
	})
	t.pending.Reset()
}

func (t *tokenizer) emitEvent(class tokenClass, line, col int) {
	t.tokens = append(t.tokens, Token{Class: class, Line: line, Col: col})
}

// newline advances past a "\n", tracking line accounting.
func (t *tokenizer) advanceLine() {
	t.pos++
	t.line++
	t.lineStart = t.pos
}

// tokenize splits src into tokens. src is expected to end with a
// newline; Parse guarantees that.
func tokenize(src string) ([]Token, error) {
	t := &tokenizer{src: src, line: 1, indents: []int{0}, atLineStart: true}
	for {
		if t.atLineStart && len(t.brackets) == 0 {
			if err := t.handleLineStart(); err != nil {
				return nil, err
			}
		}
		if t.eof() {
			break
		}

		c := t.src[t.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\f' || c == '\v' || c == '\r':
			t.pending.WriteByte(c)
			t.pos++
		case c == '\\' && t.peekAt(t.pos+1) == '\n':
			t.pending.WriteString("\\\n")
			t.pos++
			t.advanceLine()
		case c == '\n':
			if len(t.brackets) > 0 {
				t.pending.WriteByte('\n')
				t.advanceLine()
				continue
			}
			line, col := t.line, t.col()
			t.advanceLine()
			t.emit(pytree.KindNewline, "\n", line, col)
			t.atLineStart = true
		case c == '#':
			t.consumeComment()
		default:
			if err := t.scanToken(); err != nil {
				return nil, err
			}
		}
	}

	if len(t.brackets) > 0 {
		return nil, invalidInput(t.line, t.col(), "unexpected end of file, unclosed %q", string(t.brackets[len(t.brackets)-1]))
	}
	for len(t.indents) > 1 {
		t.indents = t.indents[:len(t.indents)-1]
		t.emitEvent(classDedent, t.line, 0)
	}
	t.emit(pytree.KindEndMarker, "", t.line, 0)
	return t.tokens, nil
}

// handleLineStart consumes blank and comment-only lines into the pending
// prefix, measures the indentation of the first code line and emits the
// indent and dedent events it implies.
func (t *tokenizer) handleLineStart() error {
	for {
		start := t.pos
		width := 0
		for !t.eof() {
			switch t.src[t.pos] {
			case ' ':
				width++
			case '\t':
				width += tabWidth - width%tabWidth
			case '\f':
				// A form feed resets the indentation count, matching the
				// tokenizer it imitates.
				width = 0
			default:
				goto measured
			}
			t.pos++
		}
	measured:
		if t.eof() {
			t.pending.WriteString(t.src[start:t.pos])
			return nil
		}
		switch t.src[t.pos] {
		case '\n':
			t.pending.WriteString(t.src[start:t.pos])
			t.pending.WriteByte('\n')
			t.advanceLine()
			continue
		case '\r':
			t.pending.WriteString(t.src[start : t.pos+1])
			t.pos++
			continue
		case '#':
			t.pending.WriteString(t.src[start:t.pos])
			t.consumeComment()
			if !t.eof() && t.src[t.pos] == '\n' {
				t.pending.WriteByte('\n')
				t.advanceLine()
			}
			continue
		}

		// First code character of the logical line.
		t.pending.WriteString(t.src[start:t.pos])
		top := t.indents[len(t.indents)-1]
		switch {
		case width > top:
			t.indents = append(t.indents, width)
			t.emitEvent(classIndent, t.line, 0)
		case width < top:
			for len(t.indents) > 1 && t.indents[len(t.indents)-1] > width {
				t.indents = t.indents[:len(t.indents)-1]
				t.emitEvent(classDedent, t.line, t.col())
			}
			if t.indents[len(t.indents)-1] != width {
				return invalidInput(t.line, t.col(), "unindent does not match any outer indentation level")
			}
		}
		t.atLineStart = false
		return nil
	}
}

const tabWidth = 8

func (t *tokenizer) consumeComment() {
	for !t.eof() && t.src[t.pos] != '\n' {
		t.pending.WriteByte(t.src[t.pos])
		t.pos++
	}
}

func (t *tokenizer) peekAt(i int) byte {
	if i >= len(t.src) {
		return 0
	}
	return t.src[i]
}

// scanToken lexes one real token starting at the current position.
func (t *tokenizer) scanToken() error {
	c := t.src[t.pos]
	switch {
	case c == '"' || c == '\'':
		return t.scanString(t.pos)
	case c >= '0' && c <= '9':
		t.scanNumber()
		return nil
	case c == '.' && t.peekAt(t.pos+1) >= '0' && t.peekAt(t.pos+1) <= '9':
		t.scanNumber()
		return nil
	case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
		return t.scanNameOrString()
	default:
		return t.scanOperator()
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (t *tokenizer) scanNameOrString() error {
	start := t.pos
	line, col := t.line, t.col()
	for !t.eof() {
		r, size := utf8.DecodeRuneInString(t.src[t.pos:])
		if !isIdentCont(r) {
			break
		}
		if !isIdentStart(r) && t.pos == start {
			break
		}
		t.pos += size
	}
	if t.pos == start {
		return invalidInput(line, col, "invalid character %q", t.src[t.pos])
	}

	name := t.src[start:t.pos]
	next := t.peekAt(t.pos)
	if (next == '"' || next == '\'') && len(name) <= 2 && isStringPrefix(name) {
		return t.scanString(start)
	}
	t.emit(pytree.KindName, name, line, col)
	return nil
}

func isStringPrefix(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte("furbFURB", s[i]) < 0 {
			return false
		}
	}
	return true
}

// scanString lexes a string literal whose prefix (possibly empty) starts
// at start; the current position is at the opening quote. Backslashes
// suppress quote termination even in raw strings, exactly as the real
// lexer does.
func (t *tokenizer) scanString(start int) error {
	line := t.line
	col := start - t.lineStart
	quote := t.src[t.pos : t.pos+1]
	if t.peekAt(t.pos+1) == quote[0] && t.peekAt(t.pos+2) == quote[0] {
		quote = t.src[t.pos : t.pos+3]
	}
	t.pos += len(quote)
	triple := len(quote) == 3

	for {
		if t.eof() {
			return invalidInput(line, col, "unterminated string literal")
		}
		c := t.src[t.pos]
		switch {
		case c == '\\':
			t.pos++
			if !t.eof() {
				if t.src[t.pos] == '\n' {
					t.advanceLine()
				} else {
					t.pos++
				}
			}
		case c == '\n':
			if !triple {
				return invalidInput(line, col, "EOL while scanning string literal")
			}
			t.advanceLine()
		case strings.HasPrefix(t.src[t.pos:], quote):
			t.pos += len(quote)
			t.emit(pytree.KindString, t.src[start:t.pos], line, col)
			return nil
		default:
			t.pos++
		}
	}
}

func (t *tokenizer) scanNumber() {
	start := t.pos
	line, col := t.line, t.col()
	s := t.src

	if s[t.pos] == '0' && t.pos+1 < len(s) && strings.IndexByte("xXoObB", s[t.pos+1]) >= 0 {
		t.pos += 2
		for !t.eof() && (isHexDigit(s[t.pos]) || s[t.pos] == '_') {
			t.pos++
		}
	} else {
		t.consumeDigits()
		if !t.eof() && s[t.pos] == '.' {
			t.pos++
			t.consumeDigits()
		}
		if !t.eof() && (s[t.pos] == 'e' || s[t.pos] == 'E') {
			mark := t.pos
			t.pos++
			if !t.eof() && (s[t.pos] == '+' || s[t.pos] == '-') {
				t.pos++
			}
			if t.eof() || s[t.pos] < '0' || s[t.pos] > '9' {
				t.pos = mark // not an exponent after all
			} else {
				t.consumeDigits()
			}
		}
	}
	if !t.eof() && (s[t.pos] == 'j' || s[t.pos] == 'J') {
		t.pos++
	}
	t.emit(pytree.KindNumber, s[start:t.pos], line, col)
}

func (t *tokenizer) consumeDigits() {
	for !t.eof() && (t.src[t.pos] >= '0' && t.src[t.pos] <= '9' || t.src[t.pos] == '_') {
		t.pos++
	}
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// Multi-character operators, longest first so maximal munch wins.
var operators3 = []string{"**=", "//=", ">>=", "<<=", "..."}

var operators2 = []string{
	"**", "//", ">>", "<<", "<=", ">=", "==", "!=", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "@=", "&=", "|=", "^=",
}

func (t *tokenizer) scanOperator() error {
	line, col := t.line, t.col()
	rest := t.src[t.pos:]

	for _, op := range operators3 {
		if strings.HasPrefix(rest, op) {
			t.pos += 3
			t.emit(pytree.KindOp, op, line, col)
			return nil
		}
	}
	for _, op := range operators2 {
		if strings.HasPrefix(rest, op) {
			t.pos += 2
			t.emit(pytree.KindOp, op, line, col)
			return nil
		}
	}

	c := rest[0]
	kind := pytree.KindOp
	switch c {
	case '(':
		kind = pytree.KindLPar
		t.brackets = append(t.brackets, ')')
	case '[':
		kind = pytree.KindLSqb
		t.brackets = append(t.brackets, ']')
	case '{':
		kind = pytree.KindLBrace
		t.brackets = append(t.brackets, '}')
	case ')', ']', '}':
		if len(t.brackets) == 0 {
			return invalidInput(line, col, "unmatched %q", string(c))
		}
		if t.brackets[len(t.brackets)-1] != c {
			return invalidInput(line, col, "closing %q does not match opening bracket", string(c))
		}
		t.brackets = t.brackets[:len(t.brackets)-1]
		switch c {
		case ')':
			kind = pytree.KindRPar
		case ']':
			kind = pytree.KindRSqb
		case '}':
			kind = pytree.KindRBrace
		}
	case ',':
		kind = pytree.KindComma
	case ':':
		kind = pytree.KindColon
	case ';':
		kind = pytree.KindSemi
	case '.':
		kind = pytree.KindDot
	case '+', '-', '*', '/', '%', '@', '&', '|', '^', '~', '<', '>', '=', '!':
		if c == '!' {
			// Bare "!" is only legal as "!=", matched above.
			return invalidInput(line, col, "invalid character %q", string(c))
		}
	default:
		return invalidInput(line, col, "invalid character %q", string(c))
	}

	t.pos++
	t.emit(kind, string(c), line, col)
	return nil
}
