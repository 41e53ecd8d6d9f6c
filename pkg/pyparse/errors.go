// Package pyparse turns Python source text into a pytree concrete
// syntax tree and provides the structure-only view used by the
// equivalence check.
//
// The tokenizer understands the full lexical grammar (string prefixes,
// triple quotes, implicit line joining inside brackets, backslash
// continuations, indentation) but the tree builder deliberately stops at
// statement granularity: a file is a sequence of statements, a compound
// statement owns an indented suite, and everything inside one logical
// line stays a flat run of token leaves. That is exactly the structure
// the reformatter needs; expression grammar is not its business.
package pyparse

import "fmt"

// InvalidInputError is the syntax fault returned when source text cannot
// be tokenized. It is an input fault: callers recover from it per file.
type InvalidInputError struct {
	// Line is the 1-based line of the offending character.
	Line int

	// Col is the 0-based column of the offending character.
	Col int

	// Msg describes what went wrong.
	Msg string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("cannot parse: %d:%d: %s", e.Line, e.Col, e.Msg)
}

func invalidInput(line, col int, format string, args ...any) error {
	return &InvalidInputError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}
