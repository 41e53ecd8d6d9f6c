// Package render turns a concrete tree back into canonical source text.
// Each logical line becomes one physical line with normalized spacing,
// indentation is four spaces per block, comments are reattached in
// normalized form and blank runs are trimmed to the house budget.
package render

import (
	"strings"

	"github.com/yaklabco/pyfmt/pkg/comments"
	"github.com/yaklabco/pyfmt/pkg/formatter"
	"github.com/yaklabco/pyfmt/pkg/pystr"
	"github.com/yaklabco/pyfmt/pkg/pytree"
)

const indentUnit = "    "

// LineRenderer is the concrete renderer used by the formatter.
type LineRenderer struct{}

// New returns a ready LineRenderer.
func New() *LineRenderer { return &LineRenderer{} }

// Render produces the formatted text for tree under mode. The result
// always ends with exactly one newline unless it is empty.
func (r *LineRenderer) Render(tree *pytree.Tree, mode formatter.Mode) string {
	w := &writer{tree: tree, mode: mode, afterBodyOf: -1}
	w.container(tree.Root(), 0)
	out := w.b.String()
	if out == "" {
		return ""
	}
	return strings.TrimRight(out, "\n") + "\n"
}

type writer struct {
	b    strings.Builder
	tree *pytree.Tree
	mode formatter.Mode

	emittedAny    bool
	prevDecorator bool
	prevOpener    bool // previous line opened an indented block
	afterBodyOf   int  // depth of a def or class whose body just closed, -1 otherwise
}

func (w *writer) container(id pytree.NodeID, depth int) {
	first := true
	for _, child := range w.tree.Children(id) {
		switch w.tree.Kind(child) {
		case pytree.KindStatement:
			w.statement(child, depth, first)
		case pytree.KindFrozen:
			w.frozen(child, depth, first)
		case pytree.KindEndMarker:
			w.endMarker(child)
			continue
		default:
			continue
		}
		first = false
	}
}

func (w *writer) allowed(depth int) int {
	if w.mode.IsPyi {
		if depth == 0 {
			return 1
		}
		return 0
	}
	if depth == 0 {
		return 2
	}
	return 1
}

// blanksBefore caps and optionally forces the blank lines ahead of the
// next emitted line.
func (w *writer) blanksBefore(requested, depth int, force int, firstInSuite bool) int {
	if !w.emittedAny {
		return 0
	}
	if w.prevDecorator {
		return 0
	}
	if firstInSuite && w.prevOpener {
		return 0
	}
	n := requested
	if max := w.allowed(depth); n > max {
		n = max
	}
	if force > n {
		n = force
	}
	return n
}

// groupForce computes the blank lines a definition demands before its
// leading line, comments included.
func (w *writer) groupForce(depth int, defLike bool) int {
	force := 0
	if defLike && !w.prevDecorator && !w.mode.IsPyi {
		if depth == 0 {
			force = 2
		} else {
			force = 1
		}
	}
	if w.afterBodyOf >= 0 && depth <= w.afterBodyOf && !w.mode.IsPyi {
		after := 1
		if w.afterBodyOf == 0 {
			after = 2
		}
		if after > force {
			force = after
		}
	}
	return force
}

func (w *writer) writeLine(text string, depth, blanks int, opener bool) {
	for i := 0; i < blanks; i++ {
		w.b.WriteByte('\n')
	}
	w.b.WriteString(strings.Repeat(indentUnit, depth))
	w.b.WriteString(text)
	w.b.WriteByte('\n')
	w.emittedAny = true
	w.prevOpener = opener
	w.afterBodyOf = -1
}

// prefixBreakdown splits a leaf prefix into its standalone comments and
// the blank line count trailing the last comment.
func prefixBreakdown(prefix string, endMarker bool) (list []comments.Comment, trailing int) {
	list = comments.ListComments(prefix, endMarker)
	rest := prefix
	if n := len(list); n > 0 {
		consumed := list[n-1].Consumed
		if consumed > len(prefix) {
			consumed = len(prefix)
		}
		rest = prefix[consumed:]
	}
	return list, strings.Count(rest, "\n")
}

func (w *writer) statement(id pytree.NodeID, depth int, firstInSuite bool) {
	kids := w.tree.Children(id)

	var suite pytree.NodeID = pytree.InvalidID
	if n := len(kids); n > 0 && w.tree.Kind(kids[n-1]) == pytree.KindSuite {
		suite = kids[n-1]
		kids = kids[:n-1]
	}
	if len(kids) == 0 {
		return
	}

	decorator := w.tree.Value(kids[0]) == "@"
	defLike := isDefClass(w.tree, kids)

	above, trailing, blanks := w.collectComments(kids)
	force := w.groupForce(depth, defLike || decorator)

	for i, c := range above {
		b := w.blanksBefore(c.blanks, depth, force, firstInSuite && i == 0)
		force = 0
		w.writeLine(comments.MakeComment(c.text), depth, b, false)
	}

	code := w.codeText(id, kids, depth, firstInSuite)
	for _, c := range trailing {
		code += "  " + comments.MakeComment(c)
	}
	b := w.blanksBefore(blanks, depth, force, firstInSuite && len(above) == 0)
	w.writeLine(code, depth, b, suite != pytree.InvalidID)
	w.prevDecorator = decorator

	if suite != pytree.InvalidID {
		w.container(suite, depth+1)
		w.prevOpener = false
		if defLike {
			w.afterBodyOf = depth
		}
	}
}

type aboveComment struct {
	text   string
	blanks int
}

// collectComments walks the statement leaves once, sorting every comment
// into the lines above the statement or its trailing position. Comments
// standing on their own line inside a bracketed span are hoisted above
// the statement, which keeps the single line per statement shape.
func (w *writer) collectComments(kids []pytree.NodeID) (above []aboveComment, trailing []string, blanks int) {
	for i, leaf := range kids {
		prefix := w.tree.Prefix(leaf)
		if prefix == "" {
			continue
		}
		list, rest := prefixBreakdown(prefix, false)
		if i == 0 {
			for _, c := range list {
				above = append(above, aboveComment{text: c.Text, blanks: c.Newlines})
			}
			blanks = rest
			if len(list) == 0 {
				blanks = strings.Count(prefix, "\n")
			}
			continue
		}
		for _, c := range list {
			if c.Standalone {
				above = append(above, aboveComment{text: c.Text})
			} else {
				trailing = append(trailing, c.Text)
			}
		}
	}
	return above, trailing, blanks
}

func (w *writer) codeText(stmt pytree.NodeID, kids []pytree.NodeID, depth int, firstInSuite bool) string {
	if doc, ok := w.docstringText(stmt, kids, depth, firstInSuite); ok {
		return doc
	}

	var line strings.Builder
	st := &lineState{}
	for _, leaf := range kids {
		kind := w.tree.Kind(leaf)
		switch kind {
		case pytree.KindNewline:
			continue
		case pytree.KindFrozen:
			line.WriteString(w.tree.Value(leaf))
			st.advance(pytree.KindName, "")
			continue
		}
		value := w.tree.Value(leaf)
		if kind == pytree.KindString {
			value = w.stringValue(value)
		}
		if st.needSpace(kind, value) {
			line.WriteByte(' ')
		}
		line.WriteString(value)
		st.advance(kind, value)
	}
	return line.String()
}

func (w *writer) stringValue(value string) string {
	out := pystr.NormalizePrefix(value)
	if w.mode.StringNormalization {
		out = pystr.NormalizeQuotes(out)
	}
	if w.mode.Preview {
		out = pystr.NormalizeFString(out)
	}
	return out
}

// docstringText renders a docstring statement: the sole string of the
// first statement in a module, function or class body.
func (w *writer) docstringText(stmt pytree.NodeID, kids []pytree.NodeID, depth int, firstInSuite bool) (string, bool) {
	if len(kids) != 2 ||
		w.tree.Kind(kids[0]) != pytree.KindString ||
		w.tree.Kind(kids[1]) != pytree.KindNewline {
		return "", false
	}
	parent := w.tree.Parent(stmt)
	switch w.tree.Kind(parent) {
	case pytree.KindFile:
		if !firstInSuite {
			return "", false
		}
	case pytree.KindSuite:
		if !firstInSuite || !isDefClass(w.tree, w.tree.Children(w.tree.Parent(parent))) {
			return "", false
		}
	default:
		return "", false
	}

	value := pystr.NormalizePrefix(w.tree.Value(kids[0]))
	if w.mode.StringNormalization {
		value = pystr.NormalizeQuotes(value)
	}
	prefix := pystr.Prefix(value)
	body := value[len(prefix):]
	quote := body[:1]
	if pystr.HasTripleQuotes(body) {
		quote = body[:3]
	}
	inner := body[len(quote) : len(body)-len(quote)]

	indent := strings.Repeat(indentUnit, depth)
	if len(quote) == 3 {
		inner = pystr.FixDocstring(inner, indent)
	} else {
		inner = strings.TrimSpace(inner)
	}

	if inner == "" {
		inner = " "
	} else {
		if inner[0] == quote[0] {
			inner = " " + inner
		}
		if inner[len(inner)-1] == quote[0] {
			inner += " "
		}
		if n := trailingBackslashes(inner); n%2 == 1 {
			inner += " "
		}
	}
	return prefix + quote + inner + quote, true
}

func trailingBackslashes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n
}

func isDefClass(tree *pytree.Tree, kids []pytree.NodeID) bool {
	if len(kids) == 0 {
		return false
	}
	first := tree.Value(kids[0])
	if first == "def" || first == "class" {
		return true
	}
	return first == "async" && len(kids) > 1 && tree.Value(kids[1]) == "def"
}

// frozen writes a region the formatter must not touch. The value holds
// the original lines verbatim; only the first line takes the current
// indentation.
func (w *writer) frozen(id pytree.NodeID, depth int, firstInSuite bool) {
	list, trailing := prefixBreakdown(w.tree.Prefix(id), false)
	force := 0
	for i, c := range list {
		b := w.blanksBefore(c.Newlines, depth, force, firstInSuite && i == 0)
		w.writeLine(comments.MakeComment(c.Text), depth, b, false)
	}
	if len(list) == 0 {
		trailing = strings.Count(w.tree.Prefix(id), "\n")
	}
	b := w.blanksBefore(trailing, depth, 0, firstInSuite && len(list) == 0)
	w.writeLine(w.tree.Value(id), depth, b, false)
	w.prevDecorator = false
}

func (w *writer) endMarker(id pytree.NodeID) {
	list, _ := prefixBreakdown(w.tree.Prefix(id), true)
	for _, c := range list {
		b := w.blanksBefore(c.Newlines, 0, 0, false)
		w.writeLine(comments.MakeComment(c.Text), 0, b, false)
	}
}
