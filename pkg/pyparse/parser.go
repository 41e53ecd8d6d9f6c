package pyparse

import (
	"strings"

	"github.com/yaklabco/pyfmt/pkg/pytree"
)

// Parse builds a concrete tree from Python source. Every byte of the
// input survives into the tree, so Render on the result reproduces the
// input exactly (modulo the trailing newline appended when missing).
//
// The tree is statement shaped: the file holds statement nodes, each
// statement holds its leaves plus a trailing newline, and a statement
// that opens an indented block holds a suite node after its newline.
func Parse(text string) (*pytree.Tree, error) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	tree := pytree.New()

	// containers[0] is the file; each indent pushes a suite.
	containers := []pytree.NodeID{tree.Root()}
	// lastStmt[i] is the most recent statement closed in containers[i].
	lastStmt := []pytree.NodeID{pytree.InvalidID}

	var stmt pytree.NodeID = pytree.InvalidID

	top := func() pytree.NodeID { return containers[len(containers)-1] }

	for _, tok := range toks {
		switch tok.Class {
		case classIndent:
			if lastStmt[len(lastStmt)-1] == pytree.InvalidID {
				return nil, invalidInput(tok.Line, tok.Col, "unexpected indent")
			}
			suite := tree.NewComposite(pytree.KindSuite)
			tree.AppendChild(lastStmt[len(lastStmt)-1], suite)
			containers = append(containers, suite)
			lastStmt = append(lastStmt, pytree.InvalidID)
			continue
		case classDedent:
			if len(containers) == 1 {
				return nil, invalidInput(tok.Line, tok.Col, "unexpected dedent")
			}
			containers = containers[:len(containers)-1]
			lastStmt = lastStmt[:len(lastStmt)-1]
			continue
		}

		switch tok.Kind {
		case pytree.KindEndMarker:
			leaf := tree.NewLeafAt(pytree.KindEndMarker, tok.Value, tok.Prefix, tok.Line, tok.Col)
			tree.AppendChild(tree.Root(), leaf)
		case pytree.KindNewline:
			if stmt == pytree.InvalidID {
				// A newline with no statement open can only follow a
				// bracket mismatch already rejected by the tokenizer.
				return nil, invalidInput(tok.Line, tok.Col, "unexpected newline")
			}
			leaf := tree.NewLeafAt(pytree.KindNewline, tok.Value, tok.Prefix, tok.Line, tok.Col)
			tree.AppendChild(stmt, leaf)
			lastStmt[len(lastStmt)-1] = stmt
			stmt = pytree.InvalidID
		default:
			if stmt == pytree.InvalidID {
				stmt = tree.NewComposite(pytree.KindStatement)
				tree.AppendChild(top(), stmt)
			}
			leaf := tree.NewLeafAt(tok.Kind, tok.Value, tok.Prefix, tok.Line, tok.Col)
			tree.AppendChild(stmt, leaf)
		}
	}

	return tree, nil
}
