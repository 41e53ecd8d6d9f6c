package comments

import (
	"strings"

	"github.com/yaklabco/pyfmt/pkg/pytree"
)

// Format-region markers. Comparison happens on normalized comment text,
// so "# fmt:off" and "# fmt: off" both match after MakeComment.
var (
	fmtOff = map[string]bool{
		"# fmt: off":     true,
		"# fmt:off":      true,
		"# yapf: disable": true,
	}
	fmtSkip = map[string]bool{
		"# fmt: skip": true,
		"# fmt:skip":  true,
	}
	fmtOn = map[string]bool{
		"# fmt: on":      true,
		"# fmt:on":       true,
		"# yapf: enable": true,
	}
)

func isFmtPass(text string) bool { return fmtOff[text] || fmtSkip[text] }

// NormalizeFmtOff collapses every span delimited by disable/enable
// markers, and every statement trailed by a skip marker, into a single
// frozen leaf carrying the exact original text. It runs to a fixpoint:
// each conversion changes the tree shape and can expose further spans.
func NormalizeFmtOff(tree *pytree.Tree) {
	for convertOneFmtOffPair(tree) {
	}
}

// convertOneFmtOffPair finds the first remaining marker with a
// convertible span and freezes it. Reports whether a conversion
// happened.
func convertOneFmtOffPair(tree *pytree.Tree) bool {
	converted := false
	tree.Leaves(tree.Root(), func(leaf pytree.NodeID) bool {
		previousConsumed := 0
		for _, comment := range ListComments(tree.Prefix(leaf), false) {
			if !isFmtPass(comment.Text) {
				previousConsumed = comment.Consumed
				continue
			}
			// Only standalone markers toggle regions. A trailing comment
			// is a standalone comment in disguise when the preceding
			// token is whitespace-equivalent (a logical newline) or the
			// file start.
			if !comment.Standalone {
				prev := tree.PrecedingLeaf(leaf)
				if prev != pytree.InvalidID {
					prevIsWhitespace := tree.Kind(prev) == pytree.KindNewline
					if fmtOff[comment.Text] && !prevIsWhitespace {
						continue
					}
					if fmtSkip[comment.Text] && prevIsWhitespace {
						continue
					}
				}
			}

			// A disable marker between the brackets of an expression has no
			// sibling span to delimit: the statement is one flat run of
			// leaves and the enable marker sits in another leaf's prefix
			// mid-run. The whole statement keeps its original bytes.
			if fmtOff[comment.Text] {
				if stmt := enclosingStatement(tree, leaf); stmt != pytree.InvalidID && tree.FirstLeaf(stmt) != leaf {
					freezeStatement(tree, stmt)
					converted = true
					return false
				}
			}

			ignored := gatherIgnoredNodes(tree, leaf, comment)
			if len(ignored) == 0 {
				continue
			}

			freezeSpan(tree, ignored, comment, previousConsumed)
			converted = true
			return false
		}
		return true
	})
	return converted
}

// freezeSpan replaces the ignored nodes with one frozen leaf holding
// their verbatim rendering plus the marker text.
func freezeSpan(tree *pytree.Tree, ignored []pytree.NodeID, comment Comment, previousConsumed int) {
	first := ignored[0]
	parent := tree.Parent(first)
	prefix := tree.NodePrefix(first)
	if fmtOff[comment.Text] {
		tree.SetNodePrefix(first, prefix[comment.Consumed:])
	}
	if fmtSkip[comment.Text] {
		tree.SetNodePrefix(first, "")
	}

	var hidden strings.Builder
	if fmtOff[comment.Text] {
		hidden.WriteString(comment.Text)
		hidden.WriteString("\n")
	}
	for _, id := range ignored {
		hidden.WriteString(tree.Render(id))
	}
	if fmtSkip[comment.Text] {
		hidden.WriteString("  ")
		hidden.WriteString(comment.Text)
	}
	hiddenValue := hidden.String()
	// A span ending in a NEWLINE leaf carries its own terminator; keeping
	// it would double the line break emitted after the frozen leaf.
	hiddenValue = strings.TrimSuffix(hiddenValue, "\n")

	firstIdx := -1
	for _, id := range ignored {
		idx := tree.Remove(id)
		if firstIdx == -1 {
			firstIdx = idx
		}
	}

	frozenPrefix := prefix[:min(previousConsumed, len(prefix))] +
		strings.Repeat("\n", comment.Newlines)
	frozen := tree.NewLeaf(pytree.KindFrozen, hiddenValue, frozenPrefix)
	tree.InsertChild(parent, firstIdx, frozen)
}

// enclosingStatement returns the nearest statement ancestor of a leaf.
func enclosingStatement(tree *pytree.Tree, leaf pytree.NodeID) pytree.NodeID {
	for id := tree.Parent(leaf); id != pytree.InvalidID; id = tree.Parent(id) {
		if tree.Kind(id) == pytree.KindStatement {
			return id
		}
	}
	return pytree.InvalidID
}

// freezeStatement replaces an entire statement, suite included, with one
// frozen leaf holding its verbatim rendering. The statement's leading
// prefix moves onto the frozen leaf so comments above it still render
// normally.
func freezeStatement(tree *pytree.Tree, stmt pytree.NodeID) {
	parent := tree.Parent(stmt)
	prefix := tree.NodePrefix(stmt)
	tree.SetNodePrefix(stmt, "")
	value := strings.TrimSuffix(tree.Render(stmt), "\n")
	idx := tree.Remove(stmt)
	frozen := tree.NewLeaf(pytree.KindFrozen, value, prefix)
	tree.InsertChild(parent, idx, frozen)
}

// gatherIgnoredNodes collects the nodes a marker freezes.
//
// For skip markers it is the smallest syntactic unit ending at the
// marked leaf: the run of preceding siblings whose prefixes contain no
// newline, or the immediate parent when the leaf has no previous
// sibling.
//
// For disable markers it walks forward from the marked leaf's container,
// sibling by sibling, until an enable marker or the end of input. When a
// sibling contains an enable marker at the marker's column, the walk
// descends so only the children before the re-enabled node freeze.
func gatherIgnoredNodes(tree *pytree.Tree, leaf pytree.NodeID, comment Comment) []pytree.NodeID {
	if fmtSkip[comment.Text] {
		return gatherSkippedNodes(tree, leaf, comment)
	}

	var ignored []pytree.NodeID
	column := tree.Column(leaf)
	container := tree.ContainerOf(leaf)
	for container != pytree.InvalidID && tree.Kind(container) != pytree.KindEndMarker {
		if isFmtOn(tree, container) {
			return ignored
		}
		if containsFmtOnAtColumn(tree, container, column) {
			for _, child := range tree.Children(container) {
				if containsFmtOnAtColumn(tree, child, column) || fmtOnAtColumn(tree, child, column) {
					return ignored
				}
				ignored = append(ignored, child)
			}
			return ignored
		}
		ignored = append(ignored, container)
		container = tree.NextSibling(container)
	}
	return ignored
}

func gatherSkippedNodes(tree *pytree.Tree, leaf pytree.NodeID, comment Comment) []pytree.NodeID {
	prev := tree.PrevSibling(leaf)
	if strings.Contains(tree.Prefix(leaf), comment.Text) && prev != pytree.InvalidID {
		tree.SetPrefix(leaf, strings.Replace(tree.Prefix(leaf), comment.Text, "", 1))
		siblings := []pytree.NodeID{prev}
		for !strings.Contains(tree.NodePrefix(prev), "\n") {
			earlier := tree.PrevSibling(prev)
			if earlier == pytree.InvalidID {
				break
			}
			prev = earlier
			siblings = append([]pytree.NodeID{prev}, siblings...)
		}
		return siblings
	}
	if parent := tree.Parent(leaf); parent != pytree.InvalidID {
		return []pytree.NodeID{parent}
	}
	return nil
}

// isFmtOn reports whether formatting is switched on at the node,
// determined by the last disable/enable marker in its prefix.
func isFmtOn(tree *pytree.Tree, id pytree.NodeID) bool {
	on := false
	for _, comment := range ListComments(tree.NodePrefix(id), false) {
		switch {
		case fmtOn[comment.Text]:
			on = true
		case fmtOff[comment.Text]:
			on = false
		}
	}
	return on
}

// fmtOnAtColumn reports whether the node itself sits at the column with
// formatting re-enabled.
func fmtOnAtColumn(tree *pytree.Tree, id pytree.NodeID, column int) bool {
	return tree.FirstLeafColumn(id) == column && isFmtOn(tree, id)
}

// containsFmtOnAtColumn reports whether any child of the node sits at
// the given column with formatting re-enabled. The column equality is a
// compatibility contract: a nested enable marker at a different depth
// must not end the span.
func containsFmtOnAtColumn(tree *pytree.Tree, id pytree.NodeID, column int) bool {
	for _, child := range tree.Children(id) {
		if fmtOnAtColumn(tree, child, column) {
			return true
		}
	}
	return false
}
