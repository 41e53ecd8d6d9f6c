// Package pytree models Python source as a concrete syntax tree whose
// leaves carry whitespace prefixes. The tree is an arena of nodes
// addressed by index: children hold their parent's index and parents hold
// an ordered child-index list, so structural edits are plain slice
// splices and parent links never form ownership cycles.
//
// Every character of the original source lives in exactly one place:
// either a leaf's value or a leaf's prefix (whitespace, comments, blank
// lines and line continuations since the previous token). Rendering the
// tree therefore reproduces the input byte for byte until someone edits
// it.
package pytree

import "strings"

// NodeID addresses a node inside a Tree's arena.
type NodeID int

// InvalidID is returned by navigation helpers when no node exists, e.g.
// the parent of the root or the sibling of a last child.
const InvalidID NodeID = -1

type node struct {
	kind     Kind
	parent   NodeID
	children []NodeID // composite nodes only

	// Leaf fields.
	value  string
	prefix string
	line   int // 1-based source line, 0 for synthetic leaves
	col    int // 0-based source column, 0 for synthetic leaves
}

// Tree owns a parsed source file. The zero value is not usable; call New.
type Tree struct {
	nodes []node
	root  NodeID
}

// New creates a tree containing only a KindFile root.
func New() *Tree {
	t := &Tree{}
	t.root = t.alloc(node{kind: KindFile, parent: InvalidID})
	return t
}

func (t *Tree) alloc(n node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Root returns the KindFile root node.
func (t *Tree) Root() NodeID { return t.root }

// NewComposite allocates an unattached composite node.
func (t *Tree) NewComposite(kind Kind) NodeID {
	return t.alloc(node{kind: kind, parent: InvalidID})
}

// NewLeaf allocates an unattached leaf with no source position.
func (t *Tree) NewLeaf(kind Kind, value, prefix string) NodeID {
	return t.alloc(node{kind: kind, parent: InvalidID, value: value, prefix: prefix})
}

// NewLeafAt allocates an unattached leaf carrying its original source
// position. Columns count from zero with tab stops already expanded.
func (t *Tree) NewLeafAt(kind Kind, value, prefix string, line, col int) NodeID {
	return t.alloc(node{
		kind: kind, parent: InvalidID,
		value: value, prefix: prefix, line: line, col: col,
	})
}

// Kind returns the node's kind.
func (t *Tree) Kind(id NodeID) Kind { return t.nodes[id].kind }

// Value returns a leaf's token text. Composite nodes have no value.
func (t *Tree) Value(id NodeID) string { return t.nodes[id].value }

// SetValue replaces a leaf's token text.
func (t *Tree) SetValue(id NodeID, value string) { t.nodes[id].value = value }

// Prefix returns a leaf's whitespace prefix.
func (t *Tree) Prefix(id NodeID) string { return t.nodes[id].prefix }

// SetPrefix replaces a leaf's whitespace prefix.
func (t *Tree) SetPrefix(id NodeID, prefix string) { t.nodes[id].prefix = prefix }

// Line returns a leaf's 1-based source line, or 0 for synthetic leaves.
func (t *Tree) Line(id NodeID) int { return t.nodes[id].line }

// Column returns a leaf's 0-based source column, or 0 for synthetic
// leaves.
func (t *Tree) Column(id NodeID) int { return t.nodes[id].col }

// Parent returns the parent of id, or InvalidID for the root and for
// unattached nodes.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// Children returns the ordered child list of a composite node. The
// returned slice is owned by the tree; callers must not modify it.
func (t *Tree) Children(id NodeID) []NodeID { return t.nodes[id].children }

// NumChildren returns the number of children of id.
func (t *Tree) NumChildren(id NodeID) int { return len(t.nodes[id].children) }

// AppendChild attaches child as the last child of parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.nodes[parent].children = append(t.nodes[parent].children, child)
	t.nodes[child].parent = parent
}

// InsertChild attaches child at position idx in parent's child list,
// shifting later siblings right.
func (t *Tree) InsertChild(parent NodeID, idx int, child NodeID) {
	kids := t.nodes[parent].children
	kids = append(kids, InvalidID)
	copy(kids[idx+1:], kids[idx:])
	kids[idx] = child
	t.nodes[parent].children = kids
	t.nodes[child].parent = parent
}

// Remove detaches id from its parent and returns the index it occupied,
// or -1 if id had no parent. The node itself stays in the arena; its
// subtree simply becomes unreachable from the root.
func (t *Tree) Remove(id NodeID) int {
	parent := t.nodes[id].parent
	if parent == InvalidID {
		return -1
	}
	kids := t.nodes[parent].children
	for i, kid := range kids {
		if kid == id {
			t.nodes[parent].children = append(kids[:i], kids[i+1:]...)
			t.nodes[id].parent = InvalidID
			return i
		}
	}
	return -1
}

// childIndex returns id's position in its parent's child list.
func (t *Tree) childIndex(id NodeID) int {
	parent := t.nodes[id].parent
	if parent == InvalidID {
		return -1
	}
	for i, kid := range t.nodes[parent].children {
		if kid == id {
			return i
		}
	}
	return -1
}

// NextSibling returns the sibling after id, or InvalidID.
func (t *Tree) NextSibling(id NodeID) NodeID {
	parent := t.nodes[id].parent
	if parent == InvalidID {
		return InvalidID
	}
	idx := t.childIndex(id)
	kids := t.nodes[parent].children
	if idx < 0 || idx+1 >= len(kids) {
		return InvalidID
	}
	return kids[idx+1]
}

// PrevSibling returns the sibling before id, or InvalidID.
func (t *Tree) PrevSibling(id NodeID) NodeID {
	parent := t.nodes[id].parent
	if parent == InvalidID {
		return InvalidID
	}
	idx := t.childIndex(id)
	if idx <= 0 {
		return InvalidID
	}
	return t.nodes[parent].children[idx-1]
}

// FirstLeaf returns the first leaf in the subtree rooted at id, or
// InvalidID for an empty composite.
func (t *Tree) FirstLeaf(id NodeID) NodeID {
	for !t.nodes[id].kind.IsLeaf() {
		kids := t.nodes[id].children
		if len(kids) == 0 {
			return InvalidID
		}
		id = kids[0]
	}
	return id
}

// LastLeaf returns the last leaf in the subtree rooted at id, or
// InvalidID for an empty composite.
func (t *Tree) LastLeaf(id NodeID) NodeID {
	for !t.nodes[id].kind.IsLeaf() {
		kids := t.nodes[id].children
		if len(kids) == 0 {
			return InvalidID
		}
		id = kids[len(kids)-1]
	}
	return id
}

// NodePrefix returns the whitespace prefix of the subtree: the prefix of
// its first leaf. Mirrors how a composite "owns" the whitespace before
// its first token.
func (t *Tree) NodePrefix(id NodeID) string {
	leaf := t.FirstLeaf(id)
	if leaf == InvalidID {
		return ""
	}
	return t.nodes[leaf].prefix
}

// SetNodePrefix sets the prefix of the subtree's first leaf.
func (t *Tree) SetNodePrefix(id NodeID, prefix string) {
	leaf := t.FirstLeaf(id)
	if leaf != InvalidID {
		t.nodes[leaf].prefix = prefix
	}
}

// FirstLeafColumn returns the source column of the subtree's first leaf.
func (t *Tree) FirstLeafColumn(id NodeID) int {
	leaf := t.FirstLeaf(id)
	if leaf == InvalidID {
		return 0
	}
	return t.nodes[leaf].col
}

// Leaves visits every leaf reachable from id in document order. The walk
// uses an explicit stack so arbitrarily deep input cannot overflow the
// goroutine stack. Returning false from visit stops the walk.
func (t *Tree) Leaves(id NodeID, visit func(NodeID) bool) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.nodes[cur].kind.IsLeaf() {
			if !visit(cur) {
				return
			}
			continue
		}
		kids := t.nodes[cur].children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// PrecedingLeaf returns the leaf immediately before id in document
// order, or InvalidID if id starts the file.
func (t *Tree) PrecedingLeaf(id NodeID) NodeID {
	cur := id
	for cur != InvalidID {
		prev := t.PrevSibling(cur)
		if prev != InvalidID {
			if leaf := t.LastLeaf(prev); leaf != InvalidID {
				return leaf
			}
			cur = prev
			continue
		}
		cur = t.nodes[cur].parent
	}
	return InvalidID
}

// ContainerOf returns leaf or its highest ancestor that starts with the
// same prefix, stopping below the file root. This is the node a
// region-freezing walk starts from: the whole statement a marker comment
// is attached to rather than the bare token.
func (t *Tree) ContainerOf(leaf NodeID) NodeID {
	samePrefix := t.nodes[leaf].prefix
	container := leaf
	for {
		parent := t.nodes[container].parent
		if parent == InvalidID || t.nodes[parent].kind == KindFile {
			return container
		}
		kids := t.nodes[parent].children
		if len(kids) == 0 || kids[0] != container {
			return container
		}
		if t.NodePrefix(parent) != samePrefix {
			return container
		}
		container = parent
	}
}

// Render reconstructs the exact text of the subtree rooted at id:
// leaf prefixes and values concatenated in order. Frozen leaves
// contribute their stored verbatim text.
func (t *Tree) Render(id NodeID) string {
	var sb strings.Builder
	t.Leaves(id, func(leaf NodeID) bool {
		sb.WriteString(t.nodes[leaf].prefix)
		sb.WriteString(t.nodes[leaf].value)
		return true
	})
	return sb.String()
}
