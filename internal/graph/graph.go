package graph

import "fmt"

// RootName is the display name given to the synthetic root node.
const RootName = "Root"

// Node is one record in the tree arena. Links to other nodes are ids,
// never pointers; resolve them through the owning Tree.
type Node struct {
	ID       ID
	Name     string
	Parent   ID // zero for the root
	Level    int
	Children []ID // insertion order
}

// IsRoot reports whether n is the tree root.
func (n *Node) IsRoot() bool { return n.Level == 0 }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is a rooted tree stored as a flat id -> node map.
//
// A Tree is populated once by a single builder and is read-only afterwards;
// concurrent readers are safe, concurrent mutation is not supported.
type Tree struct {
	// Label is the declared dimension label, used to name tabular columns.
	Label string
	// Generation is the id_generation value the tree was built with.
	Generation string

	root  ID
	nodes map[ID]*Node
	order []ID // insertion order, root first
	depth int
}

// NewTree returns an empty tree. Call CreateRoot before adding nodes.
func NewTree(label, generation string) *Tree {
	return &Tree{
		Label:      label,
		Generation: generation,
		nodes:      make(map[ID]*Node),
	}
}

// CreateRoot adds the root node under RootID, named RootName.
func (t *Tree) CreateRoot() (*Node, error) {
	return t.CreateNamedRoot(RootName)
}

// CreateNamedRoot adds the root node under RootID with a custom display name.
func (t *Tree) CreateNamedRoot(name string) (*Node, error) {
	if _, ok := t.nodes[RootID]; ok {
		return nil, Structural(ErrDuplicateIdentifier, RootID, "root already exists")
	}
	if name == "" {
		name = RootName
	}
	n := &Node{ID: RootID, Name: name}
	t.root = RootID
	t.nodes[RootID] = n
	t.order = append(t.order, RootID)
	return n, nil
}

// CreateNode adds a node named name under parent.
func (t *Tree) CreateNode(name string, id, parent ID) (*Node, error) {
	p, ok := t.nodes[parent]
	if !ok {
		e := Structural(ErrUnknownParent, id, fmt.Sprintf("parent id %q not in tree", parent))
		e.Name = name
		return nil, e
	}
	if id == RootID {
		e := Structural(ErrReservedIdentifier, id, "id 0 is reserved for root node")
		e.Name = name
		e.Parent = p.Name
		return nil, e
	}
	if existing, ok := t.nodes[id]; ok {
		e := Structural(ErrDuplicateIdentifier, id, "node identifier is not unique")
		e.Name = name
		e.Other = existing.Name
		return nil, e
	}

	n := &Node{ID: id, Name: name, Parent: parent, Level: p.Level + 1}
	t.nodes[id] = n
	t.order = append(t.order, id)
	p.Children = append(p.Children, id)
	if n.Level > t.depth {
		t.depth = n.Level
	}
	return n, nil
}

// Root returns the root node, or nil if CreateRoot was never called.
func (t *Tree) Root() *Node {
	return t.nodes[t.root]
}

// GetNode returns the node with the given id.
func (t *Tree) GetNode(id ID) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// Contains reports whether id is present.
func (t *Tree) Contains(id ID) bool {
	_, ok := t.nodes[id]
	return ok
}

// ListChildren returns the child ids of id in insertion order.
func (t *Tree) ListChildren(id ID) ([]ID, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n.Children, nil
}

// Depth returns the maximum level across all nodes (0 for a bare root).
func (t *Tree) Depth() int { return t.depth }

// Len returns the number of nodes, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Level returns the distance from the root to id.
func (t *Tree) Level(id ID) (int, error) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, ErrNotFound
	}
	return n.Level, nil
}

// AncestorAt walks up from id to the ancestor sitting at level.
// AncestorAt(id, Level(id)) is the node itself.
func (t *Tree) AncestorAt(id ID, level int) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if level < 0 || level > n.Level {
		return nil, Structural(ErrOutOfRange, id, fmt.Sprintf("level %d outside [0, %d]", level, n.Level))
	}
	for n.Level > level {
		n, ok = t.nodes[n.Parent]
		if !ok {
			return nil, Structural(ErrNullParent, id, "broken parent link")
		}
	}
	return n, nil
}

// Nodes returns every node in insertion order, root first.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}

// Leaves returns the non-root nodes without children, in insertion order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	for _, id := range t.order {
		n := t.nodes[id]
		if n.IsLeaf() && !n.IsRoot() {
			out = append(out, n)
		}
	}
	return out
}

// LeafPaths returns, for every leaf, the ids from the root to that leaf.
// Paths are not padded; a bare root yields no paths.
func (t *Tree) LeafPaths() [][]ID {
	leaves := t.Leaves()
	paths := make([][]ID, 0, len(leaves))
	for _, leaf := range leaves {
		path := make([]ID, leaf.Level+1)
		for n := leaf; ; n = t.nodes[n.Parent] {
			path[n.Level] = n.ID
			if n.IsRoot() {
				break
			}
		}
		paths = append(paths, path)
	}
	return paths
}
