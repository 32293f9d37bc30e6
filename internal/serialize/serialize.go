// Package serialize re-emits a built tree as a nested description or as a
// flat parent/child edge list.
package serialize

import (
	"fmt"
	"sort"

	"github.com/agentic-research/tree2tabular/api"
	"github.com/agentic-research/tree2tabular/internal/graph"
)

// ToNested rebuilds the nested description with every resolved id
// materialized. Children are sorted by display name at every level.
func ToNested(tree *graph.Tree) *api.Document {
	childs := listChildren(tree, graph.RootID)
	if childs == nil {
		childs = []api.Node{}
	}
	return &api.Document{
		Hierarchy: &api.Hierarchy{
			Name:         tree.Label,
			IDGeneration: tree.Generation,
			Childs:       childs,
		},
	}
}

func listChildren(tree *graph.Tree, id graph.ID) []api.Node {
	ids, err := tree.ListChildren(id)
	if err != nil || len(ids) == 0 {
		return nil
	}
	nodes := make([]*graph.Node, 0, len(ids))
	for _, cid := range ids {
		if n, err := tree.GetNode(cid); err == nil {
			nodes = append(nodes, n)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })

	out := make([]api.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, api.Node{
			Name:   n.Name,
			ID:     n.ID.Value(),
			Childs: listChildren(tree, n.ID),
		})
	}
	return out
}

// Edge links a node to its parent.
type Edge struct {
	Parent     graph.ID
	Child      graph.ID
	ParentName string
	ChildName  string
}

// EdgeTable is the parent/child projection of a tree.
type EdgeTable struct {
	UseNames bool
	Columns  []string
	Rows     []Edge
}

// Values returns e in the column layout selected by useNames.
func (e Edge) Values(useNames bool) []string {
	if useNames {
		return []string{e.ParentName, e.ChildName}
	}
	return []string{e.Parent.String(), e.Child.String()}
}

// Records returns the header followed by every edge.
func (t *EdgeTable) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string{}, t.Columns...))
	for _, e := range t.Rows {
		out = append(out, e.Values(t.UseNames))
	}
	return out
}

// ToParentChild lists one edge per non-root node, in build order.
func ToParentChild(tree *graph.Tree, useNames bool) (*EdgeTable, error) {
	t := &EdgeTable{
		UseNames: useNames,
		Columns:  []string{"parent_id", "child_id"},
	}
	if useNames {
		t.Columns = []string{"parent_name", "child_name"}
	}

	for _, child := range tree.Nodes() {
		if child.IsRoot() {
			continue
		}
		if child.ID.IsZero() {
			return nil, graph.Structural(graph.ErrNullChild, graph.ID{}, fmt.Sprintf("child id is empty for node %q", child.Name))
		}
		parent, err := tree.AncestorAt(child.ID, child.Level-1)
		if err != nil {
			return nil, fmt.Errorf("parent of %s: %w", child.ID, err)
		}
		if parent == nil || parent.ID.IsZero() {
			return nil, graph.Structural(graph.ErrNullParent, child.ID, "parent id is empty")
		}
		t.Rows = append(t.Rows, Edge{
			Parent:     parent.ID,
			Child:      child.ID,
			ParentName: parent.Name,
			ChildName:  child.Name,
		})
	}
	return t, nil
}
