// Package tabular flattens a hierarchy into one row per leaf with a
// key/text column pair per level.
package tabular

import (
	"fmt"
	"strings"

	"github.com/agentic-research/tree2tabular/internal/graph"
)

// Table is the rectangular projection of a tree.
type Table struct {
	Label  string
	Levels int
	// Columns holds the text columns for levels 1..Levels followed by the
	// key columns for the same levels.
	Columns []string
	Rows    []Row
}

// Row is one leaf. Names[i] is the display name of Keys[i].
type Row struct {
	Names []string
	Keys  []graph.ID
}

// Values returns the row in column order.
func (r Row) Values() []string {
	out := make([]string, 0, len(r.Names)+len(r.Keys))
	out = append(out, r.Names...)
	for _, k := range r.Keys {
		out = append(out, k.String())
	}
	return out
}

// Records returns the header followed by every row, ready for a CSV writer.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	header := make([]string, len(t.Columns))
	copy(header, t.Columns)
	out = append(out, header)
	for _, r := range t.Rows {
		out = append(out, r.Values())
	}
	return out
}

// KeyColumn names the identifier column of a 1-based level.
func KeyColumn(label string, level int) string {
	return fmt.Sprintf("DIM_%s_LVL%d", strings.ToUpper(label), level)
}

// TextColumn names the display-name column of a 1-based level.
func TextColumn(label string, level int) string {
	return fmt.Sprintf("TXT_%s_LVL%d", strings.ToUpper(label), level)
}

// Project flattens tree. Leaves shallower than the tree depth repeat their
// own id and name across the remaining levels. The root level is never
// emitted.
func Project(tree *graph.Tree) (*Table, error) {
	levels := tree.Depth()
	t := &Table{
		Label:   tree.Label,
		Levels:  levels,
		Columns: make([]string, 0, 2*levels),
	}
	for i := 1; i <= levels; i++ {
		t.Columns = append(t.Columns, TextColumn(tree.Label, i))
	}
	for i := 1; i <= levels; i++ {
		t.Columns = append(t.Columns, KeyColumn(tree.Label, i))
	}

	for _, path := range tree.LeafPaths() {
		row := Row{
			Names: make([]string, levels),
			Keys:  make([]graph.ID, levels),
		}
		last := path[len(path)-1]
		for i := 1; i <= levels; i++ {
			key := last
			if i < len(path) {
				key = path[i]
			}
			n, err := tree.GetNode(key)
			if err != nil {
				return nil, fmt.Errorf("project level %d: %w", i, err)
			}
			row.Keys[i-1] = key
			row.Names[i-1] = n.Name
		}
		t.Rows = append(t.Rows, row)
	}

	if err := checkFinalColumn(t); err != nil {
		return nil, err
	}
	return t, nil
}

// checkFinalColumn requires one row per distinct deepest-level key.
func checkFinalColumn(t *Table) error {
	if t.Levels == 0 {
		return nil
	}
	seen := make(map[graph.ID]int, len(t.Rows))
	for i, r := range t.Rows {
		key := r.Keys[t.Levels-1]
		if prev, dup := seen[key]; dup {
			e := graph.Projection(graph.ErrDuplicateLeafKey, fmt.Sprintf(
				"duplicate values in column %s (rows %d and %d)", KeyColumn(t.Label, t.Levels), prev, i))
			e.ID = key.String()
			return e
		}
		seen[key] = i
	}
	return nil
}
