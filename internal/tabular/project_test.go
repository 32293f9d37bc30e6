package tabular

import (
	"errors"
	"testing"

	"github.com/agentic-research/tree2tabular/api"
	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/agentic-research/tree2tabular/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBuild(t *testing.T, h *api.Hierarchy) *graph.Tree {
	t.Helper()
	tree, err := ingest.Build(h)
	require.NoError(t, err)
	return tree
}

func TestProject_RegionScenario(t *testing.T) {
	tree := mustBuild(t, &api.Hierarchy{
		Name:         "Region",
		IDGeneration: "name",
		Childs: []api.Node{
			{Name: "EU", Childs: []api.Node{{Name: "FR"}, {Name: "DE"}}},
		},
	})

	table, err := Project(tree)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"TXT_REGION_LVL1", "TXT_REGION_LVL2", "DIM_REGION_LVL1", "DIM_REGION_LVL2",
	}, table.Columns)
	assert.Equal(t, [][]string{
		{"TXT_REGION_LVL1", "TXT_REGION_LVL2", "DIM_REGION_LVL1", "DIM_REGION_LVL2"},
		{"EU", "FR", "EU", "FR"},
		{"EU", "DE", "EU", "DE"},
	}, table.Records())
}

func TestProject_PadsShallowLeaves(t *testing.T) {
	tree := mustBuild(t, &api.Hierarchy{
		Name:         "Product",
		IDGeneration: "incremental",
		Childs: []api.Node{
			{Name: "Aircraft", Childs: []api.Node{
				{Name: "Single aisle", Childs: []api.Node{{Name: "A320"}}},
			}},
			{Name: "Helicopters"},
		},
	})

	table, err := Project(tree)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 3, table.Levels)

	assert.Equal(t, []string{"Aircraft", "Single aisle", "A320", "1", "2", "3"}, table.Rows[0].Values())
	assert.Equal(t, []string{"Helicopters", "Helicopters", "Helicopters", "4", "4", "4"}, table.Rows[1].Values())
}

func TestProject_RowsMatchLeavesAndNames(t *testing.T) {
	tree := mustBuild(t, &api.Hierarchy{
		Name:         "Org",
		IDGeneration: "uuid",
		Childs: []api.Node{
			{Name: "A", Childs: []api.Node{{Name: "A1"}, {Name: "A2", Childs: []api.Node{{Name: "A2x"}}}}},
			{Name: "B"},
			{Name: "C", Childs: []api.Node{{Name: "C1"}}},
		},
	})

	table, err := Project(tree)
	require.NoError(t, err)
	assert.Len(t, table.Rows, len(tree.Leaves()))

	for _, r := range table.Rows {
		require.Len(t, r.Keys, table.Levels)
		for i, key := range r.Keys {
			n, err := tree.GetNode(key)
			require.NoError(t, err)
			assert.Equal(t, n.Name, r.Names[i])
		}
	}
}

func TestProject_LowercaseLabelIsUppercased(t *testing.T) {
	assert.Equal(t, "DIM_COST CENTER_LVL2", KeyColumn("cost center", 2))
	assert.Equal(t, "TXT_REGION_LVL1", TextColumn("region", 1))
}

func TestProject_BareRoot(t *testing.T) {
	tree := mustBuild(t, &api.Hierarchy{Name: "Empty", IDGeneration: "name", Childs: []api.Node{}})

	table, err := Project(tree)
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
	assert.Equal(t, [][]string{{}}, table.Records())
}

// Leaf ids are unique in a built tree, so the final-level check cannot fire
// through Build; it is exercised on a hand-made table.
func TestCheckFinalColumn_Duplicate(t *testing.T) {
	table := &Table{
		Label:  "Region",
		Levels: 2,
		Rows: []Row{
			{Names: []string{"EU", "FR"}, Keys: []graph.ID{graph.TextID("EU"), graph.TextID("FR")}},
			{Names: []string{"FR", "FR"}, Keys: []graph.ID{graph.TextID("FR"), graph.TextID("FR")}},
		},
	}
	err := checkFinalColumn(table)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrDuplicateLeafKey))
	assert.True(t, errors.Is(err, graph.ErrProjection))
	assert.Contains(t, err.Error(), "DIM_REGION_LVL2")
}

func TestProject_FinalColumnUnique(t *testing.T) {
	// A leaf can never also be an ancestor in a tree, so the stricter
	// ancestor check reduces to the final-column check above.
	tree := mustBuild(t, &api.Hierarchy{
		Name:         "Dim",
		IDGeneration: "name",
		Childs: []api.Node{
			{Name: "x", Childs: []api.Node{{Name: "y", Childs: []api.Node{{Name: "z"}}}}},
			{Name: "w"},
		},
	})
	table, err := Project(tree)
	require.NoError(t, err)

	seen := map[graph.ID]bool{}
	for _, r := range table.Rows {
		last := r.Keys[table.Levels-1]
		assert.False(t, seen[last])
		seen[last] = true
	}
}
