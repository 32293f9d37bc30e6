package export

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/agentic-research/tree2tabular/internal/serialize"
	"github.com/agentic-research/tree2tabular/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRegionDB(t *testing.T, path string, overwrite bool) error {
	t.Helper()
	tree := regionTree(t)
	table, err := tabular.Project(tree)
	require.NoError(t, err)
	edges, err := serialize.ToParentChild(tree, false)
	require.NoError(t, err)

	return WriteSQLite(path, overwrite, tree,
		NamedRecords{Name: "tabular", Records: table},
		NamedRecords{Name: "edges", Records: edges},
	)
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.db")
	require.NoError(t, writeRegionDB(t, path, false))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&count))
	assert.Equal(t, 4, count)

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM nodes WHERE leaf = 1").Scan(&count))
	assert.Equal(t, 2, count)

	rows, err := db.Query("SELECT parent_name, child_name FROM parent_child")
	require.NoError(t, err)
	var got [][2]string
	for rows.Next() {
		var p, c string
		require.NoError(t, rows.Scan(&p, &c))
		got = append(got, [2]string{p, c})
	}
	require.NoError(t, rows.Err())
	_ = rows.Close()
	assert.Equal(t, [][2]string{{"Root", "EU"}, {"EU", "FR"}, {"EU", "DE"}}, got)

	var txt, key string
	require.NoError(t, db.QueryRow(`SELECT "TXT_REGION_LVL2", "DIM_REGION_LVL2" FROM tabular WHERE "DIM_REGION_LVL2" = 'DE'`).Scan(&txt, &key))
	assert.Equal(t, "DE", txt)
	assert.Equal(t, "DE", key)

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM edges").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestWriteSQLite_DestinationExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.db")
	require.NoError(t, os.WriteFile(path, []byte("not a database"), 0o644))

	err := writeRegionDB(t, path, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrDestinationExists))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not a database", string(data))

	require.NoError(t, writeRegionDB(t, path, true))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"DIM_A""B_LVL1"`, quoteIdent(`DIM_A"B_LVL1`))
}
