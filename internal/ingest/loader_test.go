package ingest

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_YAML(t *testing.T) {
	h, err := Parse([]byte(`
Hierarchy:
  name: Region
  id_generation: name
  childs:
    - name: EU
      id: 12
      childs:
        - name: FR
    - name: 2024
`), FormatYAML, "")
	require.NoError(t, err)

	assert.Equal(t, "Region", h.Name)
	assert.Equal(t, "name", h.IDGeneration)
	require.Len(t, h.Childs, 2)
	assert.Equal(t, "EU", h.Childs[0].Name)
	assert.Equal(t, 12, h.Childs[0].ID)
	require.Len(t, h.Childs[0].Childs, 1)
	assert.Nil(t, h.Childs[0].Childs[0].ID)
	assert.Equal(t, "2024", h.Childs[1].Name, "scalar names are stringified")
}

func TestParse_JSON(t *testing.T) {
	h, err := LoadFile(filepath.Join("testdata", "hierarchy.json"), "")
	require.NoError(t, err)
	assert.Equal(t, "incremental", h.IDGeneration)
	require.Len(t, h.Childs, 2)
	assert.EqualValues(t, 5, h.Childs[0].Childs[0].ID)

	tree, err := Build(h)
	require.NoError(t, err)
	for name, id := range map[string]graph.ID{
		"EU": graph.IntID(6),
		"FR": graph.IntID(5),
		"DE": graph.IntID(7),
		"US": graph.IntID(8),
	} {
		n, err := tree.GetNode(id)
		require.NoError(t, err, name)
		assert.Equal(t, name, n.Name)
	}
}

func TestParse_Selector(t *testing.T) {
	path := filepath.Join("testdata", "nested_section.yml")

	_, err := LoadFile(path, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrMissingField), "default selector must miss: %v", err)

	h, err := LoadFile(path, "$.dimensions.region")
	require.NoError(t, err)
	assert.Equal(t, "Region", h.Name)
	assert.Len(t, h.Childs, 2)

	_, err = LoadFile(path, "$.dimensions[")
	assert.Error(t, err)
}

func TestParse_MissingChildsKeepsNil(t *testing.T) {
	h, err := Parse([]byte("Hierarchy:\n  name: Region\n  id_generation: name\n"), FormatYAML, "")
	require.NoError(t, err)
	assert.Nil(t, h.Childs)

	_, err = Build(h)
	assert.True(t, errors.Is(err, graph.ErrMissingField))
}

func TestParse_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code error
	}{
		{"section not a mapping", "Hierarchy: [1, 2]\n", graph.ErrMissingField},
		{"childs not a list", "Hierarchy:\n  name: R\n  id_generation: name\n  childs: EU\n", graph.ErrMissingField},
		{"child not a mapping", "Hierarchy:\n  name: R\n  id_generation: name\n  childs: [EU]\n", graph.ErrMissingName},
		{"name not scalar", "Hierarchy:\n  name: R\n  id_generation: name\n  childs:\n    - name: {a: 1}\n", graph.ErrMissingName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatYAML, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "err = %v", err)
		})
	}
}

func TestParse_InvalidSyntax(t *testing.T) {
	_, err := Parse([]byte("Hierarchy: [unclosed"), FormatYAML, "")
	assert.Error(t, err)

	_, err = Parse([]byte(`{"Hierarchy": `), FormatJSON, "")
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatForPath("a/b.yml"))
	assert.Equal(t, FormatYAML, FormatForPath("a/b.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("noext"))
}
