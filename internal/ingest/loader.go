package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/tree2tabular/api"
	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DefaultSelector locates the hierarchy section in a document.
const DefaultSelector = "$.Hierarchy"

// Format is the encoding of a hierarchy document.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatForPath picks the format from the file extension. Anything that is
// not .json is read as YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads and decodes the hierarchy section of the file at path.
func LoadFile(path, selector string) (*api.Hierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hierarchy file %s: %w", path, err)
	}
	h, err := Parse(data, FormatForPath(path), selector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// Parse decodes data and extracts the hierarchy section addressed by
// selector (DefaultSelector when empty).
func Parse(data []byte, format Format, selector string) (*api.Hierarchy, error) {
	var root any
	switch format {
	case FormatJSON:
		v, err := oj.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		root = v
	default:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	if selector == "" {
		selector = DefaultSelector
	}
	section, err := Select(root, selector)
	if err != nil {
		return nil, err
	}
	return Decode(section)
}

// Decode converts a generic mapping (as produced by YAML or JSON decoders)
// into a Hierarchy. Only the shape is checked here; Build validates content.
func Decode(section any) (*api.Hierarchy, error) {
	m, ok := section.(map[string]any)
	if !ok {
		return nil, graph.Configuration(graph.ErrMissingField, "hierarchy section must be a mapping")
	}

	h := &api.Hierarchy{}
	var err error
	if h.Name, err = scalarString(m["name"]); err != nil {
		return nil, graph.Configuration(graph.ErrMissingField, "name: "+err.Error())
	}
	if h.IDGeneration, err = scalarString(m["id_generation"]); err != nil {
		return nil, graph.Configuration(graph.ErrMissingField, "id_generation: "+err.Error())
	}
	if raw, ok := m["childs"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, graph.Configuration(graph.ErrMissingField, "childs must be a list")
		}
		if h.Childs, err = decodeNodes(list, "childs"); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func decodeNodes(list []any, path string) ([]api.Node, error) {
	nodes := make([]api.Node, 0, len(list))
	for i, item := range list {
		at := fmt.Sprintf("%s[%d]", path, i)
		m, ok := item.(map[string]any)
		if !ok {
			return nil, graph.Structural(graph.ErrMissingName, graph.ID{}, at+" must be a mapping with a name")
		}
		name, err := scalarString(m["name"])
		if err != nil {
			return nil, graph.Structural(graph.ErrMissingName, graph.ID{}, at+".name: "+err.Error())
		}
		n := api.Node{Name: name, ID: m["id"]}
		if raw, ok := m["childs"]; ok && raw != nil {
			sub, ok := raw.([]any)
			if !ok {
				return nil, graph.Structural(graph.ErrMissingName, graph.ID{}, at+".childs must be a list")
			}
			if n.Childs, err = decodeNodes(sub, at+".childs"); err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// scalarString renders a scalar value as a string; nil becomes "".
func scalarString(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	switch v.(type) {
	case map[string]any, []any:
		return "", fmt.Errorf("expected a scalar, got %T", v)
	}
	return cast.ToStringE(v)
}
