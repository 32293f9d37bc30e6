package ingest

import (
	"fmt"

	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/ohler55/ojg/jp"
)

// Select evaluates a JSONPath selector against a decoded document and
// returns the first match. A selector that matches nothing is reported as
// a missing hierarchy section.
func Select(root any, selector string) (any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}

	results := x.Get(root)
	if len(results) == 0 || results[0] == nil {
		return nil, graph.Configuration(graph.ErrMissingField,
			fmt.Sprintf("hierarchy section %s not found", selector))
	}
	return results[0], nil
}
