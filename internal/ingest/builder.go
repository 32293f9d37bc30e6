// Package ingest turns nested hierarchy descriptions into graph.Trees.
package ingest

import (
	"errors"
	"io"
	"log/slog"

	"github.com/agentic-research/tree2tabular/api"
	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/agentic-research/tree2tabular/internal/ident"
)

// Builder drives tree construction. A Builder holds no per-build state and
// may be reused; every Build call starts from a fresh id Assigner.
type Builder struct {
	logger   *slog.Logger
	token    func() string
	rootName string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithTokenSource overrides the token generator used by the uuid policy.
func WithTokenSource(fn func() string) Option {
	return func(b *Builder) { b.token = fn }
}

// WithRootName overrides the display name of the synthetic root node.
func WithRootName(name string) Option {
	return func(b *Builder) { b.rootName = name }
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build is shorthand for NewBuilder().Build(h).
func Build(h *api.Hierarchy) (*graph.Tree, error) {
	return NewBuilder().Build(h)
}

// Build validates h and constructs its tree. Nodes are visited depth-first,
// parent before children, children in source order. On any error no tree
// is returned.
func (b *Builder) Build(h *api.Hierarchy) (*graph.Tree, error) {
	if err := checkFields(h); err != nil {
		return nil, err
	}
	policy, err := ident.ParsePolicy(h.IDGeneration)
	if err != nil {
		return nil, err
	}

	var opts []ident.Option
	if b.token != nil {
		opts = append(opts, ident.WithTokenSource(b.token))
	}
	assigner := ident.NewAssigner(policy, opts...)

	// Declared ids anywhere in the description are claimed before any
	// node is created, so generated integers cannot collide with them.
	if err := reserveDeclared(assigner, h.Childs); err != nil {
		return nil, err
	}

	tree := graph.NewTree(h.Name, policy.String())
	if _, err := tree.CreateNamedRoot(b.rootName); err != nil {
		return nil, err
	}
	if err := b.explore(tree, assigner, graph.RootID, h.Childs); err != nil {
		return nil, err
	}

	b.logger.Debug("built hierarchy",
		"label", h.Name,
		"policy", policy.String(),
		"nodes", tree.Len(),
		"depth", tree.Depth(),
	)
	return tree, nil
}

func checkFields(h *api.Hierarchy) error {
	switch {
	case h == nil:
		return graph.Configuration(graph.ErrMissingField, "Hierarchy key not found")
	case h.Name == "":
		return graph.Configuration(graph.ErrMissingField, "name key not found")
	case h.IDGeneration == "":
		return graph.Configuration(graph.ErrMissingField, "id_generation key not found")
	case h.Childs == nil:
		return graph.Configuration(graph.ErrMissingField, "childs key not found")
	}
	return nil
}

func reserveDeclared(a *ident.Assigner, nodes []api.Node) error {
	for _, n := range nodes {
		if n.ID != nil {
			if err := a.Reserve(n.ID); err != nil {
				return withNode(err, n.Name, "")
			}
		}
		if err := reserveDeclared(a, n.Childs); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) explore(tree *graph.Tree, a *ident.Assigner, parentID graph.ID, nodes []api.Node) error {
	parent, err := tree.GetNode(parentID)
	if err != nil {
		return err
	}
	for _, c := range nodes {
		if c.Name == "" {
			e := graph.Structural(graph.ErrMissingName, graph.ID{}, "no name provided")
			if c.ID != nil {
				if id, err := graph.ParseID(c.ID); err == nil {
					e.ID = id.String()
				}
			}
			e.Parent = parent.Name
			return e
		}

		id, err := a.Assign(c.Name, c.ID)
		if err != nil {
			return withNode(err, c.Name, parent.Name)
		}
		if _, err := tree.CreateNode(c.Name, id, parentID); err != nil {
			return withNode(err, c.Name, parent.Name)
		}
		b.logger.Debug("node created", "id", id.String(), "name", c.Name, "parent", parent.Name)

		if len(c.Childs) > 0 {
			if err := b.explore(tree, a, id, c.Childs); err != nil {
				return err
			}
		}
	}
	return nil
}

// withNode fills in node context the lower layers could not know.
func withNode(err error, name, parent string) error {
	var e *graph.Error
	if errors.As(err, &e) {
		if e.Name == "" {
			e.Name = name
		}
		if e.Parent == "" {
			e.Parent = parent
		}
	}
	return err
}
