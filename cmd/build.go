package cmd

import (
	"time"

	"github.com/agentic-research/tree2tabular/internal/ctxlog"
	"github.com/agentic-research/tree2tabular/internal/export"
	"github.com/agentic-research/tree2tabular/internal/serialize"
	"github.com/agentic-research/tree2tabular/internal/tabular"
	"github.com/spf13/cobra"
)

// Tables created by build next to the nodes table.
const (
	TabularTable = "tabular_hierarchy"
	EdgesTable   = "parent_child_edges"
)

func newBuildCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "build [input] [output.db]",
		Short: "Build a SQLite database holding the nodes, the table and the edge list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := ctxlog.FromContext(ctx)
			source, output := args[0], args[1]

			start := time.Now()
			tree, err := o.loadTree(ctx, source)
			if err != nil {
				return err
			}
			table, err := tabular.Project(tree)
			if err != nil {
				return err
			}
			edges, err := serialize.ToParentChild(tree, true)
			if err != nil {
				return err
			}

			logger.Info("building database", "output", output, "source", source)
			if err := export.WriteSQLite(output, o.settings.Overwrite, tree,
				export.NamedRecords{Name: TabularTable, Records: table},
				export.NamedRecords{Name: EdgesTable, Records: edges},
			); err != nil {
				return err
			}
			logger.Info("done", "output", output, "elapsed", time.Since(start))
			return nil
		},
	}
}
