package cmd

import (
	"path/filepath"

	"github.com/agentic-research/tree2tabular/internal/ctxlog"
	"github.com/agentic-research/tree2tabular/internal/serialize"
	"github.com/agentic-research/tree2tabular/internal/tabular"
	"github.com/spf13/cobra"
)

// Output file names written by convert.
const (
	TabularFile     = "tabular_hierarchy.csv"
	NestedFile      = "hierarchy_with_ids.yml"
	ParentChildFile = "parent_child.csv"
)

func newTabularCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tabular [input] [output.csv]",
		Short: "Write one row per leaf with a text and key column per level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tree, err := o.loadTree(ctx, args[0])
			if err != nil {
				return err
			}
			table, err := tabular.Project(tree)
			if err != nil {
				return err
			}
			dir, name := splitOutput(args[1])
			return o.exporter(ctxlog.FromContext(ctx), dir).WriteCSV(name, table, o.settings.Overwrite)
		},
	}
}

func newNestedCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "nested [input] [output.yml|output.json]",
		Short: "Write the hierarchy back as a nested description with resolved ids",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tree, err := o.loadTree(ctx, args[0])
			if err != nil {
				return err
			}
			dir, name := splitOutput(args[1])
			return o.exporter(ctxlog.FromContext(ctx), dir).WriteNested(name, serialize.ToNested(tree), o.settings.Overwrite)
		},
	}
}

func newEdgesCmd(o *options) *cobra.Command {
	var useNames bool
	cmd := &cobra.Command{
		Use:   "edges [input] [output.csv]",
		Short: "Write one parent/child pair per non-root node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tree, err := o.loadTree(ctx, args[0])
			if err != nil {
				return err
			}
			edges, err := serialize.ToParentChild(tree, o.useNames(cmd, useNames))
			if err != nil {
				return err
			}
			dir, name := splitOutput(args[1])
			return o.exporter(ctxlog.FromContext(ctx), dir).WriteCSV(name, edges, o.settings.Overwrite)
		},
	}
	cmd.Flags().BoolVarP(&useNames, "names", "n", false, "Use display names instead of ids")
	return cmd
}

func newConvertCmd(o *options) *cobra.Command {
	var useNames bool
	cmd := &cobra.Command{
		Use:   "convert [input] [output-dir]",
		Short: "Write the tabular, nested and parent/child exports into a directory",
		Long: `convert builds the hierarchy once and writes
  ` + TabularFile + `
  ` + NestedFile + `
  ` + ParentChildFile + `
into the output directory. Existing files are kept unless --overwrite is set;
nothing is written if any of them would be refused.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := ctxlog.FromContext(ctx)
			tree, err := o.loadTree(ctx, args[0])
			if err != nil {
				return err
			}
			table, err := tabular.Project(tree)
			if err != nil {
				return err
			}
			edges, err := serialize.ToParentChild(tree, o.useNames(cmd, useNames))
			if err != nil {
				return err
			}

			e := o.exporter(logger, args[1])
			if !o.settings.Overwrite {
				if err := e.EnsureAbsent(TabularFile, NestedFile, ParentChildFile); err != nil {
					return err
				}
			}
			if err := e.WriteCSV(TabularFile, table, o.settings.Overwrite); err != nil {
				return err
			}
			if err := e.WriteNested(NestedFile, serialize.ToNested(tree), o.settings.Overwrite); err != nil {
				return err
			}
			if err := e.WriteCSV(ParentChildFile, edges, o.settings.Overwrite); err != nil {
				return err
			}
			logger.Info("conversion complete", "dir", filepath.Clean(args[1]))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&useNames, "names", "n", false, "Use display names in "+ParentChildFile)
	return cmd
}

// useNames prefers an explicit --names flag over the config file.
func (o *options) useNames(cmd *cobra.Command, flag bool) bool {
	if cmd.Flags().Changed("names") {
		return flag
	}
	return o.settings.UseNames
}
