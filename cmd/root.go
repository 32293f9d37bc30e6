package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agentic-research/tree2tabular/internal/config"
	"github.com/agentic-research/tree2tabular/internal/ctxlog"
	"github.com/agentic-research/tree2tabular/internal/export"
	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/agentic-research/tree2tabular/internal/ingest"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

// options collects the persistent flags. After PersistentPreRunE, settings
// holds the config file merged with every flag set on the command line.
type options struct {
	configPath string
	selector   string
	overwrite  bool
	delimiter  string
	logLevel   string
	logFormat  string
	rootName   string

	settings config.Config
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "tree2tabular",
		Short: "Flatten nested hierarchies into tabular, nested and parent/child exports",
		Long: `tree2tabular reads a hierarchy described as nested YAML or JSON, assigns
an identifier to every node and writes it as a level-per-column table, a
nested description with resolved ids, a parent/child edge list or a SQLite
database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.resolve(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Path to HCL config (default ~/.tree2tabular/config.hcl)")
	pf.StringVarP(&o.selector, "selector", "s", ingest.DefaultSelector, "JSONPath of the hierarchy section in the input")
	pf.BoolVarP(&o.overwrite, "overwrite", "f", false, "Replace existing output files")
	pf.StringVarP(&o.delimiter, "delimiter", "d", ",", `CSV field delimiter ("\t" for tab)`)
	pf.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&o.logFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&o.rootName, "root-name", graph.RootName, "Display name of the synthetic root node")

	root.AddCommand(
		newTabularCmd(o),
		newNestedCmd(o),
		newEdgesCmd(o),
		newConvertCmd(o),
		newBuildCmd(o),
		newServeCmd(o),
	)
	return root
}

// resolve loads the config file, lets explicit flags override it and
// installs the logger in the command context.
func (o *options) resolve(cmd *cobra.Command) error {
	path := o.configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("selector") {
		cfg.Selector = o.selector
	}
	if flags.Changed("overwrite") {
		cfg.Overwrite = o.overwrite
	}
	if flags.Changed("delimiter") {
		r, err := config.ParseDelimiter(o.delimiter)
		if err != nil {
			return err
		}
		cfg.Delimiter = r
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("root-name") {
		cfg.RootName = o.rootName
	}
	o.settings = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := ctxlog.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	cmd.SetContext(ctxlog.WithLogger(ctx, logger))
	return nil
}

// loadTree reads the hierarchy at path and builds its tree.
func (o *options) loadTree(ctx context.Context, path string) (*graph.Tree, error) {
	logger := ctxlog.FromContext(ctx)
	h, err := ingest.LoadFile(path, o.settings.Selector)
	if err != nil {
		return nil, err
	}
	tree, err := ingest.NewBuilder(
		ingest.WithLogger(logger),
		ingest.WithRootName(o.settings.RootName),
	).Build(h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("loaded hierarchy", "path", path, "label", tree.Label, "nodes", tree.Len(), "levels", tree.Depth())
	return tree, nil
}

// exporter returns an Exporter rooted at dir on the host filesystem.
func (o *options) exporter(logger *slog.Logger, dir string) *export.Exporter {
	e := export.New(osfs.New(dir), logger)
	e.Comma = o.settings.Delimiter
	return e
}

// splitOutput separates an output path into the exporter root and the
// file name inside it.
func splitOutput(path string) (string, string) {
	return filepath.Dir(path), filepath.Base(path)
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := 1
		if errors.Is(err, graph.ErrDestinationExists) {
			code = 2
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(code)
	}
}
