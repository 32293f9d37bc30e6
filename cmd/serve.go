package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agentic-research/tree2tabular/internal/config"
	"github.com/agentic-research/tree2tabular/internal/ctxlog"
	"github.com/agentic-research/tree2tabular/internal/export"
	"github.com/agentic-research/tree2tabular/internal/graph"
	"github.com/agentic-research/tree2tabular/internal/ingest"
	"github.com/agentic-research/tree2tabular/internal/serialize"
	"github.com/agentic-research/tree2tabular/internal/tabular"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// Version is reported to MCP clients.
var Version = "dev"

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversions as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tools := &toolset{settings: o.settings, logger: ctxlog.FromContext(ctx)}
			tools.logger.Info("serving MCP over stdio", "version", Version)
			return server.NewStdioServer(tools.server()).Listen(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// toolset exposes the conversions to MCP clients. Every call receives the
// hierarchy document inline and returns the export as text.
type toolset struct {
	settings config.Config
	logger   *slog.Logger
}

func (ts *toolset) server() *server.MCPServer {
	s := server.NewMCPServer("tree2tabular", Version, server.WithToolCapabilities(false))

	hierarchyArg := mcp.WithString("hierarchy",
		mcp.Required(),
		mcp.Description("Hierarchy document in YAML or JSON with a Hierarchy section"),
	)
	formatArg := mcp.WithString("format",
		mcp.Description("Input format; detected from the document when omitted"),
		mcp.Enum("yaml", "json"),
	)

	s.AddTool(mcp.NewTool("tabulate",
		mcp.WithDescription("Flatten a hierarchy into CSV with one row per leaf"),
		hierarchyArg, formatArg,
	), ts.tabulate)

	s.AddTool(mcp.NewTool("nested",
		mcp.WithDescription("Return the hierarchy with every id resolved"),
		hierarchyArg, formatArg,
		mcp.WithString("output",
			mcp.Description("Output format"),
			mcp.Enum("yaml", "json"),
		),
	), ts.nested)

	s.AddTool(mcp.NewTool("edges",
		mcp.WithDescription("List parent/child pairs as CSV"),
		hierarchyArg, formatArg,
		mcp.WithBoolean("use_names",
			mcp.Description("Use display names instead of ids"),
		),
	), ts.edges)

	return s
}

// build parses the hierarchy argument of req and builds its tree.
func (ts *toolset) build(req mcp.CallToolRequest) (*graph.Tree, error) {
	doc, err := req.RequireString("hierarchy")
	if err != nil {
		return nil, err
	}
	format := ingest.FormatYAML
	switch req.GetString("format", "") {
	case "json":
		format = ingest.FormatJSON
	case "yaml":
	default:
		if strings.HasPrefix(strings.TrimSpace(doc), "{") {
			format = ingest.FormatJSON
		}
	}

	h, err := ingest.Parse([]byte(doc), format, ts.settings.Selector)
	if err != nil {
		return nil, err
	}
	return ingest.NewBuilder(
		ingest.WithLogger(ts.logger),
		ingest.WithRootName(ts.settings.RootName),
	).Build(h)
}

func (ts *toolset) tabulate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := ts.build(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := tabular.Project(tree)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	if err := export.EncodeCSV(&b, table.Records(), ts.settings.Delimiter); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (ts *toolset) nested(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := ts.build(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc := serialize.ToNested(tree)
	var b strings.Builder
	if req.GetString("output", "yaml") == "json" {
		err = export.EncodeJSON(&b, doc)
	} else {
		err = export.EncodeYAML(&b, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("encode nested: %w", err)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (ts *toolset) edges(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := ts.build(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	edges, err := serialize.ToParentChild(tree, req.GetBool("use_names", ts.settings.UseNames))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	if err := export.EncodeCSV(&b, edges.Records(), ts.settings.Delimiter); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return mcp.NewToolResultText(b.String()), nil
}
