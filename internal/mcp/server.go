package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/recipes-mcp/internal/tools"
)

type MCPServer struct {
	server *server.MCPServer
	deps   tools.Deps
}

func NewMCPServer(deps tools.Deps) *MCPServer {
	mcpServer := &MCPServer{
		deps: deps,
	}
	mcpServer.InitializeTools(deps)
	return mcpServer
}

func (s *MCPServer) InitializeTools(deps tools.Deps) {
	srv := server.NewMCPServer(
		"Recipes MCP Server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv.AddPrompt(mcp.NewPrompt("recipes-mcp-usage",
		mcp.WithPromptDescription("Instructions and guidance for using the action template tools"),
		mcp.WithArgument("tool_category",
			mcp.ArgumentDescription("Category of tools to get instructions for (catalog, compile, lifecycle, or all)"),
			mcp.RequiredArgument(),
		),
	), func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		category := request.Params.Arguments["tool_category"]
		if category == "" {
			return nil, fmt.Errorf("tool_category is required")
		}

		instructions := getToolInstructions(category)

		return mcp.NewGetPromptResult(
			fmt.Sprintf("Recipes MCP Tools - %s", category),
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(
					mcp.RoleUser,
					mcp.NewTextContent(instructions),
				),
			},
		), nil
	})

	// Catalog
	listTool, listHandler := tools.NewListActionTemplatesTool(deps)
	srv.AddTool(listTool, listHandler)

	viewTool := tools.NewViewActionTemplateTool(deps)
	srv.AddTool(viewTool.GetTool(), viewTool.GetHandler())

	// Compile
	compileTool, compileHandler := tools.NewCompileActionTemplateTool(deps)
	srv.AddTool(compileTool, compileHandler)

	// Lifecycle
	resolveTool, resolveHandler := tools.NewResolveReplacementTool(deps)
	srv.AddTool(resolveTool, resolveHandler)

	s.server = srv
}

func getToolInstructions(category string) string {
	switch category {
	case "catalog":
		return `Template Catalog Tools:

1. list_action_templates - List action templates in catalog order
   Usage: Filter by status (active/deprecated/demo-only), category, chain_id.
   Set exclude_deprecated to hide deprecated templates the way the picker does.

2. view_action_template - Show one template with its failure disclosures
   Usage: Pass template_id. simulate_deprecation previews the template as deprecated
   without changing the stored record (only when the server allows it).`

	case "compile":
		return `Compile Tools:

1. compile_action_template - Build the execution config for a template
   Usage: Pass template_id. Only executable templates compile. The result carries the
   destination chain and token plus the widget config for the execution widget.
   Demo-only and non-executable templates are not an error: the result has compiled:false
   and no config. Only an unknown template_id returns an error.`

	case "lifecycle":
		return `Lifecycle Tools:

1. resolve_replacement - Look up the replacement for a deprecated template
   Usage: Pass template_id and optionally simulate_deprecation. The result says whether
   the replacement exists in the current dataset and whether the caller can switch to it.
   A replacement id that does not resolve is reported, never guessed.`

	case "all":
		return `Recipes MCP Tools Overview:

This MCP server exposes the action template registry through 4 tools:

CATALOG (2 tools):
- list_action_templates: Browse templates with filters
- view_action_template: Inspect one template and its failure modes

COMPILE (1 tool):
- compile_action_template: Produce the execution config for executable templates

LIFECYCLE (1 tool):
- resolve_replacement: Resolve deprecated templates to their replacement

Templates are read-only. Datasets are replaced as a whole by the operator.`

	default:
		return `Invalid category. Available categories: catalog, compile, lifecycle, all`
	}
}

func (s *MCPServer) Start() error {
	return server.ServeStdio(s.server)
}

// GetServer returns the underlying mcp-go server.
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.server
}

// StreamableHTTPServer serves the same tools over streamable HTTP.
func (s *MCPServer) StreamableHTTPServer(opts ...server.StreamableHTTPOption) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.server, opts...)
}
