package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/recipes-mcp/internal/compiler"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/rxtech-lab/recipes-mcp/internal/telemetry"
)

type CompileActionTemplateArguments struct {
	TemplateID string `json:"template_id" validate:"required"`
}

type CompileActionTemplateResult struct {
	TemplateID   string                  `json:"templateId"`
	Compiled     bool                    `json:"compiled"`
	Config       *models.ExecutionConfig `json:"config,omitempty"`
	WidgetConfig map[string]any          `json:"widgetConfig,omitempty"`
}

func NewCompileActionTemplateTool(deps Deps) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("compile_action_template",
		mcp.WithDescription("Compile an executable action template into the widget execution config (destination chain and token, optional source defaults). Demo-only and non-executable templates compile to nothing."),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("ID of the template to compile"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args CompileActionTemplateArguments
		if result, err := bindArguments(request, &args); result != nil || err != nil {
			return result, err
		}

		template, ok := deps.Registry.Snapshot().GetByID(args.TemplateID)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Template not found: %s", args.TemplateID)), nil
		}

		config := compiler.Compile(template)
		if config == nil {
			return jsonResult(
				fmt.Sprintf("Template '%s' is not executable", template.ID),
				CompileActionTemplateResult{TemplateID: template.ID},
			), nil
		}

		if deps.Tracker != nil {
			deps.Tracker.Track(ctx, telemetry.EventTemplateCompiled, telemetry.Payload{
				"id":               template.ID,
				"destinationChain": config.DestinationChain,
				"destinationToken": config.DestinationToken,
			})
		}

		return jsonResult(fmt.Sprintf("Template '%s' compiled successfully", template.ID), CompileActionTemplateResult{
			TemplateID:   template.ID,
			Compiled:     true,
			Config:       config,
			WidgetConfig: compiler.WidgetConfig(config),
		}), nil
	}

	return tool, handler
}
