package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/recipes-mcp/internal/lifecycle"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
)

type viewActionTemplateTool struct {
	deps Deps
}

type ViewActionTemplateArguments struct {
	TemplateID          string `json:"template_id" validate:"required"`
	SimulateDeprecation bool   `json:"simulate_deprecation"`
}

type ViewActionTemplateResult struct {
	Template            *models.ActionTemplate `json:"template"`
	EffectiveStatus     models.TemplateStatus  `json:"effectiveStatus"`
	Usability           lifecycle.Usability    `json:"usability"`
	Simulated           bool                   `json:"simulated"`
	Replacement         *models.ActionTemplate `json:"replacement,omitempty"`
	DanglingReplacement bool                   `json:"danglingReplacement"`
}

func NewViewActionTemplateTool(deps Deps) *viewActionTemplateTool {
	return &viewActionTemplateTool{deps: deps}
}

func (c *viewActionTemplateTool) GetTool() mcp.Tool {
	return mcp.NewTool("view_action_template",
		mcp.WithDescription("View an action template by id: intent, what happens, what you receive, every failure mode and its lifecycle state. Deprecated templates include their replacement when it exists."),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("ID of the template to view, for example deposit-usdc-morpho-base"),
		),
		mcp.WithBoolean("simulate_deprecation",
			mcp.Description("Show the template as if it were deprecated. Nothing is stored; only this response is affected."),
		),
	)
}

func (c *viewActionTemplateTool) GetHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ViewActionTemplateArguments
		if result, err := bindArguments(request, &args); result != nil || err != nil {
			return result, err
		}
		if args.SimulateDeprecation && !c.deps.AllowDeprecationSimulation {
			return mcp.NewToolResultError("simulate_deprecation is disabled on this server"), nil
		}

		resolution, ok := c.deps.resolver().Lookup(args.TemplateID, lifecycle.Overrides{ForceDeprecated: args.SimulateDeprecation})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Template not found: %s", args.TemplateID)), nil
		}

		result := ViewActionTemplateResult{
			Template:            resolution.Template,
			EffectiveStatus:     resolution.EffectiveStatus,
			Usability:           resolution.Usability,
			Simulated:           resolution.Simulated,
			Replacement:         resolution.Replacement,
			DanglingReplacement: resolution.DanglingReplacement,
		}

		successMessage := fmt.Sprintf("Template '%s' retrieved successfully", resolution.Template.Title)
		if resolution.EffectiveStatus == models.TemplateStatusDeprecated {
			successMessage += " (deprecated"
			if resolution.Replacement != nil {
				successMessage += fmt.Sprintf(", use %s instead", resolution.Replacement.ID)
			}
			successMessage += ")"
		}
		return jsonResult(successMessage, result), nil
	}
}
