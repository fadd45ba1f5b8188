package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/recipes-mcp/internal/lifecycle"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/rxtech-lab/recipes-mcp/internal/telemetry"
)

type ResolveReplacementArguments struct {
	TemplateID          string `json:"template_id" validate:"required"`
	SimulateDeprecation bool   `json:"simulate_deprecation"`
}

type ResolveReplacementResult struct {
	TemplateID      string                 `json:"templateId"`
	EffectiveStatus models.TemplateStatus  `json:"effectiveStatus"`
	ReplacementID   string                 `json:"replacementId,omitempty"`
	Found           bool                   `json:"found"`
	CanSupersede    bool                   `json:"canSupersede"`
	Replacement     *models.ActionTemplate `json:"replacement,omitempty"`
}

func NewResolveReplacementTool(deps Deps) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("resolve_replacement",
		mcp.WithDescription("Resolve the replacement of an action template. Returns found=false when the template names no replacement or the named one no longer exists."),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("ID of the template whose replacement should be resolved"),
		),
		mcp.WithBoolean("simulate_deprecation",
			mcp.Description("Treat the template as deprecated for this call only"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ResolveReplacementArguments
		if result, err := bindArguments(request, &args); result != nil || err != nil {
			return result, err
		}
		if args.SimulateDeprecation && !deps.AllowDeprecationSimulation {
			return mcp.NewToolResultError("simulate_deprecation is disabled on this server"), nil
		}

		resolution, ok := deps.resolver().Lookup(args.TemplateID, lifecycle.Overrides{ForceDeprecated: args.SimulateDeprecation})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("Template not found: %s", args.TemplateID)), nil
		}

		template := resolution.Template
		if resolution.DanglingReplacement && deps.Tracker != nil {
			deps.Tracker.Track(ctx, telemetry.EventReplacementDangling, telemetry.Payload{
				"id":            template.ID,
				"replacementId": template.ReplacementID,
			})
		}

		result := ResolveReplacementResult{
			TemplateID:      template.ID,
			EffectiveStatus: resolution.EffectiveStatus,
			ReplacementID:   template.ReplacementID,
			Found:           resolution.Replacement != nil,
			CanSupersede:    resolution.CanSupersede(),
			Replacement:     resolution.Replacement,
		}

		message := fmt.Sprintf("No replacement for '%s'", template.ID)
		switch {
		case result.Found:
			message = fmt.Sprintf("Replacement for '%s' is '%s'", template.ID, resolution.Replacement.ID)
		case resolution.DanglingReplacement:
			message = fmt.Sprintf("Replacement '%s' of '%s' does not exist", template.ReplacementID, template.ID)
		}
		return jsonResult(message, result), nil
	}

	return tool, handler
}
