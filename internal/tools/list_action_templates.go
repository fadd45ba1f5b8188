package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/rxtech-lab/recipes-mcp/internal/registry"
)

type ListActionTemplatesArguments struct {
	Status            string `json:"status" validate:"omitempty,oneof=active deprecated demo-only"`
	Category          string `json:"category" validate:"omitempty,oneof=Lending Staking Vault"`
	ChainID           uint64 `json:"chain_id"`
	ExcludeDeprecated bool   `json:"exclude_deprecated"`
}

type templateSummary struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	ChainID       uint64                `json:"chainId"`
	ChainName     string                `json:"chainName"`
	Category      models.Category       `json:"category"`
	Status        models.TemplateStatus `json:"status"`
	Version       string                `json:"version"`
	Executable    bool                  `json:"executable"`
	ReplacementID string                `json:"replacementId,omitempty"`
}

func NewListActionTemplatesTool(deps Deps) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("list_action_templates",
		mcp.WithDescription("List curated action templates (deposit, stake and vault recipes) with optional filters. Returns summaries only. Call view_action_template for intent, steps and failure modes."),
		mcp.WithString("status",
			mcp.Description("Filter by lifecycle status"),
			mcp.Enum(string(models.TemplateStatusActive), string(models.TemplateStatusDeprecated), string(models.TemplateStatusDemoOnly)),
		),
		mcp.WithString("category",
			mcp.Description("Filter by category"),
			mcp.Enum(string(models.CategoryLending), string(models.CategoryStaking), string(models.CategoryVault)),
		),
		mcp.WithNumber("chain_id",
			mcp.Description("Filter by destination chain id, for example 8453 for Base"),
		),
		mcp.WithBoolean("exclude_deprecated",
			mcp.Description("Hide deprecated templates, as the action picker does"),
		),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListActionTemplatesArguments
		if result, err := bindArguments(request, &args); result != nil || err != nil {
			return result, err
		}

		filter := registry.Filter{
			Status:            models.TemplateStatus(args.Status),
			Category:          models.Category(args.Category),
			ChainID:           args.ChainID,
			ExcludeDeprecated: args.ExcludeDeprecated,
		}
		templates := deps.Registry.Snapshot().List(filter)

		summaries := make([]templateSummary, len(templates))
		for i, t := range templates {
			summaries[i] = templateSummary{
				ID:            t.ID,
				Title:         t.Title,
				ChainID:       t.ChainID,
				ChainName:     t.ChainName,
				Category:      t.Category,
				Status:        t.Status,
				Version:       t.Version,
				Executable:    t.IsExecutable(),
				ReplacementID: t.ReplacementID,
			}
		}

		result := map[string]any{
			"templates": summaries,
			"count":     len(summaries),
		}
		if len(summaries) == 0 {
			result["message"] = "No templates found matching the criteria"
		}
		return jsonResult(fmt.Sprintf("Templates listed successfully (%d)", len(summaries)), result), nil
	}

	return tool, handler
}
