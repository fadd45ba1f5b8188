package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/recipes-mcp/internal/loader"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/rxtech-lab/recipes-mcp/internal/registry"
	"github.com/rxtech-lab/recipes-mcp/internal/telemetry"
	"github.com/stretchr/testify/require"
)

type countingSink struct {
	events []telemetry.Event
}

func (c *countingSink) Name() string                       { return "counting" }
func (c *countingSink) CanHandle(telemetry.EventName) bool { return true }
func (c *countingSink) Emit(_ context.Context, event telemetry.Event) error {
	c.events = append(c.events, event)
	return nil
}

// setupTestDeps serves the default dataset plus one deprecated template with a live
// replacement and one with a dangling replacement.
func setupTestDeps(t *testing.T) (Deps, *countingSink) {
	t.Helper()
	templates, err := loader.NewEmbeddedSource().Load(context.Background())
	require.NoError(t, err)
	templates = append(templates,
		models.ActionTemplate{
			ID:            "deposit-usdc-morpho-base-legacy",
			Title:         "Deposit USDC into Morpho (legacy)",
			ChainID:       8453,
			Category:      models.CategoryLending,
			Status:        models.TemplateStatusDeprecated,
			Intent:        "Legacy market",
			ReplacementID: "deposit-usdc-morpho-base",
		},
		models.ActionTemplate{
			ID:            "vault-orphan",
			Title:         "Orphaned vault",
			ChainID:       1,
			Category:      models.CategoryVault,
			Status:        models.TemplateStatusActive,
			Intent:        "Vault whose successor was unpublished",
			ReplacementID: "vault-gone",
		},
	)

	reg := registry.New()
	require.NoError(t, reg.Reload(templates))

	sink := &countingSink{}
	tracker := telemetry.NewTracker(nil)
	require.NoError(t, tracker.AddSink(sink))

	return Deps{Registry: reg, Tracker: tracker, AllowDeprecationSimulation: true}, sink
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// decodeResult unmarshals the JSON payload of a successful tool result
func decodeResult(t *testing.T, result *mcp.CallToolResult, target any) string {
	t.Helper()
	require.False(t, result.IsError, "unexpected tool error: %v", result.Content)
	require.Len(t, result.Content, 2)

	message, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	payload, ok := result.Content[1].(mcp.TextContent)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(payload.Text), target))
	return message.Text
}

func errorText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}
