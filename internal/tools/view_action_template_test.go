package tools

import (
	"context"
	"testing"

	"github.com/rxtech-lab/recipes-mcp/internal/lifecycle"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViewActionTemplateTool(t *testing.T) {
	deps, _ := setupTestDeps(t)
	viewTool := NewViewActionTemplateTool(deps)
	tool := viewTool.GetTool()

	assert.Equal(t, "view_action_template", tool.Name)
	assert.NotEmpty(t, tool.Description)
	assert.NotNil(t, viewTool.GetHandler())
	assert.Contains(t, tool.InputSchema.Properties, "template_id")
	assert.Contains(t, tool.InputSchema.Properties, "simulate_deprecation")
	assert.Contains(t, tool.InputSchema.Required, "template_id")
}

func TestViewActionTemplateHandler(t *testing.T) {
	deps, _ := setupTestDeps(t)
	handler := NewViewActionTemplateTool(deps).GetHandler()

	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"template_id": "deposit-usdc-morpho-base",
	}))
	require.NoError(t, err)

	var decoded ViewActionTemplateResult
	message := decodeResult(t, result, &decoded)
	assert.Contains(t, message, "Deposit USDC into Morpho")
	assert.Equal(t, models.TemplateStatusActive, decoded.EffectiveStatus)
	assert.Equal(t, lifecycle.UsabilityActive, decoded.Usability)
	assert.Len(t, decoded.Template.CanFail, 5)
	assert.False(t, decoded.Simulated)
}

func TestViewActionTemplateHandler_SimulatedDeprecation(t *testing.T) {
	deps, _ := setupTestDeps(t)
	handler := NewViewActionTemplateTool(deps).GetHandler()

	args := map[string]interface{}{
		"template_id":          "deposit-usdc-morpho-base",
		"simulate_deprecation": true,
	}
	result, err := handler(context.Background(), callRequest(args))
	require.NoError(t, err)

	var decoded ViewActionTemplateResult
	message := decodeResult(t, result, &decoded)
	assert.Contains(t, message, "use deposit-usdc-morpho-base-v2 instead")
	assert.Equal(t, models.TemplateStatusDeprecated, decoded.EffectiveStatus)
	assert.True(t, decoded.Simulated)
	require.NotNil(t, decoded.Replacement)
	assert.Equal(t, "deposit-usdc-morpho-base-v2", decoded.Replacement.ID)

	// the override never reaches the stored record
	stored, _ := deps.Registry.Snapshot().GetByID("deposit-usdc-morpho-base")
	assert.Equal(t, models.TemplateStatusActive, stored.Status)
}

func TestViewActionTemplateHandler_SimulationDisabled(t *testing.T) {
	deps, _ := setupTestDeps(t)
	deps.AllowDeprecationSimulation = false
	handler := NewViewActionTemplateTool(deps).GetHandler()

	result, err := handler(context.Background(), callRequest(map[string]interface{}{
		"template_id":          "deposit-usdc-morpho-base",
		"simulate_deprecation": true,
	}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "disabled")
}

func TestViewActionTemplateHandler_NotFound(t *testing.T) {
	deps, _ := setupTestDeps(t)
	handler := NewViewActionTemplateTool(deps).GetHandler()

	result, err := handler(context.Background(), callRequest(map[string]interface{}{"template_id": "ghost"}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "Template not found")
}

func TestViewActionTemplateHandler_MissingRequiredArgs(t *testing.T) {
	deps, _ := setupTestDeps(t)
	handler := NewViewActionTemplateTool(deps).GetHandler()

	result, err := handler(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.Contains(t, errorText(t, result), "Invalid arguments")
}
