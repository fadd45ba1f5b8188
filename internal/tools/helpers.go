package tools

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rxtech-lab/recipes-mcp/internal/lifecycle"
	"github.com/rxtech-lab/recipes-mcp/internal/registry"
	"github.com/rxtech-lab/recipes-mcp/internal/telemetry"
)

// Deps are the collaborators every template tool reads from.
type Deps struct {
	Registry *registry.Registry
	Tracker  telemetry.Tracker
	// AllowDeprecationSimulation gates the simulate_deprecation argument.
	AllowDeprecationSimulation bool
}

func (d Deps) resolver() *lifecycle.Resolver {
	return lifecycle.NewResolver(d.Registry)
}

var argsValidator = validator.New()

// bindArguments binds and validates tool arguments. A nil result with a nil error means the
// arguments are usable; a non-nil result is the user-facing error to return.
func bindArguments(request mcp.CallToolRequest, args any) (*mcp.CallToolResult, error) {
	if err := request.BindArguments(args); err != nil {
		return nil, fmt.Errorf("failed to bind arguments: %w", err)
	}
	if err := argsValidator.Struct(args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}
	return nil, nil
}

func jsonResult(message string, result any) *mcp.CallToolResult {
	resultJSON, _ := json.Marshal(result)
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message + ": "),
			mcp.NewTextContent(string(resultJSON)),
		},
	}
}
