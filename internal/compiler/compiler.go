package compiler

import (
	"fmt"

	"github.com/rxtech-lab/recipes-mcp/internal/metrics"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
)

// Widget binding emitted for every compiled template: a wide custom deposit flow.
const (
	WidgetVariant       = "wide"
	WidgetSubvariant    = "custom"
	WidgetCustomDeposit = "deposit"
)

// Compile binds a template to an execution configuration. It returns nil, not an error, when
// there is nothing to execute: the template is informational or has no destination token.
// Identical input always yields an identical configuration.
func Compile(t *models.ActionTemplate) *models.ExecutionConfig {
	if t == nil || !t.IsExecutable() {
		metrics.CompilationsTotal.WithLabelValues("not_executable").Inc()
		return nil
	}

	config := &models.ExecutionConfig{
		Variant:           WidgetVariant,
		Subvariant:        WidgetSubvariant,
		SubvariantOptions: models.SubvariantOptions{Custom: WidgetCustomDeposit},
		DestinationChain:  t.ChainID,
		DestinationToken:  t.ToToken,
	}

	if t.FromDefaults != nil {
		sourceChain := t.FromDefaults.ChainID
		config.SourceChain = &sourceChain
		config.SourceToken = t.FromDefaults.Token
	}

	metrics.CompilationsTotal.WithLabelValues("compiled").Inc()
	return config
}

// MustCompile panics when an executable template cannot be compiled. That combination is
// rejected at load time, so reaching it means bad data slipped past validation.
func MustCompile(t *models.ActionTemplate) *models.ExecutionConfig {
	config := Compile(t)
	if config == nil && t != nil && t.Executable {
		panic(fmt.Sprintf("compiler: executable template %q has no toToken", t.ID))
	}
	return config
}

// WidgetConfig renders the configuration with the key names the swap widget expects.
func WidgetConfig(config *models.ExecutionConfig) map[string]any {
	if config == nil {
		return nil
	}

	widget := map[string]any{
		"variant":    config.Variant,
		"subvariant": config.Subvariant,
		"subvariantOptions": map[string]any{
			"custom": config.SubvariantOptions.Custom,
		},
		"toChain": config.DestinationChain,
		"toToken": config.DestinationToken,
	}
	if config.SourceChain != nil {
		widget["fromChain"] = *config.SourceChain
		widget["fromToken"] = config.SourceToken
	}
	return widget
}
