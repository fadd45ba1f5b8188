package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/recipes-mcp/internal/compiler"
	"github.com/rxtech-lab/recipes-mcp/internal/lifecycle"
	"github.com/rxtech-lab/recipes-mcp/internal/models"
	"github.com/rxtech-lab/recipes-mcp/internal/registry"
	"github.com/rxtech-lab/recipes-mcp/internal/telemetry"
	"github.com/rxtech-lab/recipes-mcp/internal/tools"
)

type listTemplatesQuery struct {
	Status            string `query:"status" validate:"omitempty,oneof=active deprecated demo-only"`
	Category          string `query:"category" validate:"omitempty,oneof=Lending Staking Vault"`
	ChainID           uint64 `query:"chain_id"`
	ExcludeDeprecated bool   `query:"exclude_deprecated"`
}

type simulationQuery struct {
	SimulateDeprecation bool `query:"simulate_deprecation"`
}

func (s *APIServer) handleListTemplates(c *fiber.Ctx) error {
	var query listTemplatesQuery
	if err := s.parseQuery(c, &query); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	templates := s.services.Registry.Snapshot().List(registry.Filter{
		Status:            models.TemplateStatus(query.Status),
		Category:          models.Category(query.Category),
		ChainID:           query.ChainID,
		ExcludeDeprecated: query.ExcludeDeprecated,
	})
	return c.JSON(fiber.Map{
		"templates": templates,
		"count":     len(templates),
		"version":   s.services.Registry.Version(),
	})
}

// lookup resolves the :id template, honouring the simulate_deprecation query flag.
func (s *APIServer) lookup(c *fiber.Ctx) (lifecycle.Resolution, error) {
	var query simulationQuery
	if err := s.parseQuery(c, &query); err != nil {
		return lifecycle.Resolution{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if query.SimulateDeprecation && !s.services.Config.Templates.AllowDeprecationSimulation {
		return lifecycle.Resolution{}, fiber.NewError(fiber.StatusForbidden, "simulate_deprecation is disabled on this server")
	}

	id := c.Params("id")
	resolution, ok := s.resolver().Lookup(id, lifecycle.Overrides{ForceDeprecated: query.SimulateDeprecation})
	if !ok {
		return lifecycle.Resolution{}, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("template not found: %s", id))
	}
	return resolution, nil
}

func (s *APIServer) handleGetTemplate(c *fiber.Ctx) error {
	resolution, err := s.lookup(c)
	if err != nil {
		return fiberError(c, err)
	}
	return c.JSON(tools.ViewActionTemplateResult{
		Template:            resolution.Template,
		EffectiveStatus:     resolution.EffectiveStatus,
		Usability:           resolution.Usability,
		Simulated:           resolution.Simulated,
		Replacement:         resolution.Replacement,
		DanglingReplacement: resolution.DanglingReplacement,
	})
}

func (s *APIServer) handleCompileTemplate(c *fiber.Ctx) error {
	id := c.Params("id")
	template, ok := s.services.Registry.Snapshot().GetByID(id)
	if !ok {
		return errorResponse(c, fiber.StatusNotFound, fmt.Sprintf("template not found: %s", id))
	}

	config := compiler.Compile(template)
	if config == nil {
		return c.JSON(tools.CompileActionTemplateResult{TemplateID: template.ID})
	}

	s.services.Tracker.Track(c.UserContext(), telemetry.EventTemplateCompiled, telemetry.Payload{
		"id":               template.ID,
		"destinationChain": config.DestinationChain,
		"destinationToken": config.DestinationToken,
	})
	return c.JSON(tools.CompileActionTemplateResult{
		TemplateID:   template.ID,
		Compiled:     true,
		Config:       config,
		WidgetConfig: compiler.WidgetConfig(config),
	})
}

func (s *APIServer) handleResolveReplacement(c *fiber.Ctx) error {
	resolution, err := s.lookup(c)
	if err != nil {
		return fiberError(c, err)
	}

	template := resolution.Template
	if resolution.DanglingReplacement {
		s.services.Tracker.Track(c.UserContext(), telemetry.EventReplacementDangling, telemetry.Payload{
			"id":            template.ID,
			"replacementId": template.ReplacementID,
		})
	}

	return c.JSON(tools.ResolveReplacementResult{
		TemplateID:      template.ID,
		EffectiveStatus: resolution.EffectiveStatus,
		ReplacementID:   template.ReplacementID,
		Found:           resolution.Replacement != nil,
		CanSupersede:    resolution.CanSupersede(),
		Replacement:     resolution.Replacement,
	})
}
