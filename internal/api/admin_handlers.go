package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/recipes-mcp/internal/loader"
	"go.uber.org/zap"
)

// handleReload re-reads the configured source. A rejected dataset leaves the current
// snapshot in place.
func (s *APIServer) handleReload(c *fiber.Ctx) error {
	if err := s.services.Loader.Load(c.UserContext()); err != nil {
		s.logger.Warn("reload rejected", zap.Error(err))
		return errorResponse(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return s.registryStatus(c)
}

// handlePublishTemplates replaces the stored dataset and reloads from it. Only servers that
// serve templates from the database accept a publish.
func (s *APIServer) handlePublishTemplates(c *fiber.Ctx) error {
	if _, ok := s.services.Loader.Source().(*loader.DBSource); !ok {
		return errorResponse(c, fiber.StatusConflict, "templates are not served from the database")
	}

	templates, err := loader.DecodeJSON(c.Body())
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if err := s.services.TemplateService.ReplaceAll(templates); err != nil {
		return errorResponse(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if err := s.services.Loader.Load(c.UserContext()); err != nil {
		return errorResponse(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return s.registryStatus(c)
}

func (s *APIServer) registryStatus(c *fiber.Ctx) error {
	reg := s.services.Registry
	return c.JSON(fiber.Map{
		"version":   reg.Version(),
		"templates": reg.Snapshot().Len(),
	})
}
