package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/recipes-mcp/internal/lifecycle"
	"github.com/rxtech-lab/recipes-mcp/internal/registry"
	"github.com/rxtech-lab/recipes-mcp/internal/services"
	"go.uber.org/zap"
)

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError maps session and registry errors to a status code. Unknown errors are logged
// and reported without their detail.
func (s *APIServer) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, registry.ErrTemplateNotFound):
		return errorResponse(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSessionExpired):
		return errorResponse(c, fiber.StatusGone, err.Error())
	case errors.Is(err, services.ErrSimulationDisabled):
		return errorResponse(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidStep),
		errors.Is(err, services.ErrNoTemplateSelected),
		errors.Is(err, services.ErrNoReplacement),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		return errorResponse(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrNotExecutable):
		return errorResponse(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return errorResponse(c, fiber.StatusInternalServerError, "internal server error")
	}
}

// parseBody decodes and validates a JSON body. The error is safe to show to the caller.
func (s *APIServer) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := s.validate.Struct(out); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// parseQuery decodes and validates query parameters.
func (s *APIServer) parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	if err := s.validate.Struct(out); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	return nil
}

// fiberError writes a *fiber.Error as a JSON error body.
func fiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return errorResponse(c, fe.Code, fe.Message)
	}
	return errorResponse(c, fiber.StatusInternalServerError, err.Error())
}
