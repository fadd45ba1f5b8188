package api

import (
	"github.com/gofiber/fiber/v2"
)

type selectTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

type toggleDeprecationRequest struct {
	Enabled bool `json:"enabled"`
}

type configureRequest struct {
	Amount string `json:"amount" validate:"required"`
}

func (s *APIServer) handleStartSession(c *fiber.Ctx) error {
	session, err := s.services.SessionService.Start(c.UserContext())
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (s *APIServer) handleGetSession(c *fiber.Ctx) error {
	session, err := s.services.SessionService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(session)
}

func (s *APIServer) handleSelectTemplate(c *fiber.Ctx) error {
	var req selectTemplateRequest
	if err := s.parseBody(c, &req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := s.services.SessionService.Select(c.UserContext(), c.Params("id"), req.TemplateID)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(session)
}

func (s *APIServer) handleToggleDeprecation(c *fiber.Ctx) error {
	var req toggleDeprecationRequest
	if err := s.parseBody(c, &req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := s.services.SessionService.ToggleDeprecation(c.UserContext(), c.Params("id"), req.Enabled)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(session)
}

func (s *APIServer) handleUseReplacement(c *fiber.Ctx) error {
	session, err := s.services.SessionService.UseReplacement(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(session)
}

func (s *APIServer) handleConfigure(c *fiber.Ctx) error {
	var req configureRequest
	if err := s.parseBody(c, &req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := s.services.SessionService.Configure(c.UserContext(), c.Params("id"), req.Amount)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(session)
}

func (s *APIServer) handleReview(c *fiber.Ctx) error {
	review, err := s.services.SessionService.Review(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(review)
}

// handleExecute runs the reviewed action. A failed execution is a normal outcome and comes
// back as 200 with the failure copy on the session.
func (s *APIServer) handleExecute(c *fiber.Ctx) error {
	session, err := s.services.SessionService.Execute(c.UserContext(), c.Params("id"), s.services.Engine)
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(session)
}
