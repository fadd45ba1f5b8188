package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/recipes-mcp/internal/services"
	"github.com/rxtech-lab/recipes-mcp/internal/telemetry"
)

type trackEventRequest struct {
	Event     string            `json:"event" validate:"required"`
	SessionID string            `json:"session_id"`
	Props     telemetry.Payload `json:"props"`
}

type listEventsQuery struct {
	Name      string `query:"name"`
	SessionID string `query:"session_id"`
	Limit     int    `query:"limit" validate:"gte=0,lte=1000"`
}

// handleTrackEvent records events raised by the client, such as copy_snippet_clicked.
func (s *APIServer) handleTrackEvent(c *fiber.Ctx) error {
	var req trackEventRequest
	if err := s.parseBody(c, &req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	name, err := telemetry.ParseEventName(req.Event)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	event := s.services.Tracker.TrackForSession(c.UserContext(), req.SessionID, name, req.Props)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": event.ID})
}

func (s *APIServer) handleListEvents(c *fiber.Ctx) error {
	var query listEventsQuery
	if err := s.parseQuery(c, &query); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	events, err := s.services.TelemetryService.ListEvents(services.EventFilter{
		Name:      query.Name,
		SessionID: query.SessionID,
		Limit:     query.Limit,
	})
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}
