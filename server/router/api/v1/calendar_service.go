package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/server/auth"
	"github.com/hrygo/eidos/server/service/tracker"
)

// POST /api/v1/calendar/events
func (s *APIV1Service) CreateEvent(c echo.Context) error {
	input := &tracker.EventInput{}
	if err := bind(c, input); err != nil {
		return err
	}
	userID := auth.UserID(c)
	event, err := s.Tracker.CreateEvent(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.JSON(http.StatusCreated, tracker.NewEventResource(event))
}

// GET /api/v1/calendar/events?start=...&end=...
func (s *APIV1Service) ListEvents(c echo.Context) error {
	events, err := s.Tracker.ListEvents(c.Request().Context(), auth.UserID(c), c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return err
	}
	response := make([]*tracker.EventResource, 0, len(events))
	for _, e := range events {
		response = append(response, tracker.NewEventResource(e))
	}
	return c.JSON(http.StatusOK, response)
}

// PUT /api/v1/calendar/events/:id
func (s *APIV1Service) UpdateEvent(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	update := &tracker.EventUpdate{}
	if err := bind(c, update); err != nil {
		return err
	}
	userID := auth.UserID(c)
	event, err := s.Tracker.UpdateEvent(c.Request().Context(), userID, id, update)
	if err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.JSON(http.StatusOK, tracker.NewEventResource(event))
}

// DELETE /api/v1/calendar/events/:id
func (s *APIV1Service) DeleteEvent(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID := auth.UserID(c)
	if err := s.Tracker.DeleteEvent(c.Request().Context(), userID, id); err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.NoContent(http.StatusNoContent)
}
