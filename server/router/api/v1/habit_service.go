package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/server/auth"
	"github.com/hrygo/eidos/server/service/tracker"
)

type CompleteHabitRequest struct {
	Notes string `json:"notes,omitempty"`
}

// POST /api/v1/habits
func (s *APIV1Service) CreateHabit(c echo.Context) error {
	input := &tracker.HabitInput{}
	if err := bind(c, input); err != nil {
		return err
	}
	userID := auth.UserID(c)
	habit, err := s.Tracker.CreateHabit(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.JSON(http.StatusCreated, tracker.NewHabitResource(habit))
}

// GET /api/v1/habits?active_only=true
func (s *APIV1Service) ListHabits(c echo.Context) error {
	activeOnly, _ := strconv.ParseBool(c.QueryParam("active_only"))
	habits, err := s.Tracker.ListHabits(c.Request().Context(), auth.UserID(c), activeOnly)
	if err != nil {
		return err
	}
	response := make([]*tracker.HabitResource, 0, len(habits))
	for _, h := range habits {
		response = append(response, tracker.NewHabitViewResource(h))
	}
	return c.JSON(http.StatusOK, response)
}

// GET /api/v1/habits/:id
func (s *APIV1Service) GetHabit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	habit, err := s.Tracker.GetHabit(c.Request().Context(), auth.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tracker.NewHabitViewResource(habit))
}

// PUT /api/v1/habits/:id
func (s *APIV1Service) UpdateHabit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	update := &tracker.HabitUpdate{}
	if err := bind(c, update); err != nil {
		return err
	}
	userID := auth.UserID(c)
	habit, err := s.Tracker.UpdateHabit(c.Request().Context(), userID, id, update)
	if err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.JSON(http.StatusOK, tracker.NewHabitResource(habit))
}

// DELETE /api/v1/habits/:id
func (s *APIV1Service) DeleteHabit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID := auth.UserID(c)
	if err := s.Tracker.DeleteHabit(c.Request().Context(), userID, id); err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.NoContent(http.StatusNoContent)
}

// CompleteHabit logs one completion. The body is optional.
// POST /api/v1/habits/:id/complete
func (s *APIV1Service) CompleteHabit(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req := &CompleteHabitRequest{}
	if c.Request().ContentLength > 0 {
		if err := bind(c, req); err != nil {
			return err
		}
	}
	userID := auth.UserID(c)
	log, err := s.Tracker.LogHabit(c.Request().Context(), userID, id, req.Notes)
	if err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.JSON(http.StatusCreated, tracker.NewHabitLogResource(log))
}

// GET /api/v1/habits/:id/logs
func (s *APIV1Service) ListHabitLogs(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	logs, err := s.Tracker.ListHabitLogs(c.Request().Context(), auth.UserID(c), id)
	if err != nil {
		return err
	}
	response := make([]*tracker.HabitLogResource, 0, len(logs))
	for _, l := range logs {
		response = append(response, tracker.NewHabitLogResource(l))
	}
	return c.JSON(http.StatusOK, response)
}

// GET /api/v1/habits/stats/overview
func (s *APIV1Service) GetHabitStats(c echo.Context) error {
	stats, err := s.Tracker.HabitStats(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
