package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/server/auth"
	"github.com/hrygo/eidos/server/service/tracker"
)

// POST /api/v1/sleep/records
func (s *APIV1Service) CreateSleepRecord(c echo.Context) error {
	input := &tracker.SleepInput{}
	if err := bind(c, input); err != nil {
		return err
	}
	userID := auth.UserID(c)
	record, err := s.Tracker.CreateSleepRecord(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.JSON(http.StatusCreated, tracker.NewSleepRecordResource(record))
}

// GET /api/v1/sleep/records?limit=N
func (s *APIV1Service) ListSleepRecords(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	records, err := s.Tracker.ListSleepRecords(c.Request().Context(), auth.UserID(c), limit)
	if err != nil {
		return err
	}
	response := make([]*tracker.SleepRecordResource, 0, len(records))
	for _, r := range records {
		response = append(response, tracker.NewSleepRecordResource(r))
	}
	return c.JSON(http.StatusOK, response)
}

// DELETE /api/v1/sleep/records/:id
func (s *APIV1Service) DeleteSleepRecord(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID := auth.UserID(c)
	if err := s.Tracker.DeleteSleepRecord(c.Request().Context(), userID, id); err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.NoContent(http.StatusNoContent)
}

// GET /api/v1/sleep/stats
func (s *APIV1Service) GetSleepStats(c echo.Context) error {
	stats, err := s.Tracker.SleepStats(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
