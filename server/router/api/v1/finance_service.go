package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/server/auth"
	"github.com/hrygo/eidos/server/service/tracker"
)

// POST /api/v1/finance/transactions
func (s *APIV1Service) CreateTransaction(c echo.Context) error {
	input := &tracker.TransactionInput{}
	if err := bind(c, input); err != nil {
		return err
	}
	userID := auth.UserID(c)
	tx, err := s.Tracker.CreateTransaction(c.Request().Context(), userID, input)
	if err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.JSON(http.StatusCreated, tracker.NewTransactionResource(tx))
}

// GET /api/v1/finance/transactions?type=expense&limit=N
func (s *APIV1Service) ListTransactions(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	list, err := s.Tracker.ListTransactions(c.Request().Context(), auth.UserID(c), c.QueryParam("type"), limit)
	if err != nil {
		return err
	}
	response := make([]*tracker.TransactionResource, 0, len(list))
	for _, t := range list {
		response = append(response, tracker.NewTransactionResource(t))
	}
	return c.JSON(http.StatusOK, response)
}

// DELETE /api/v1/finance/transactions/:id
func (s *APIV1Service) DeleteTransaction(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	userID := auth.UserID(c)
	if err := s.Tracker.DeleteTransaction(c.Request().Context(), userID, id); err != nil {
		return err
	}
	s.ContextCache.Invalidate(userID)
	return c.NoContent(http.StatusNoContent)
}

// GET /api/v1/finance/stats
func (s *APIV1Service) GetFinanceStats(c echo.Context) error {
	stats, err := s.Tracker.FinanceStats(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
