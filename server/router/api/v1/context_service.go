package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/server/auth"
)

// GetContext returns the caller's assistant context, building it if stale.
// GET /api/v1/context
func (s *APIV1Service) GetContext(c echo.Context) error {
	uc, err := s.ContextCache.GetOrBuild(c.Request().Context(), auth.UserID(c), false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, uc)
}

// RefreshContext rebuilds the caller's context.
// POST /api/v1/context/refresh
func (s *APIV1Service) RefreshContext(c echo.Context) error {
	uc, err := s.ContextCache.GetOrBuild(c.Request().Context(), auth.UserID(c), true)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, uc)
}
