package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/server/auth"
	"github.com/hrygo/eidos/store"
)

type IssueTokenRequest struct {
	Username string `json:"username"`
}

type IssueTokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IssueToken mints an access token for an existing user by username. It is
// only served outside prod mode; production tokens come from `eidos token`.
// POST /api/v1/auth/token
func (s *APIV1Service) IssueToken(c echo.Context) error {
	if !s.Profile.IsDev() {
		return errors.NotFound("route")
	}
	req := &IssueTokenRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	if req.Username == "" {
		return errors.Validation("username is required")
	}
	user, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{Username: &req.Username})
	if err != nil {
		return errors.Store("failed to get user", err)
	}
	if user == nil {
		return errors.Unauthorized("unknown user")
	}
	token, err := s.Tokens.GenerateAccessToken(user.ID, auth.AccessTokenDuration)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, &IssueTokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(auth.AccessTokenDuration).UTC(),
	})
}
