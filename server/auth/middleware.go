package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/internal/errors"
)

type contextKey int

// UserIDContextKey is the context key for the authenticated user id.
const UserIDContextKey contextKey = iota

const echoUserIDKey = "auth.user_id"

// ExtractBearerToken returns the token of an "Authorization: Bearer" header.
func ExtractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware rejects requests without a valid access token, except those
// for which skip returns true. skip may be nil.
func Middleware(tokens *TokenService, skip func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}
			token := ExtractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return errors.Unauthorized("authentication required")
			}
			userID, err := tokens.ParseAccessToken(token)
			if err != nil {
				return err
			}
			c.Set(echoUserIDKey, userID)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), UserIDContextKey, userID)))
			return next(c)
		}
	}
}

// UserID returns the authenticated user id of the request, or 0.
func UserID(c echo.Context) int32 {
	id, _ := c.Get(echoUserIDKey).(int32)
	return id
}

// GetUserID returns the authenticated user id carried by ctx, or 0.
func GetUserID(ctx context.Context) int32 {
	id, _ := ctx.Value(UserIDContextKey).(int32)
	return id
}
