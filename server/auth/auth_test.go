package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/internal/errors"
)

func TestTokenService_AccessToken(t *testing.T) {
	s := NewTokenService("secret")

	token, err := s.GenerateAccessToken(42, 0)
	require.NoError(t, err)
	id, err := s.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(42), id)

	_, err = NewTokenService("other").ParseAccessToken(token)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))

	_, err = s.ParseModuleToken(token)
	assert.Error(t, err, "audiences are not interchangeable")
}

func TestTokenService_ModuleTokenExpires(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s := NewTokenService("secret")
	s.now = func() time.Time { return now }

	token, err := s.SignModuleToken(7)
	require.NoError(t, err)
	id, err := s.ParseModuleToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(7), id)

	now = now.Add(ModuleTokenDuration + time.Second)
	_, err = s.ParseModuleToken(token)
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearerToken("bearer  abc "))
	assert.Empty(t, ExtractBearerToken("Basic abc"))
	assert.Empty(t, ExtractBearerToken(""))
}

func TestMiddleware(t *testing.T) {
	s := NewTokenService("secret")
	e := echo.New()
	handler := Middleware(s, func(c echo.Context) bool {
		return c.Request().URL.Path == "/public"
	})(func(c echo.Context) error {
		assert.Equal(t, UserID(c), GetUserID(c.Request().Context()))
		return c.String(http.StatusOK, "ok")
	})

	serve := func(path, header string) error {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	assert.NoError(t, serve("/public", ""))

	err := serve("/private", "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))

	err = serve("/private", "Bearer garbage")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))

	token, err := s.GenerateAccessToken(3, time.Hour)
	require.NoError(t, err)
	assert.NoError(t, serve("/private", "Bearer "+token))
}
