package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/hrygo/eidos/internal/errors"
)

func TestRateLimiter_Burst(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(time.Second, 2)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1"))
	assert.True(t, rl.Allow("1"))
	assert.False(t, rl.Allow("1"))
	assert.True(t, rl.Allow("2"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("1"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(0, 0)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(time.Hour)
	rl.Allow("fresh")

	assert.Equal(t, 1, rl.Cleanup(30*time.Minute))
	assert.Len(t, rl.limits, 1)
}

func TestPerUser(t *testing.T) {
	rl := NewRateLimiter(time.Hour, 1)
	e := echo.New()
	user := int32(5)
	handler := PerUser(rl, func(echo.Context) int32 { return user })(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	serve := func() error {
		return handler(e.NewContext(httptest.NewRequest(http.MethodPost, "/chat", nil), httptest.NewRecorder()))
	}

	assert.NoError(t, serve())
	assert.True(t, errors.IsCode(serve(), errors.ErrCodeRateLimitExceeded))

	user = 0
	assert.NoError(t, serve())
	assert.NoError(t, serve())
}
