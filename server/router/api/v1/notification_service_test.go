package v1

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications(t *testing.T) {
	s := newTestServer(t, nil)
	_, token := s.user("ann")
	_, bobToken := s.user("bob")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/notifications", token, CreateNotificationRequest{Message: "no title"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/notifications", token, CreateNotificationRequest{Title: "no message"}).Code)
	rec := s.do(http.MethodPost, "/notifications", token, CreateNotificationRequest{Title: "a", Message: "b", Priority: "loud"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "priority must be one of low, normal, high, critical", errorMessage(t, rec))

	rec = s.do(http.MethodPost, "/notifications", token, CreateNotificationRequest{Title: "Budget", Message: "Over budget", Priority: "high"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[NotificationResource](t, rec)
	assert.Equal(t, "high", first.Priority)
	assert.Nil(t, first.ModuleID)

	rec = s.do(http.MethodPost, "/notifications", token, CreateNotificationRequest{Title: "Sleep", Message: "Go to bed"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	second := decode[NotificationResource](t, rec)
	assert.Equal(t, "normal", second.Priority)

	list := decode[[]NotificationResource](t, s.do(http.MethodGet, "/notifications", token, nil))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Empty(t, decode[[]NotificationResource](t, s.do(http.MethodGet, "/notifications", bobToken, nil)))

	path := "/notifications/" + strconv.Itoa(int(first.ID))
	rec = s.do(http.MethodPut, path+"/read", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Notification not found", errorMessage(t, rec))

	require.Equal(t, http.StatusOK, s.do(http.MethodPut, path+"/read", token, nil).Code)
	unread := decode[[]NotificationResource](t, s.do(http.MethodGet, "/notifications?unread_only=true", token, nil))
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)

	rec = s.do(http.MethodPut, "/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode[map[string]any](t, rec)["count"])
	assert.Empty(t, decode[[]NotificationResource](t, s.do(http.MethodGet, "/notifications?unread_only=true", token, nil)))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, bobToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, token, nil).Code)
	assert.Len(t, decode[[]NotificationResource](t, s.do(http.MethodGet, "/notifications", token, nil)), 1)
}
