package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/server/auth"
	"github.com/hrygo/eidos/store"
)

type CreateNotificationRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority,omitempty"`
}

type NotificationResource struct {
	ID        int32     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	Read      bool      `json:"is_read"`
	ModuleID  *int32    `json:"module_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func convertNotification(n *store.Notification) *NotificationResource {
	return &NotificationResource{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Priority:  string(n.Priority),
		Read:      n.Read,
		ModuleID:  n.ModuleID,
		CreatedAt: time.Unix(n.CreatedTs, 0).UTC(),
	}
}

// parseNotificationPriority defaults an empty priority to normal.
func parseNotificationPriority(raw string) (store.NotificationPriority, error) {
	if raw == "" {
		return store.NotificationPriorityNormal, nil
	}
	switch p := store.NotificationPriority(raw); p {
	case store.NotificationPriorityLow, store.NotificationPriorityNormal,
		store.NotificationPriorityHigh, store.NotificationPriorityCritical:
		return p, nil
	default:
		return "", errors.Validation("priority must be one of low, normal, high, critical")
	}
}

var errNotificationNotFound = errors.NotFound("Notification")

// GET /api/v1/notifications?unread_only=true
func (s *APIV1Service) ListNotifications(c echo.Context) error {
	userID := auth.UserID(c)
	find := &store.FindNotification{UserID: &userID}
	if unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread_only")); unreadOnly {
		read := false
		find.Read = &read
	}
	list, err := s.Store.ListNotifications(c.Request().Context(), find)
	if err != nil {
		return errors.Store("failed to list notifications", err)
	}
	response := make([]*NotificationResource, 0, len(list))
	for _, n := range list {
		response = append(response, convertNotification(n))
	}
	return c.JSON(http.StatusOK, response)
}

// POST /api/v1/notifications
func (s *APIV1Service) CreateNotification(c echo.Context) error {
	req := &CreateNotificationRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Title) == "" {
		return errors.Validation("title is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return errors.Validation("message is required")
	}
	priority, err := parseNotificationPriority(req.Priority)
	if err != nil {
		return err
	}
	notification, err := s.Store.CreateNotification(c.Request().Context(), &store.Notification{
		UserID:   auth.UserID(c),
		Title:    req.Title,
		Message:  req.Message,
		Priority: priority,
	})
	if err != nil {
		return errors.Store("failed to create notification", err)
	}
	return c.JSON(http.StatusCreated, convertNotification(notification))
}

// PUT /api/v1/notifications/:id/read
func (s *APIV1Service) MarkNotificationRead(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	existing, err := s.Store.GetNotification(ctx, &store.FindNotification{ID: &id, UserID: &userID})
	if err != nil {
		return errors.Store("failed to get notification", err)
	}
	if existing == nil {
		return errNotificationNotFound
	}
	if _, err := s.Store.UpdateNotifications(ctx, &store.UpdateNotification{UserID: userID, ID: &id, Read: true}); err != nil {
		return errors.Store("failed to update notification", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// PUT /api/v1/notifications/read-all
func (s *APIV1Service) MarkAllNotificationsRead(c echo.Context) error {
	count, err := s.Store.UpdateNotifications(c.Request().Context(), &store.UpdateNotification{UserID: auth.UserID(c), Read: true})
	if err != nil {
		return errors.Store("failed to update notifications", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "count": count})
}

// DELETE /api/v1/notifications/:id
func (s *APIV1Service) DeleteNotification(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := auth.UserID(c)

	existing, err := s.Store.GetNotification(ctx, &store.FindNotification{ID: &id, UserID: &userID})
	if err != nil {
		return errors.Store("failed to get notification", err)
	}
	if existing == nil {
		return errNotificationNotFound
	}
	if err := s.Store.DeleteNotification(ctx, &store.DeleteNotification{ID: id, UserID: userID}); err != nil {
		return errors.Store("failed to delete notification", err)
	}
	return c.NoContent(http.StatusNoContent)
}
