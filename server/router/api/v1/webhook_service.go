package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/server/service/tracker"
	"github.com/hrygo/eidos/store"
)

const (
	// WebhookActionCreateEvent adds a calendar event on behalf of a module.
	WebhookActionCreateEvent = "create_event"
	// WebhookActionNotify sends the user a notification.
	WebhookActionNotify = "notify"
	// WebhookActionStoreData merges a JSON object into the installation config.
	WebhookActionStoreData = "store_data"
)

// WebhookRequest is a callback from a module. Data depends on Action.
type WebhookRequest struct {
	UserID int32           `json:"user_id"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type notifyData struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// HandleWebhook authenticates a module by its API key and performs the
// requested action.
// POST /api/v1/webhook/:api_key
func (s *APIV1Service) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	apiKey := c.Param("api_key")
	module, err := s.Store.GetModule(ctx, &store.FindModule{APIKey: &apiKey})
	if err != nil {
		return errors.Store("failed to get module", err)
	}
	if module == nil {
		return errors.Unauthorized("Invalid module API key")
	}

	req := &WebhookRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	switch req.Action {
	case WebhookActionCreateEvent, WebhookActionNotify, WebhookActionStoreData:
	default:
		return errors.Validation("Unknown action: %s", req.Action)
	}

	installation, err := s.findUserModule(ctx, req.UserID, module.ID)
	if err != nil {
		return err
	}
	if installation == nil {
		return errModuleNotInstalled
	}

	var response *WebhookResponse
	switch req.Action {
	case WebhookActionCreateEvent:
		response, err = s.webhookCreateEvent(ctx, module, req)
	case WebhookActionNotify:
		response, err = s.webhookNotify(ctx, module, req)
	case WebhookActionStoreData:
		response, err = s.webhookStoreData(ctx, installation, req)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response)
}

func (s *APIV1Service) webhookCreateEvent(ctx context.Context, module *store.Module, req *WebhookRequest) (*WebhookResponse, error) {
	input := &tracker.EventInput{}
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, input); err != nil {
			return nil, errors.Validation("invalid event data")
		}
	}
	input.ModuleID = &module.ID
	event, err := s.Tracker.CreateEvent(ctx, req.UserID, input)
	if err != nil {
		return nil, err
	}
	s.ContextCache.Invalidate(req.UserID)
	return &WebhookResponse{
		Success: true,
		Message: "Event created",
		Data:    tracker.NewEventResource(event),
	}, nil
}

func (s *APIV1Service) webhookNotify(ctx context.Context, module *store.Module, req *WebhookRequest) (*WebhookResponse, error) {
	data := &notifyData{}
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, data); err != nil {
			return nil, errors.Validation("invalid notification data")
		}
	}
	if strings.TrimSpace(data.Message) == "" {
		return nil, errors.Validation("message is required")
	}
	if data.Title == "" {
		data.Title = module.Name
	}
	priority, err := parseNotificationPriority(data.Priority)
	if err != nil {
		return nil, err
	}
	notification, err := s.Store.CreateNotification(ctx, &store.Notification{
		UserID:   req.UserID,
		Title:    data.Title,
		Message:  data.Message,
		Priority: priority,
		ModuleID: &module.ID,
	})
	if err != nil {
		return nil, errors.Store("failed to create notification", err)
	}
	return &WebhookResponse{
		Success: true,
		Message: "Notification sent",
		Data:    convertNotification(notification),
	}, nil
}

func (s *APIV1Service) webhookStoreData(ctx context.Context, installation *store.UserModule, req *WebhookRequest) (*WebhookResponse, error) {
	data := map[string]any{}
	if err := json.Unmarshal(req.Data, &data); err != nil || data == nil {
		return nil, errors.Validation("data must be a JSON object")
	}
	config := map[string]any{}
	if installation.Config != "" {
		// An unparseable config is overwritten.
		_ = json.Unmarshal([]byte(installation.Config), &config)
		if config == nil {
			config = map[string]any{}
		}
	}
	for k, v := range data {
		config[k] = v
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, errors.Validation("data must be a JSON object")
	}
	encoded := string(raw)
	if _, err := s.Store.UpdateUserModule(ctx, &store.UpdateUserModule{
		UserID:   installation.UserID,
		ModuleID: installation.ModuleID,
		Config:   &encoded,
	}); err != nil {
		return nil, errors.Store("failed to store module data", err)
	}
	return &WebhookResponse{
		Success: true,
		Message: "Data stored",
		Data:    config,
	}, nil
}
