package v1

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/internal/observability"
	"github.com/hrygo/eidos/plugin/ai"
	"github.com/hrygo/eidos/plugin/ai/agent"
	"github.com/hrygo/eidos/plugin/ai/agent/tools"
	aicontext "github.com/hrygo/eidos/plugin/ai/context"
	"github.com/hrygo/eidos/plugin/manifest"
	"github.com/hrygo/eidos/server/auth"
	"github.com/hrygo/eidos/store"
)

// titleLength is the number of characters of the first message kept as the
// conversation title.
const titleLength = 50

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ChatMessageResource struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatResponse struct {
	ConversationID string               `json:"conversation_id"`
	Message        *ChatMessageResource `json:"message"`
}

type ConversationResource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastMessage string    `json:"last_message,omitempty"`
}

func convertChatMessage(m *store.ChatMessage) *ChatMessageResource {
	return &ChatMessageResource{
		ID:        m.UID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: time.Unix(m.CreatedTs, 0).UTC(),
	}
}

// HandleChat runs one assistant turn.
// POST /api/v1/chat
func (s *APIV1Service) HandleChat(c echo.Context) error {
	req := &ChatRequest{}
	if err := bind(c, req); err != nil {
		return err
	}
	resp, err := s.Chat(c.Request().Context(), auth.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Chat appends the user's message to a conversation, lets the agent answer
// and persists the answer.
func (s *APIV1Service) Chat(ctx context.Context, userID int32, req *ChatRequest) (*ChatResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, errors.Validation("message is required")
	}
	if s.Agent == nil {
		return nil, errors.LLMUnavailable("AI assistant is not configured", nil)
	}

	reqCtx := observability.NewRequestContext(slog.Default(), userID)
	ctx = observability.WithRequestContext(ctx, reqCtx)

	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return nil, errors.Store("failed to get user", err)
	}
	if user == nil {
		return nil, errors.Unauthorized("user not found")
	}

	conversation, err := s.findOrCreateConversation(ctx, userID, req.ConversationID, text)
	if err != nil {
		return nil, err
	}

	limit := s.Profile.ChatHistoryLimit
	history, err := s.Store.ListChatMessages(ctx, &store.FindChatMessage{
		ConversationID: &conversation.ID,
		Limit:          &limit,
	})
	if err != nil {
		return nil, errors.Store("failed to load chat history", err)
	}

	if _, err := s.Store.CreateChatMessage(ctx, &store.ChatMessage{
		UID:            shortuuid.New(),
		ConversationID: conversation.ID,
		Role:           store.ChatMessageRoleUser,
		Content:        text,
	}); err != nil {
		return nil, errors.Store("failed to save message", err)
	}

	list, err := s.Catalog.Tools(ctx, userID)
	if err != nil {
		return nil, err
	}
	systemPrompt, err := s.systemPrompt(ctx, user, list)
	if err != nil {
		return nil, err
	}

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.SystemPrompt(systemPrompt))
	for _, m := range history {
		if m.Role == store.ChatMessageRoleAssistant {
			messages = append(messages, ai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, ai.UserMessage(m.Content))
		}
	}
	messages = append(messages, ai.UserMessage(text))

	toolset := tools.NewToolset(user, list, s.Builtin, s.External, s.Metrics)
	answer, err := s.Agent.Run(ctx, messages, toolset.Descriptors(), toolset)
	if err != nil {
		return nil, err
	}

	reply, err := s.Store.CreateChatMessage(ctx, &store.ChatMessage{
		UID:            shortuuid.New(),
		ConversationID: conversation.ID,
		Role:           store.ChatMessageRoleAssistant,
		Content:        answer,
	})
	if err != nil {
		return nil, errors.Store("failed to save reply", err)
	}
	updatedTs := time.Now().Unix()
	if _, err := s.Store.UpdateConversation(ctx, &store.UpdateConversation{
		ID:        conversation.ID,
		UpdatedTs: &updatedTs,
	}); err != nil {
		reqCtx.Warn("failed to touch conversation", slog.String("error", err.Error()))
	}

	reqCtx.Info("chat turn completed",
		slog.String(observability.LogFieldConversationID, conversation.UID),
		slog.Int(observability.LogFieldMessageLen, len(answer)),
	)
	return &ChatResponse{
		ConversationID: conversation.UID,
		Message:        convertChatMessage(reply),
	}, nil
}

func (s *APIV1Service) findOrCreateConversation(ctx context.Context, userID int32, uid, firstMessage string) (*store.Conversation, error) {
	if uid != "" {
		return s.getConversation(ctx, userID, uid)
	}
	conversation, err := s.Store.CreateConversation(ctx, &store.Conversation{
		UID:    shortuuid.New(),
		UserID: userID,
		Title:  conversationTitle(firstMessage),
	})
	if err != nil {
		return nil, errors.Store("failed to create conversation", err)
	}
	return conversation, nil
}

func (s *APIV1Service) getConversation(ctx context.Context, userID int32, uid string) (*store.Conversation, error) {
	conversation, err := s.Store.GetConversation(ctx, &store.FindConversation{UID: &uid, UserID: &userID})
	if err != nil {
		return nil, errors.Store("failed to get conversation", err)
	}
	if conversation == nil {
		return nil, errors.NotFound("Conversation")
	}
	return conversation, nil
}

// conversationTitle keeps the first titleLength characters of the message.
func conversationTitle(message string) string {
	if utf8.RuneCountInString(message) <= titleLength {
		return message
	}
	return string([]rune(message)[:titleLength]) + "..."
}

// systemPrompt renders the persona, the user's context and their modules.
// A context that cannot be built is left out rather than failing the turn.
func (s *APIV1Service) systemPrompt(ctx context.Context, user *store.User, list []*tools.Descriptor) (string, error) {
	var contextBlock string
	uc, err := s.ContextCache.GetOrBuild(ctx, user.ID, false)
	if err != nil {
		observability.FromContextOrNew(ctx, user.ID).Warn("user context unavailable",
			slog.String("error", err.Error()))
	} else {
		contextBlock = aicontext.Prompt(uc)
	}

	installed, err := s.Store.ListInstalledModules(ctx, user.ID, true)
	if err != nil {
		return "", errors.Store("failed to list modules", err)
	}
	modules := make([]agent.PromptModule, 0, len(installed))
	for _, m := range installed {
		description := m.Module.Description
		if parsed, err := manifest.ParseJSON(m.Module.Manifest); err == nil && parsed.Description != "" {
			description = parsed.Description
		}
		modules = append(modules, agent.PromptModule{Name: m.Module.Name, Description: description})
	}

	name := user.Nickname
	if name == "" {
		name = user.Username
	}
	return agent.BuildSystemPrompt(&agent.PromptInput{
		UserName: name,
		Context:  contextBlock,
		Modules:  modules,
		Tools:    list,
		Now:      time.Now(),
	}), nil
}

// ListConversations returns the caller's conversations, most recent first.
// GET /api/v1/chat/conversations
func (s *APIV1Service) ListConversations(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserID(c)
	conversations, err := s.Store.ListConversations(ctx, &store.FindConversation{UserID: &userID})
	if err != nil {
		return errors.Store("failed to list conversations", err)
	}

	one := 1
	response := make([]*ConversationResource, 0, len(conversations))
	for _, conversation := range conversations {
		resource := &ConversationResource{
			ID:        conversation.UID,
			Title:     conversation.Title,
			CreatedAt: time.Unix(conversation.CreatedTs, 0).UTC(),
			UpdatedAt: time.Unix(conversation.UpdatedTs, 0).UTC(),
		}
		last, err := s.Store.ListChatMessages(ctx, &store.FindChatMessage{ConversationID: &conversation.ID, Limit: &one})
		if err != nil {
			return errors.Store("failed to load last message", err)
		}
		if len(last) > 0 {
			resource.LastMessage = last[0].Content
		}
		response = append(response, resource)
	}
	return c.JSON(http.StatusOK, response)
}

// ListConversationMessages returns a conversation's messages in order.
// GET /api/v1/chat/conversations/:id/messages
func (s *APIV1Service) ListConversationMessages(c echo.Context) error {
	ctx := c.Request().Context()
	conversation, err := s.getConversation(ctx, auth.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	messages, err := s.Store.ListChatMessages(ctx, &store.FindChatMessage{ConversationID: &conversation.ID})
	if err != nil {
		return errors.Store("failed to list messages", err)
	}
	response := make([]*ChatMessageResource, 0, len(messages))
	for _, m := range messages {
		response = append(response, convertChatMessage(m))
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteConversation removes a conversation and its messages.
// DELETE /api/v1/chat/conversations/:id
func (s *APIV1Service) DeleteConversation(c echo.Context) error {
	ctx := c.Request().Context()
	conversation, err := s.getConversation(ctx, auth.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}
	if err := s.Store.DeleteConversation(ctx, &store.DeleteConversation{ID: conversation.ID}); err != nil {
		return errors.Store("failed to delete conversation", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
