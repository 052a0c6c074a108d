package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/store"
)

func TestConversationStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user, err := CreateTestingUser(ctx, ts, "talker")
	require.NoError(t, err)

	conversation, err := ts.CreateConversation(ctx, &store.Conversation{
		UID:    shortuuid.New(),
		UserID: user.ID,
		Title:  "Hello",
	})
	require.NoError(t, err)

	base := time.Now().Unix() - 100
	for i := 0; i < 5; i++ {
		role := store.ChatMessageRoleUser
		if i%2 == 1 {
			role = store.ChatMessageRoleAssistant
		}
		_, err := ts.CreateChatMessage(ctx, &store.ChatMessage{
			UID:            shortuuid.New(),
			ConversationID: conversation.ID,
			Role:           role,
			Content:        fmt.Sprintf("message %d", i),
			CreatedTs:      base + int64(i),
		})
		require.NoError(t, err)
	}

	limit := 3
	recent, err := ts.ListChatMessages(ctx, &store.FindChatMessage{ConversationID: &conversation.ID, Limit: &limit})
	require.NoError(t, err)
	require.Len(t, recent, 3)
	require.Equal(t, "message 2", recent[0].Content, "limit keeps the newest messages")
	require.Equal(t, "message 4", recent[2].Content, "result stays chronological")

	byUser, err := ts.ListChatMessages(ctx, &store.FindChatMessage{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, byUser, 5)

	title := "Renamed"
	updatedTs := time.Now().Unix()
	updated, err := ts.UpdateConversation(ctx, &store.UpdateConversation{ID: conversation.ID, Title: &title, UpdatedTs: &updatedTs})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)

	found, err := ts.GetConversation(ctx, &store.FindConversation{UID: &conversation.UID})
	require.NoError(t, err)
	require.Equal(t, conversation.ID, found.ID)

	require.NoError(t, ts.DeleteConversation(ctx, &store.DeleteConversation{ID: conversation.ID}))
	messages, err := ts.ListChatMessages(ctx, &store.FindChatMessage{ConversationID: &conversation.ID})
	require.NoError(t, err)
	require.Empty(t, messages)
}
