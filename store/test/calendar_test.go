package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/store"
)

func TestCalendarEventStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user, err := CreateTestingUser(ctx, ts, "planner")
	require.NoError(t, err)

	start := time.Now().Add(time.Hour).Unix()
	end := start + 1800
	reminder := int32(15)
	event, err := ts.CreateCalendarEvent(ctx, &store.CalendarEvent{
		UserID:          user.ID,
		Title:           "Standup meeting",
		StartTs:         start,
		EndTs:           &end,
		ReminderMinutes: &reminder,
	})
	require.NoError(t, err)
	require.Equal(t, store.DefaultEventColor, event.Color)

	_, err = ts.CreateCalendarEvent(ctx, &store.CalendarEvent{
		UserID:  user.ID,
		Title:   "Gym",
		StartTs: start - 7200,
		AllDay:  true,
	})
	require.NoError(t, err)

	list, err := ts.ListCalendarEvents(ctx, &store.FindCalendarEvent{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Gym", list[0].Title, "ordered by start time")
	require.Nil(t, list[0].EndTs)
	require.Nil(t, list[0].ModuleID)
	require.True(t, list[0].AllDay)
	require.NotNil(t, list[1].EndTs)
	require.Equal(t, end, *list[1].EndTs)
	require.Equal(t, reminder, *list[1].ReminderMinutes)

	title := "Daily standup"
	recurrence := "daily"
	updated, err := ts.UpdateCalendarEvent(ctx, &store.UpdateCalendarEvent{ID: event.ID, Title: &title, Recurrence: &recurrence})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)
	require.Equal(t, recurrence, updated.Recurrence)

	windowed, err := ts.ListCalendarEvents(ctx, &store.FindCalendarEvent{UserID: &user.ID, StartTsAfter: &start})
	require.NoError(t, err)
	require.Len(t, windowed, 1)

	require.NoError(t, ts.DeleteCalendarEvent(ctx, &store.DeleteCalendarEvent{ID: event.ID, UserID: user.ID}))
	list, err = ts.ListCalendarEvents(ctx, &store.FindCalendarEvent{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
}
