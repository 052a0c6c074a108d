package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/store"
)

func TestHabitStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user, err := CreateTestingUser(ctx, ts, "habitual")
	require.NoError(t, err)

	habit, err := ts.CreateHabit(ctx, &store.Habit{
		UserID:      user.ID,
		Name:        "Meditate",
		Frequency:   store.HabitFrequencyDaily,
		TargetCount: 1,
		Active:      true,
	})
	require.NoError(t, err)

	inactive := false
	_, err = ts.CreateHabit(ctx, &store.Habit{
		UserID:      user.ID,
		Name:        "Journal",
		Frequency:   store.HabitFrequencyWeekly,
		TargetCount: 2,
		Active:      inactive,
	})
	require.NoError(t, err)

	active := true
	list, err := ts.ListHabits(ctx, &store.FindHabit{UserID: &user.ID, Active: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Meditate", list[0].Name)

	name := "Meditate daily"
	updated, err := ts.UpdateHabit(ctx, &store.UpdateHabit{ID: habit.ID, Name: &name, Active: &inactive})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.False(t, updated.Active)

	now := time.Now().Unix()
	for _, ts1 := range []int64{now - 3600, now} {
		_, err := ts.CreateHabitLog(ctx, &store.HabitLog{HabitID: habit.ID, CompletedTs: ts1})
		require.NoError(t, err)
	}
	logs, err := ts.ListHabitLogs(ctx, &store.FindHabitLog{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, now, logs[0].CompletedTs)

	require.NoError(t, ts.DeleteHabit(ctx, &store.DeleteHabit{ID: habit.ID, UserID: user.ID}))
	logs, err = ts.ListHabitLogs(ctx, &store.FindHabitLog{HabitID: &habit.ID})
	require.NoError(t, err)
	require.Empty(t, logs)
}
