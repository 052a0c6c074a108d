package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/store"
	storetest "github.com/hrygo/eidos/store/test"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*service, *store.Store, int32) {
	t.Helper()
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	user, err := storetest.CreateTestingUser(ctx, ts, "tracker")
	require.NoError(t, err)

	svc := NewService(ts).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc, ts, user.ID
}

func TestParseTime(t *testing.T) {
	for _, value := range []string{"2026-03-15T08:00:00Z", "2026-03-15T08:00:00", "2026-03-15 08:00", "2026-03-15"} {
		_, err := ParseTime(value)
		assert.NoError(t, err, value)
	}
	_, err := ParseTime("yesterday")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
}

func TestCreateSleepRecord(t *testing.T) {
	ctx := context.Background()
	svc, _, userID := newTestService(t)

	t.Run("defaults wake to now and sleep to wake minus duration", func(t *testing.T) {
		record, err := svc.CreateSleepRecord(ctx, userID, &SleepInput{Quality: 8, Duration: 7.5})
		require.NoError(t, err)
		assert.Equal(t, fixedNow.Unix(), record.WakeTs)
		assert.Equal(t, fixedNow.Add(-7*time.Hour-30*time.Minute).Unix(), record.SleepTs)
	})

	t.Run("explicit times", func(t *testing.T) {
		record, err := svc.CreateSleepRecord(ctx, userID, &SleepInput{
			Quality:   6,
			Duration:  8,
			SleepTime: "2026-03-14T23:00:00Z",
			WakeTime:  "2026-03-15T07:00:00Z",
			Mood:      "good",
		})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC).Unix(), record.SleepTs)
	})

	invalid := []*SleepInput{
		{Quality: 11, Duration: 8},
		{Quality: -1, Duration: 8},
		{Quality: 5, Duration: 0},
		{Quality: 5, Duration: 8, Mood: "sleepy"},
		{Quality: 5, Duration: 8, WakeTime: "not a time"},
	}
	for _, input := range invalid {
		_, err := svc.CreateSleepRecord(ctx, userID, input)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument), "%+v", input)
	}
}

func TestSleepStats(t *testing.T) {
	ctx := context.Background()
	svc, _, userID := newTestService(t)

	stats, err := svc.SleepStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRecords)

	inputs := []*SleepInput{
		{Quality: 8, Duration: 8, WakeTime: "2026-03-15T07:00:00Z"},
		{Quality: 4, Duration: 6, WakeTime: "2026-03-14T07:00:00Z"},
		{Quality: 6, Duration: 7, WakeTime: "2026-02-01T07:00:00Z"},
	}
	for _, input := range inputs {
		_, err := svc.CreateSleepRecord(ctx, userID, input)
		require.NoError(t, err)
	}

	stats, err = svc.SleepStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 6.0, stats.AvgQuality)
	assert.Equal(t, 7.0, stats.AvgDuration)
	assert.Equal(t, int32(8), stats.BestQuality)
	assert.Equal(t, int32(4), stats.WorstQuality)
	assert.Equal(t, 21.0, stats.TotalSleepHours)
	assert.Equal(t, 6.0, stats.Last7DaysAvgQuality)
	assert.Equal(t, 7.0, stats.Last7DaysAvgDuration)
}

func TestDeleteSleepRecordNotFound(t *testing.T) {
	svc, _, userID := newTestService(t)
	err := svc.DeleteSleepRecord(context.Background(), userID, 999)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestHabits(t *testing.T) {
	ctx := context.Background()
	svc, ts, userID := newTestService(t)

	_, err := svc.CreateHabit(ctx, userID, &HabitInput{Name: "  "})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	_, err = svc.CreateHabit(ctx, userID, &HabitInput{Name: "Run", Frequency: "hourly"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))

	habit, err := svc.CreateHabit(ctx, userID, &HabitInput{Name: "Run"})
	require.NoError(t, err)
	assert.Equal(t, store.HabitFrequencyDaily, habit.Frequency)
	assert.Equal(t, int32(1), habit.TargetCount)
	assert.True(t, habit.Active)

	// Logs today, yesterday and three days ago: the streak is two.
	for _, offset := range []time.Duration{0, 24 * time.Hour, 72 * time.Hour} {
		_, err := ts.CreateHabitLog(ctx, &store.HabitLog{HabitID: habit.ID, CompletedTs: fixedNow.Add(-offset).Unix()})
		require.NoError(t, err)
	}

	view, err := svc.GetHabit(ctx, userID, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Streak)
	assert.Equal(t, 1, view.TodayCount)

	views, err := svc.ListHabits(ctx, userID, true)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].Streak)

	stats, err := svc.HabitStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalHabits)
	assert.Equal(t, 1, stats.ActiveHabits)
	assert.Equal(t, 3, stats.TotalCompletions)
	assert.Equal(t, 42.9, stats.CompletionRate)
	assert.Equal(t, 2, stats.BestStreak)

	_, err = svc.LogHabit(ctx, userID+1, habit.ID, "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound), "foreign habit")

	log, err := svc.LogHabit(ctx, userID, habit.ID, "felt great")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Unix(), log.CompletedTs)

	inactive := false
	updated, err := svc.UpdateHabit(ctx, userID, habit.ID, &HabitUpdate{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	views, err = svc.ListHabits(ctx, userID, true)
	require.NoError(t, err)
	assert.Empty(t, views)

	require.NoError(t, svc.DeleteHabit(ctx, userID, habit.ID))
	_, err = svc.GetHabit(ctx, userID, habit.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestStreak(t *testing.T) {
	now := fixedNow
	assert.Equal(t, 0, Streak(nil, now))
	logs := []*store.HabitLog{
		{CompletedTs: now.Add(-24 * time.Hour).Unix()},
	}
	assert.Equal(t, 0, Streak(logs, now), "a streak must include today")
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	svc, _, userID := newTestService(t)

	_, err := svc.CreateTransaction(ctx, userID, &TransactionInput{Type: "gift", Amount: 10})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	_, err = svc.CreateTransaction(ctx, userID, &TransactionInput{Type: "expense", Amount: -5})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))

	inputs := []*TransactionInput{
		{Type: "income", Amount: 3000, Category: "Salary", Date: "2026-03-01"},
		{Type: "income", Amount: 500, Category: "Freelance", Date: "2026-02-10"},
		{Type: "expense", Amount: 120.55, Category: "Food", Date: "2026-03-02"},
		{Type: "expense", Amount: 80, Category: "Food", Date: "2026-03-03"},
		{Type: "expense", Amount: 200, Category: "Rent", Date: "2026-02-05"},
		{Type: "expense", Amount: 15},
	}
	for _, input := range inputs {
		_, err := svc.CreateTransaction(ctx, userID, input)
		require.NoError(t, err)
	}

	expenses, err := svc.ListTransactions(ctx, userID, "expense", 0)
	require.NoError(t, err)
	require.Len(t, expenses, 4)
	assert.Equal(t, DefaultCategory, expenses[0].Category, "newest first")

	stats, err := svc.FinanceStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3500.0, stats.TotalIncome)
	assert.Equal(t, 415.55, stats.TotalExpenses)
	assert.Equal(t, 3084.45, stats.Balance)
	assert.Equal(t, 3000.0, stats.MonthlyIncome)
	assert.Equal(t, 215.55, stats.MonthlyExpenses)
	require.Len(t, stats.TopExpenseCategories, 3)
	assert.Equal(t, "Food", stats.TopExpenseCategories[0].Category)
	assert.Equal(t, 200.55, stats.TopExpenseCategories[0].Amount)
	assert.Equal(t, "Rent", stats.TopExpenseCategories[1].Category)

	err = svc.DeleteTransaction(ctx, userID, 9999)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestTopExpenseCategories(t *testing.T) {
	list := []*store.Transaction{
		{Type: store.TransactionTypeExpense, Category: "A", Amount: 10},
		{Type: store.TransactionTypeExpense, Category: "B", Amount: 10},
		{Type: store.TransactionTypeIncome, Category: "C", Amount: 99},
		{Type: store.TransactionTypeExpense, Category: "D", Amount: 30},
	}
	top := TopExpenseCategories(list, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "D", top[0].Category)
	assert.Equal(t, "A", top[1].Category, "ties keep first-seen order")
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	svc, _, userID := newTestService(t)

	_, err := svc.CreateEvent(ctx, userID, &EventInput{Title: "No start"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	_, err = svc.CreateEvent(ctx, userID, &EventInput{Title: "Backwards", StartTime: "2026-03-16T10:00:00Z", EndTime: "2026-03-16T09:00:00Z"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))
	_, err = svc.CreateEvent(ctx, userID, &EventInput{Title: "Odd", StartTime: "2026-03-16T10:00:00Z", Recurrence: "hourly"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))

	event, err := svc.CreateEvent(ctx, userID, &EventInput{
		Title:      "Team meeting",
		StartTime:  "2026-03-16T10:00:00Z",
		EndTime:    "2026-03-16T11:00:00Z",
		Recurrence: "weekly",
	})
	require.NoError(t, err)
	assert.Equal(t, store.DefaultEventColor, event.Color)

	_, err = svc.CreateEvent(ctx, userID, &EventInput{Title: "Gym", StartTime: "2026-03-20T18:00:00Z"})
	require.NoError(t, err)

	list, err := svc.ListEvents(ctx, userID, "2026-03-16", "2026-03-17")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Team meeting", list[0].Title)

	// A bare end date covers the whole day.
	list, err = svc.ListEvents(ctx, userID, "2026-03-16", "2026-03-16")
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = svc.ListEvents(ctx, userID, "2026-03-16", "2026-03-20")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	list, err = svc.ListEvents(ctx, userID, "2026-03-16", "2026-03-16T09:00:00Z")
	require.NoError(t, err)
	assert.Empty(t, list)

	badEnd := "2026-03-16T09:00:00Z"
	_, err = svc.UpdateEvent(ctx, userID, event.ID, &EventUpdate{EndTime: &badEnd})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidArgument))

	title := "Team sync"
	updated, err := svc.UpdateEvent(ctx, userID, event.ID, &EventUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, fixedNow.Unix(), updated.UpdatedTs)

	assert.True(t, errors.IsCode(svc.DeleteEvent(ctx, userID+1, event.ID), errors.ErrCodeNotFound))
	require.NoError(t, svc.DeleteEvent(ctx, userID, event.ID))
}
