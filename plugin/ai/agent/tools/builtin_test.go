package tools

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/server/service/tracker"
	"github.com/hrygo/eidos/store"
	storetest "github.com/hrygo/eidos/store/test"
)

type countingInvalidator struct {
	users []int32
}

func (c *countingInvalidator) Invalidate(userID int32) {
	c.users = append(c.users, userID)
}

func newTestExecutor(t *testing.T) (*BuiltinExecutor, *countingInvalidator, *store.Store, *store.User) {
	t.Helper()
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	user, err := storetest.CreateTestingUser(ctx, ts, "tools")
	require.NoError(t, err)

	inv := &countingInvalidator{}
	return NewBuiltinExecutor(tracker.NewService(ts), inv), inv, ts, user
}

func TestBuiltin_SleepRecord(t *testing.T) {
	ctx := context.Background()
	e, inv, _, user := newTestExecutor(t)

	result, err := e.Execute(ctx, ToolCreateSleepRecord, ParseArgs(`{"quality":"8","duration":"7.5","mood":"good"}`), user.ID)
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)
	record := result.Data.(*tracker.SleepRecordResource)
	assert.Equal(t, int32(8), record.Quality)
	assert.Equal(t, 7.5, record.Duration)
	assert.Equal(t, []int32{user.ID}, inv.users)

	result, err = e.Execute(ctx, ToolGetSleepStats, Args{}, user.ID)
	require.NoError(t, err)
	stats := result.Data.(*tracker.SleepStats)
	assert.Equal(t, 1, stats.TotalRecords)
	assert.Len(t, inv.users, 1, "reads do not invalidate")
}

func TestBuiltin_ValidationIsAResult(t *testing.T) {
	ctx := context.Background()
	e, inv, _, user := newTestExecutor(t)

	result, err := e.Execute(ctx, ToolCreateSleepRecord, ParseArgs(`{"quality":15,"duration":7}`), user.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, string(errors.ErrCodeInvalidArgument), result.Code)
	assert.Contains(t, result.Error, "quality")

	result, err = e.Execute(ctx, ToolCreateSleepRecord, ParseArgs(`{"quality":"high","duration":7}`), user.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)

	result, err = e.Execute(ctx, ToolCreateTransaction, ParseArgs(`{"type":"gift","amount":10}`), user.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, inv.users)
}

func TestBuiltin_Habits(t *testing.T) {
	ctx := context.Background()
	e, inv, _, user := newTestExecutor(t)

	result, err := e.Execute(ctx, ToolCreateHabit, ParseArgs(`{"name":"Read","frequency":"daily","icon":"📚"}`), user.ID)
	require.NoError(t, err)
	require.True(t, result.Success, result.Error)
	habit := result.Data.(*tracker.HabitResource)

	// The id arrives as a string and as a number.
	for _, raw := range []string{`{"habit_id":"` + itoa(habit.ID) + `"}`, `{"habit_id":` + itoa(habit.ID) + `}`} {
		result, err = e.Execute(ctx, ToolLogHabit, ParseArgs(raw), user.ID)
		require.NoError(t, err)
		require.True(t, result.Success, result.Error)
	}

	result, err = e.Execute(ctx, ToolGetHabits, Args{}, user.ID)
	require.NoError(t, err)
	habits := result.Data.([]*tracker.HabitResource)
	require.Len(t, habits, 1)
	assert.Equal(t, 2, habits[0].TodayCount)

	result, err = e.Execute(ctx, ToolGetHabitStats, Args{}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Data.(*tracker.HabitStats).TotalCompletions)
	assert.Len(t, inv.users, 3)
}

func TestBuiltin_LogHabitNotFound(t *testing.T) {
	ctx := context.Background()
	e, _, _, user := newTestExecutor(t)

	result, err := e.Execute(ctx, ToolLogHabit, ParseArgs(`{"habit_id":"999"}`), user.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, string(errors.ErrCodeNotFound), result.Code)

	result, err = e.Execute(ctx, ToolLogHabit, Args{}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, string(errors.ErrCodeInvalidArgument), result.Code)
}

func TestBuiltin_Finance(t *testing.T) {
	ctx := context.Background()
	e, _, _, user := newTestExecutor(t)

	for _, raw := range []string{
		`{"type":"income","amount":"1000","category":"Salary"}`,
		`{"type":"expense","amount":250.5,"category":"Groceries"}`,
		`{"type":"expense","amount":"49.5"}`,
	} {
		result, err := e.Execute(ctx, ToolCreateTransaction, ParseArgs(raw), user.ID)
		require.NoError(t, err)
		require.True(t, result.Success, result.Error)
	}

	result, err := e.Execute(ctx, ToolGetTransactions, ParseArgs(`{"type":"expense","limit":"1"}`), user.ID)
	require.NoError(t, err)
	txs := result.Data.([]*tracker.TransactionResource)
	require.Len(t, txs, 1)
	assert.Equal(t, "expense", txs[0].Type)

	result, err = e.Execute(ctx, ToolGetFinanceStats, Args{}, user.ID)
	require.NoError(t, err)
	stats := result.Data.(*tracker.FinanceStats)
	assert.Equal(t, 1000.0, stats.TotalIncome)
	assert.Equal(t, 300.0, stats.TotalExpenses)
	assert.Equal(t, 700.0, stats.Balance)
}

func TestBuiltin_Calendar(t *testing.T) {
	ctx := context.Background()
	e, _, _, user := newTestExecutor(t)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	for _, start := range []string{"2026-03-14T10:00:00", "2026-03-16T19:00:00"} {
		result, err := e.Execute(ctx, ToolCreateCalendarEvent, Args{
			"title":            "Dinner",
			"start_time":       start,
			"reminder_minutes": "15",
		}, user.ID)
		require.NoError(t, err)
		require.True(t, result.Success, result.Error)
		assert.Equal(t, int32(15), *result.Data.(*tracker.EventResource).ReminderMinutes)
	}

	result, err := e.Execute(ctx, ToolGetCalendarEvents, Args{}, user.ID)
	require.NoError(t, err)
	events := result.Data.([]*tracker.EventResource)
	require.Len(t, events, 1, "defaults to events from today on")
	assert.Equal(t, 16, events[0].StartTime.Day())

	result, err = e.Execute(ctx, ToolGetCalendarEvents, Args{"start_date": "2026-03-01"}, user.ID)
	require.NoError(t, err)
	assert.Len(t, result.Data.([]*tracker.EventResource), 2)

	result, err = e.Execute(ctx, ToolGetCalendarEvents, Args{"start_date": "2026-03-01", "end_date": "2026-03-16"}, user.ID)
	require.NoError(t, err)
	assert.Len(t, result.Data.([]*tracker.EventResource), 2, "a date-only end_date covers the whole day")

	result, err = e.Execute(ctx, ToolCreateCalendarEvent, Args{"title": "No start"}, user.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestBuiltin_UnknownTool(t *testing.T) {
	e, _, _, user := newTestExecutor(t)
	result, err := e.Execute(context.Background(), "launch_rockets", Args{}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, string(errors.ErrCodeNotFound), result.Code)
}

func itoa(v int32) string {
	return strconv.Itoa(int(v))
}
