package tools

import (
	"context"
	"time"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/server/service/tracker"
)

// Built-in tool names.
const (
	ToolCreateCalendarEvent = "create_calendar_event"
	ToolGetCalendarEvents   = "get_calendar_events"
	ToolGetSleepStats       = "get_sleep_stats"
	ToolCreateSleepRecord   = "create_sleep_record"
	ToolGetHabits           = "get_habits"
	ToolGetHabitStats       = "get_habit_stats"
	ToolCreateHabit         = "create_habit"
	ToolLogHabit            = "log_habit"
	ToolGetFinanceStats     = "get_finance_stats"
	ToolGetTransactions     = "get_transactions"
	ToolCreateTransaction   = "create_transaction"
)

const defaultTransactionsLimit = 20

func str(description string) Param {
	return Param{Type: "string", Description: description}
}

// Builtins returns fresh descriptors for the built-in tools in catalog order.
func Builtins() []*Descriptor {
	list := []*Descriptor{
		newDescriptor(ToolCreateCalendarEvent, "Create an event in the user's calendar (meeting, reminder)", map[string]Param{
			"title":            str("Event title"),
			"start_time":       str("Start time in ISO 8601, e.g. 2024-11-19T19:00:00"),
			"end_time":         str("End time in ISO 8601 (optional)"),
			"description":      str("Event description (optional)"),
			"reminder_minutes": {Type: "integer", Description: "Minutes before the event to remind (optional)"},
		}, nil),
		newDescriptor(ToolGetCalendarEvents, "List events from the user's calendar", map[string]Param{
			"start_date": str("Start date in ISO 8601, defaults to today (optional)"),
			"end_date":   str("End date in ISO 8601 (optional)"),
		}, nil),
		newDescriptor(ToolGetSleepStats, "Get the user's sleep statistics", nil, nil),
		newDescriptor(ToolCreateSleepRecord, "Create a sleep record. Call it whenever the user mentions their sleep. "+
			"Without explicit times the wake time is now and the sleep time is derived from the duration.", map[string]Param{
			"quality":    {Type: "integer", Description: "Sleep quality from 0 to 10"},
			"duration":   {Type: "number", Description: "Sleep duration in hours"},
			"sleep_time": str("Time the user fell asleep in ISO 8601"),
			"wake_time":  str("Time the user woke up in ISO 8601"),
			"mood":       {Type: "string", Description: "Mood on waking (optional)", Enum: tracker.Moods},
			"notes":      str("Notes about the night (optional)"),
		}, []string{"quality", "duration"}),
		newDescriptor(ToolGetHabits, "List the user's habits with today's progress", nil, nil),
		newDescriptor(ToolGetHabitStats, "Get the user's habit statistics", nil, nil),
		newDescriptor(ToolCreateHabit, "Create a new habit for the user", map[string]Param{
			"name":        str("Habit name"),
			"description": str("Habit description (optional)"),
			"frequency":   {Type: "string", Description: "How often the habit repeats", Enum: []string{"daily", "weekly", "monthly"}},
			"icon":        str("Emoji icon (optional)"),
		}, nil),
		newDescriptor(ToolLogHabit, "Mark a habit as completed", map[string]Param{
			"habit_id": str("Habit ID"),
			"notes":    str("Notes (optional)"),
		}, nil),
		newDescriptor(ToolGetFinanceStats, "Get the user's financial statistics (balance, income, expenses)", nil, nil),
		newDescriptor(ToolGetTransactions, "List the user's recent transactions", map[string]Param{
			"type":  {Type: "string", Description: "Only income or only expense (optional)", Enum: []string{"income", "expense"}},
			"limit": {Type: "integer", Description: "Maximum number of transactions (optional)"},
		}, nil),
		newDescriptor(ToolCreateTransaction, "Create a financial transaction (income or expense)", map[string]Param{
			"type":        {Type: "string", Description: "income or expense", Enum: []string{"income", "expense"}},
			"amount":      {Type: "number", Description: "Transaction amount"},
			"category":    str("Category such as Groceries, Transport, Salary"),
			"description": str("Transaction description (optional)"),
			"date":        str("Transaction date in ISO 8601, defaults to today (optional)"),
		}, nil),
	}
	for _, d := range list {
		d.Target = Target{Kind: TargetBuiltin}
	}
	return list
}

// Invalidator drops a user's cached context after their data changed.
type Invalidator interface {
	Invalidate(userID int32)
}

// BuiltinExecutor runs built-in tools against the tracker service.
type BuiltinExecutor struct {
	tracker     tracker.Service
	invalidator Invalidator
	now         func() time.Time
}

// NewBuiltinExecutor creates a BuiltinExecutor. invalidator may be nil.
func NewBuiltinExecutor(tracker tracker.Service, invalidator Invalidator) *BuiltinExecutor {
	return &BuiltinExecutor{tracker: tracker, invalidator: invalidator, now: time.Now}
}

// Execute runs the named built-in tool. Validation and not-found failures are
// reported in the Result; store failures are returned as errors.
func (e *BuiltinExecutor) Execute(ctx context.Context, name string, args Args, userID int32) (*Result, error) {
	data, write, err := e.dispatch(ctx, name, args, userID)
	if err != nil {
		return FromError(err)
	}
	if write && e.invalidator != nil {
		e.invalidator.Invalidate(userID)
	}
	return OK(data), nil
}

func (e *BuiltinExecutor) dispatch(ctx context.Context, name string, args Args, userID int32) (data any, write bool, err error) {
	switch name {
	case ToolCreateCalendarEvent:
		reminder, err := args.OptionalInt32("reminder_minutes")
		if err != nil {
			return nil, false, err
		}
		event, err := e.tracker.CreateEvent(ctx, userID, &tracker.EventInput{
			Title:           args.String("title"),
			Description:     args.String("description"),
			StartTime:       args.String("start_time"),
			EndTime:         args.String("end_time"),
			ReminderMinutes: reminder,
		})
		if err != nil {
			return nil, false, err
		}
		return tracker.NewEventResource(event), true, nil

	case ToolGetCalendarEvents:
		start := args.String("start_date")
		if start == "" {
			y, m, d := e.now().UTC().Date()
			start = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		}
		events, err := e.tracker.ListEvents(ctx, userID, start, args.String("end_date"))
		if err != nil {
			return nil, false, err
		}
		list := make([]*tracker.EventResource, len(events))
		for i, ev := range events {
			list[i] = tracker.NewEventResource(ev)
		}
		return list, false, nil

	case ToolGetSleepStats:
		stats, err := e.tracker.SleepStats(ctx, userID)
		return stats, false, err

	case ToolCreateSleepRecord:
		quality, err := args.Int32("quality")
		if err != nil {
			return nil, false, err
		}
		duration, err := args.Float("duration")
		if err != nil {
			return nil, false, err
		}
		record, err := e.tracker.CreateSleepRecord(ctx, userID, &tracker.SleepInput{
			Quality:   quality,
			Duration:  duration,
			SleepTime: args.String("sleep_time"),
			WakeTime:  args.String("wake_time"),
			Mood:      args.String("mood"),
			Notes:     args.String("notes"),
		})
		if err != nil {
			return nil, false, err
		}
		return tracker.NewSleepRecordResource(record), true, nil

	case ToolGetHabits:
		habits, err := e.tracker.ListHabits(ctx, userID, true)
		if err != nil {
			return nil, false, err
		}
		list := make([]*tracker.HabitResource, len(habits))
		for i, h := range habits {
			list[i] = tracker.NewHabitViewResource(h)
		}
		return list, false, nil

	case ToolGetHabitStats:
		stats, err := e.tracker.HabitStats(ctx, userID)
		return stats, false, err

	case ToolCreateHabit:
		habit, err := e.tracker.CreateHabit(ctx, userID, &tracker.HabitInput{
			Name:        args.String("name"),
			Description: args.String("description"),
			Frequency:   args.String("frequency"),
			Icon:        args.String("icon"),
		})
		if err != nil {
			return nil, false, err
		}
		return tracker.NewHabitResource(habit), true, nil

	case ToolLogHabit:
		if args.String("habit_id") == "" {
			return nil, false, errors.Validation("habit_id is required")
		}
		habitID, err := args.Int32("habit_id")
		if err != nil {
			return nil, false, err
		}
		log, err := e.tracker.LogHabit(ctx, userID, habitID, args.String("notes"))
		if err != nil {
			return nil, false, err
		}
		return tracker.NewHabitLogResource(log), true, nil

	case ToolGetFinanceStats:
		stats, err := e.tracker.FinanceStats(ctx, userID)
		return stats, false, err

	case ToolGetTransactions:
		limit, err := args.Int32("limit")
		if err != nil {
			return nil, false, err
		}
		if limit <= 0 {
			limit = defaultTransactionsLimit
		}
		txs, err := e.tracker.ListTransactions(ctx, userID, args.String("type"), int(limit))
		if err != nil {
			return nil, false, err
		}
		list := make([]*tracker.TransactionResource, len(txs))
		for i, tx := range txs {
			list[i] = tracker.NewTransactionResource(tx)
		}
		return list, false, nil

	case ToolCreateTransaction:
		amount, err := args.Float("amount")
		if err != nil {
			return nil, false, err
		}
		tx, err := e.tracker.CreateTransaction(ctx, userID, &tracker.TransactionInput{
			Type:        args.String("type"),
			Amount:      amount,
			Category:    args.String("category"),
			Description: args.String("description"),
			Date:        args.String("date"),
		})
		if err != nil {
			return nil, false, err
		}
		return tracker.NewTransactionResource(tx), true, nil
	}
	return nil, false, errors.NotFound("tool " + name)
}
