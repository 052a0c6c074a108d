// Package tracker holds the validation and aggregation rules for the personal
// trackers: sleep, habits, finance and calendar. REST handlers and the
// assistant's builtin tools both go through it so that a record created by
// either path obeys the same constraints.
package tracker

import (
	"context"

	"github.com/hrygo/eidos/store"
)

// Service defines the tracker business logic.
type Service interface {
	CreateSleepRecord(ctx context.Context, userID int32, input *SleepInput) (*store.SleepRecord, error)
	ListSleepRecords(ctx context.Context, userID int32, limit int) ([]*store.SleepRecord, error)
	DeleteSleepRecord(ctx context.Context, userID, id int32) error
	SleepStats(ctx context.Context, userID int32) (*SleepStats, error)

	CreateHabit(ctx context.Context, userID int32, input *HabitInput) (*store.Habit, error)
	ListHabits(ctx context.Context, userID int32, activeOnly bool) ([]*HabitView, error)
	GetHabit(ctx context.Context, userID, id int32) (*HabitView, error)
	UpdateHabit(ctx context.Context, userID, id int32, update *HabitUpdate) (*store.Habit, error)
	DeleteHabit(ctx context.Context, userID, id int32) error
	LogHabit(ctx context.Context, userID, habitID int32, notes string) (*store.HabitLog, error)
	ListHabitLogs(ctx context.Context, userID, habitID int32) ([]*store.HabitLog, error)
	HabitStats(ctx context.Context, userID int32) (*HabitStats, error)

	CreateTransaction(ctx context.Context, userID int32, input *TransactionInput) (*store.Transaction, error)
	ListTransactions(ctx context.Context, userID int32, txType string, limit int) ([]*store.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int32) error
	FinanceStats(ctx context.Context, userID int32) (*FinanceStats, error)

	CreateEvent(ctx context.Context, userID int32, input *EventInput) (*store.CalendarEvent, error)
	ListEvents(ctx context.Context, userID int32, start, end string) ([]*store.CalendarEvent, error)
	UpdateEvent(ctx context.Context, userID, id int32, update *EventUpdate) (*store.CalendarEvent, error)
	DeleteEvent(ctx context.Context, userID, id int32) error
}

// SleepInput is a sleep record as entered by the user. Times are ISO-8601.
type SleepInput struct {
	Quality   int32   `json:"quality"`
	Duration  float64 `json:"duration"`
	SleepTime string  `json:"sleep_time,omitempty"`
	WakeTime  string  `json:"wake_time,omitempty"`
	Mood      string  `json:"mood,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

type SleepStats struct {
	TotalRecords         int     `json:"total_records"`
	AvgQuality           float64 `json:"avg_quality"`
	AvgDuration          float64 `json:"avg_duration"`
	BestQuality          int32   `json:"best_quality"`
	WorstQuality         int32   `json:"worst_quality"`
	TotalSleepHours      float64 `json:"total_sleep_hours"`
	Last7DaysAvgQuality  float64 `json:"last_7_days_avg_quality"`
	Last7DaysAvgDuration float64 `json:"last_7_days_avg_duration"`
}

type HabitInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	TargetCount int32  `json:"target_count,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
}

type HabitUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Frequency   *string `json:"frequency,omitempty"`
	TargetCount *int32  `json:"target_count,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// HabitView is a habit with its progress for today.
type HabitView struct {
	*store.Habit
	TodayCount int `json:"today_count"`
	Streak     int `json:"streak"`
}

type HabitStats struct {
	TotalHabits      int     `json:"total_habits"`
	ActiveHabits     int     `json:"active_habits"`
	TotalCompletions int     `json:"total_completions"`
	CompletionRate   float64 `json:"completion_rate"`
	BestStreak       int     `json:"best_streak"`
}

type TransactionInput struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date,omitempty"`
}

type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type FinanceStats struct {
	TotalIncome          float64          `json:"total_income"`
	TotalExpenses        float64          `json:"total_expenses"`
	Balance              float64          `json:"balance"`
	TopExpenseCategories []CategoryAmount `json:"top_expense_categories"`
	MonthlyIncome        float64          `json:"monthly_income"`
	MonthlyExpenses      float64          `json:"monthly_expenses"`
}

type EventInput struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time,omitempty"`
	AllDay          bool   `json:"all_day,omitempty"`
	Recurrence      string `json:"recurrence,omitempty"`
	ReminderMinutes *int32 `json:"reminder_minutes,omitempty"`
	Color           string `json:"color,omitempty"`
	// ModuleID tags events created by an installed module.
	ModuleID *int32 `json:"-"`
}

type EventUpdate struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	StartTime       *string `json:"start_time,omitempty"`
	EndTime         *string `json:"end_time,omitempty"`
	AllDay          *bool   `json:"all_day,omitempty"`
	Recurrence      *string `json:"recurrence,omitempty"`
	ReminderMinutes *int32  `json:"reminder_minutes,omitempty"`
	Color           *string `json:"color,omitempty"`
}
