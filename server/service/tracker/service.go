package tracker

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/store"
)

// Store is the interface for store operations needed by the tracker service.
type Store interface {
	CreateSleepRecord(ctx context.Context, create *store.SleepRecord) (*store.SleepRecord, error)
	ListSleepRecords(ctx context.Context, find *store.FindSleepRecord) ([]*store.SleepRecord, error)
	GetSleepRecord(ctx context.Context, find *store.FindSleepRecord) (*store.SleepRecord, error)
	DeleteSleepRecord(ctx context.Context, delete *store.DeleteSleepRecord) error

	CreateHabit(ctx context.Context, create *store.Habit) (*store.Habit, error)
	ListHabits(ctx context.Context, find *store.FindHabit) ([]*store.Habit, error)
	GetHabit(ctx context.Context, find *store.FindHabit) (*store.Habit, error)
	UpdateHabit(ctx context.Context, update *store.UpdateHabit) (*store.Habit, error)
	DeleteHabit(ctx context.Context, delete *store.DeleteHabit) error
	CreateHabitLog(ctx context.Context, create *store.HabitLog) (*store.HabitLog, error)
	ListHabitLogs(ctx context.Context, find *store.FindHabitLog) ([]*store.HabitLog, error)

	CreateTransaction(ctx context.Context, create *store.Transaction) (*store.Transaction, error)
	ListTransactions(ctx context.Context, find *store.FindTransaction) ([]*store.Transaction, error)
	DeleteTransaction(ctx context.Context, delete *store.DeleteTransaction) error

	CreateCalendarEvent(ctx context.Context, create *store.CalendarEvent) (*store.CalendarEvent, error)
	ListCalendarEvents(ctx context.Context, find *store.FindCalendarEvent) ([]*store.CalendarEvent, error)
	UpdateCalendarEvent(ctx context.Context, update *store.UpdateCalendarEvent) (*store.CalendarEvent, error)
	DeleteCalendarEvent(ctx context.Context, delete *store.DeleteCalendarEvent) error
}

type service struct {
	store Store
	now   func() time.Time
}

// NewService creates a new tracker service.
func NewService(store Store) Service {
	return &service{store: store, now: time.Now}
}

const day = 24 * time.Hour

// timeLayouts are tried in order when parsing user supplied times.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 timestamp. Values without a zone are UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Validation("invalid time %q, expected ISO-8601", value)
}

// isDateOnly reports whether value is a bare date such as 2026-03-16.
func isDateOnly(value string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	return err == nil
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func storeError(msg string, err error) error {
	return errors.Store(msg, err)
}
