package tracker

import (
	"time"

	"github.com/hrygo/eidos/store"
)

// The resource types below are the JSON shapes shared by the REST API and the
// assistant's builtin tools.

type SleepRecordResource struct {
	ID        int32     `json:"id"`
	Quality   int32     `json:"quality"`
	Duration  float64   `json:"duration"`
	SleepTime time.Time `json:"sleep_time"`
	WakeTime  time.Time `json:"wake_time"`
	Mood      string    `json:"mood,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewSleepRecordResource(r *store.SleepRecord) *SleepRecordResource {
	return &SleepRecordResource{
		ID:        r.ID,
		Quality:   r.Quality,
		Duration:  r.Duration,
		SleepTime: unix(r.SleepTs),
		WakeTime:  unix(r.WakeTs),
		Mood:      r.Mood,
		Notes:     r.Notes,
		CreatedAt: unix(r.CreatedTs),
	}
}

type HabitResource struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Frequency   string    `json:"frequency"`
	TargetCount int32     `json:"target_count"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	TodayCount  int       `json:"today_count"`
	Streak      int       `json:"streak"`
}

func NewHabitResource(h *store.Habit) *HabitResource {
	return &HabitResource{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Frequency:   string(h.Frequency),
		TargetCount: h.TargetCount,
		Icon:        h.Icon,
		Color:       h.Color,
		Active:      h.Active,
		CreatedAt:   unix(h.CreatedTs),
	}
}

func NewHabitViewResource(v *HabitView) *HabitResource {
	r := NewHabitResource(v.Habit)
	r.TodayCount = v.TodayCount
	r.Streak = v.Streak
	return r
}

type HabitLogResource struct {
	ID          int32     `json:"id"`
	HabitID     int32     `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
	Notes       string    `json:"notes,omitempty"`
}

func NewHabitLogResource(l *store.HabitLog) *HabitLogResource {
	return &HabitLogResource{
		ID:          l.ID,
		HabitID:     l.HabitID,
		CompletedAt: unix(l.CompletedTs),
		Notes:       l.Notes,
	}
}

type TransactionResource struct {
	ID          int32     `json:"id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewTransactionResource(t *store.Transaction) *TransactionResource {
	return &TransactionResource{
		ID:          t.ID,
		Type:        string(t.Type),
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        unix(t.Ts),
		CreatedAt:   unix(t.CreatedTs),
	}
}

type EventResource struct {
	ID              int32      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	AllDay          bool       `json:"all_day"`
	Recurrence      string     `json:"recurrence,omitempty"`
	ReminderMinutes *int32     `json:"reminder_minutes,omitempty"`
	Color           string     `json:"color"`
	ModuleID        *int32     `json:"module_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewEventResource(e *store.CalendarEvent) *EventResource {
	r := &EventResource{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		StartTime:       unix(e.StartTs),
		AllDay:          e.AllDay,
		Recurrence:      e.Recurrence,
		ReminderMinutes: e.ReminderMinutes,
		Color:           e.Color,
		ModuleID:        e.ModuleID,
		CreatedAt:       unix(e.CreatedTs),
		UpdatedAt:       unix(e.UpdatedTs),
	}
	if e.EndTs != nil {
		end := unix(*e.EndTs)
		r.EndTime = &end
	}
	return r
}

func unix(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
