package collector

import "time"

// Calendar event types assigned by ClassifyEvent.
const (
	EventTypeMeetings = "meetings"
	EventTypeWork     = "work"
	EventTypeFitness  = "fitness"
	EventTypeOther    = "other"
)

// CollectedData is one user's snapshot over a window of days.
// A domain with no records in the window has Available=false.
type CollectedData struct {
	UserID      int32     `json:"user_id"`
	Days        int       `json:"days"`
	WindowStart time.Time `json:"window_start"`

	Profile       Profile             `json:"profile"`
	Sleep         SleepSummary        `json:"sleep"`
	Habits        HabitsSummary       `json:"habits"`
	Finance       FinanceSummary      `json:"finance"`
	Calendar      CalendarSummary     `json:"calendar"`
	Conversations ConversationSummary `json:"conversations"`
	Modules       ModulesSummary      `json:"modules"`
}

// Profile is empty when the user does not exist.
type Profile struct {
	Name      string    `json:"name,omitempty"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type SleepSummary struct {
	Available    bool         `json:"available"`
	RecordsCount int          `json:"records_count"`
	AvgDuration  float64      `json:"avg_duration"`
	AvgQuality   float64      `json:"avg_quality"`
	Recent       []SleepEntry `json:"recent_records,omitempty"`
}

type SleepEntry struct {
	Date     string  `json:"date"`
	Duration float64 `json:"duration"`
	Quality  int32   `json:"quality"`
}

type HabitsSummary struct {
	Available   bool        `json:"available"`
	HabitsCount int         `json:"habits_count"`
	TotalLogs   int         `json:"total_logs"`
	Stats       []HabitStat `json:"habit_stats,omitempty"`
}

// HabitStat is one habit's completion over the window.
type HabitStat struct {
	Name           string  `json:"name"`
	CompletionRate float64 `json:"completion_rate"`
	TotalLogs      int     `json:"total_logs"`
}

type FinanceSummary struct {
	Available         bool             `json:"available"`
	TransactionsCount int              `json:"transactions_count"`
	TotalIncome       float64          `json:"total_income"`
	TotalExpenses     float64          `json:"total_expenses"`
	Balance           float64          `json:"balance"`
	TopCategories     []CategoryAmount `json:"top_categories,omitempty"`
}

type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type CalendarSummary struct {
	Available   bool           `json:"available"`
	EventsCount int            `json:"events_count"`
	EventTypes  map[string]int `json:"event_types,omitempty"`
	Upcoming    []EventEntry   `json:"upcoming_events,omitempty"`
}

type EventEntry struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start_time"`
	Description string    `json:"description,omitempty"`
}

type ConversationSummary struct {
	Available          bool         `json:"available"`
	ConversationsCount int          `json:"conversations_count"`
	MessagesCount      int          `json:"messages_count"`
	TopTopics          []TopicCount `json:"top_topics,omitempty"`
}

type TopicCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// ModulesSummary is not windowed.
type ModulesSummary struct {
	InstalledCount int           `json:"installed_count"`
	EnabledCount   int           `json:"enabled_count"`
	Modules        []ModuleEntry `json:"modules"`
}

type ModuleEntry struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	Status      string `json:"status"`
}
