package store

import "context"

// DefaultEventColor is used when an event is created without a color.
const DefaultEventColor = "#3B82F6"

type CalendarEvent struct {
	ID              int32
	UserID          int32
	Title           string
	Description     string
	StartTs         int64
	EndTs           *int64
	AllDay          bool
	Recurrence      string
	ReminderMinutes *int32
	Color           string
	// ModuleID is set when an installed module created the event.
	ModuleID  *int32
	CreatedTs int64
	UpdatedTs int64
}

type FindCalendarEvent struct {
	ID            *int32
	UserID        *int32
	StartTsAfter  *int64
	StartTsBefore *int64

	Limit *int
}

type UpdateCalendarEvent struct {
	ID        int32
	UpdatedTs int64

	Title           *string
	Description     *string
	StartTs         *int64
	EndTs           *int64
	AllDay          *bool
	Recurrence      *string
	ReminderMinutes *int32
	Color           *string
}

type DeleteCalendarEvent struct {
	ID     int32
	UserID int32
}

func (s *Store) CreateCalendarEvent(ctx context.Context, create *CalendarEvent) (*CalendarEvent, error) {
	return s.driver.CreateCalendarEvent(ctx, create)
}

// ListCalendarEvents returns events ordered by start_ts ascending.
func (s *Store) ListCalendarEvents(ctx context.Context, find *FindCalendarEvent) ([]*CalendarEvent, error) {
	return s.driver.ListCalendarEvents(ctx, find)
}

func (s *Store) UpdateCalendarEvent(ctx context.Context, update *UpdateCalendarEvent) (*CalendarEvent, error) {
	return s.driver.UpdateCalendarEvent(ctx, update)
}

func (s *Store) DeleteCalendarEvent(ctx context.Context, delete *DeleteCalendarEvent) error {
	return s.driver.DeleteCalendarEvent(ctx, delete)
}
