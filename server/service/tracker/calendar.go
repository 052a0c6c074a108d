package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/store"
)

// Recurrences accepted on a calendar event. The value is stored as a label.
var Recurrences = []string{"daily", "weekly", "monthly", "yearly"}

func validRecurrence(r string) bool {
	for _, v := range Recurrences {
		if v == r {
			return true
		}
	}
	return false
}

func (s *service) CreateEvent(ctx context.Context, userID int32, input *EventInput) (*store.CalendarEvent, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.Validation("title is required")
	}
	if input.StartTime == "" {
		return nil, errors.Validation("start_time is required")
	}
	start, err := ParseTime(input.StartTime)
	if err != nil {
		return nil, err
	}
	event := &store.CalendarEvent{
		UserID:          userID,
		Title:           title,
		Description:     input.Description,
		StartTs:         start.Unix(),
		AllDay:          input.AllDay,
		ReminderMinutes: input.ReminderMinutes,
		Color:           input.Color,
		ModuleID:        input.ModuleID,
		CreatedTs:       s.now().Unix(),
	}
	if input.EndTime != "" {
		end, err := ParseTime(input.EndTime)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, errors.Validation("end_time must not be before start_time")
		}
		endTs := end.Unix()
		event.EndTs = &endTs
	}
	if input.Recurrence != "" {
		if !validRecurrence(input.Recurrence) {
			return nil, errors.Validation("recurrence must be daily, weekly, monthly, or yearly")
		}
		event.Recurrence = input.Recurrence
	}
	if event.Color == "" {
		event.Color = store.DefaultEventColor
	}
	event.UpdatedTs = event.CreatedTs

	created, err := s.store.CreateCalendarEvent(ctx, event)
	if err != nil {
		return nil, storeError("failed to create calendar event", err)
	}
	return created, nil
}

func (s *service) ListEvents(ctx context.Context, userID int32, start, end string) ([]*store.CalendarEvent, error) {
	find := &store.FindCalendarEvent{UserID: &userID}
	if start != "" {
		t, err := ParseTime(start)
		if err != nil {
			return nil, err
		}
		ts := t.Unix()
		find.StartTsAfter = &ts
	}
	if end != "" {
		t, err := ParseTime(end)
		if err != nil {
			return nil, err
		}
		if isDateOnly(end) {
			t = t.Add(24*time.Hour - time.Second)
		}
		ts := t.Unix()
		find.StartTsBefore = &ts
	}
	list, err := s.store.ListCalendarEvents(ctx, find)
	if err != nil {
		return nil, storeError("failed to list calendar events", err)
	}
	return list, nil
}

func (s *service) UpdateEvent(ctx context.Context, userID, id int32, update *EventUpdate) (*store.CalendarEvent, error) {
	event, err := s.getOwnedEvent(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch := &store.UpdateCalendarEvent{
		ID:              id,
		UpdatedTs:       s.now().Unix(),
		Description:     update.Description,
		AllDay:          update.AllDay,
		ReminderMinutes: update.ReminderMinutes,
		Color:           update.Color,
	}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, errors.Validation("title is required")
		}
		patch.Title = &title
	}
	startTs, endTs := event.StartTs, event.EndTs
	if update.StartTime != nil {
		t, err := ParseTime(*update.StartTime)
		if err != nil {
			return nil, err
		}
		ts := t.Unix()
		patch.StartTs, startTs = &ts, ts
	}
	if update.EndTime != nil {
		t, err := ParseTime(*update.EndTime)
		if err != nil {
			return nil, err
		}
		ts := t.Unix()
		patch.EndTs, endTs = &ts, &ts
	}
	if endTs != nil && *endTs < startTs {
		return nil, errors.Validation("end_time must not be before start_time")
	}
	if update.Recurrence != nil {
		if *update.Recurrence != "" && !validRecurrence(*update.Recurrence) {
			return nil, errors.Validation("recurrence must be daily, weekly, monthly, or yearly")
		}
		patch.Recurrence = update.Recurrence
	}

	updated, err := s.store.UpdateCalendarEvent(ctx, patch)
	if err != nil {
		return nil, storeError("failed to update calendar event", err)
	}
	return updated, nil
}

func (s *service) DeleteEvent(ctx context.Context, userID, id int32) error {
	if _, err := s.getOwnedEvent(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteCalendarEvent(ctx, &store.DeleteCalendarEvent{ID: id, UserID: userID}); err != nil {
		return storeError("failed to delete calendar event", err)
	}
	return nil
}

func (s *service) getOwnedEvent(ctx context.Context, userID, id int32) (*store.CalendarEvent, error) {
	list, err := s.store.ListCalendarEvents(ctx, &store.FindCalendarEvent{ID: &id, UserID: &userID})
	if err != nil {
		return nil, storeError("failed to get calendar event", err)
	}
	if len(list) == 0 {
		return nil, errors.NotFound("calendar event")
	}
	return list[0], nil
}
