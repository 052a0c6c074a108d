package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/store"
)

func validFrequency(frequency string) bool {
	switch store.HabitFrequency(frequency) {
	case store.HabitFrequencyDaily, store.HabitFrequencyWeekly, store.HabitFrequencyMonthly:
		return true
	}
	return false
}

func (s *service) CreateHabit(ctx context.Context, userID int32, input *HabitInput) (*store.Habit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.Validation("habit name is required")
	}
	frequency := input.Frequency
	if frequency == "" {
		frequency = string(store.HabitFrequencyDaily)
	}
	if !validFrequency(frequency) {
		return nil, errors.Validation("frequency must be daily, weekly, or monthly")
	}
	target := input.TargetCount
	if target == 0 {
		target = 1
	}
	if target < 1 {
		return nil, errors.Validation("target_count must be at least 1")
	}

	habit, err := s.store.CreateHabit(ctx, &store.Habit{
		UserID:      userID,
		Name:        name,
		Description: input.Description,
		Frequency:   store.HabitFrequency(frequency),
		TargetCount: target,
		Icon:        input.Icon,
		Color:       input.Color,
		Active:      true,
		CreatedTs:   s.now().Unix(),
	})
	if err != nil {
		return nil, storeError("failed to create habit", err)
	}
	return habit, nil
}

func (s *service) ListHabits(ctx context.Context, userID int32, activeOnly bool) ([]*HabitView, error) {
	find := &store.FindHabit{UserID: &userID}
	if activeOnly {
		active := true
		find.Active = &active
	}
	habits, err := s.store.ListHabits(ctx, find)
	if err != nil {
		return nil, storeError("failed to list habits", err)
	}
	logs, err := s.store.ListHabitLogs(ctx, &store.FindHabitLog{UserID: &userID})
	if err != nil {
		return nil, storeError("failed to list habit logs", err)
	}
	byHabit := groupLogs(logs)

	views := make([]*HabitView, 0, len(habits))
	for _, h := range habits {
		views = append(views, s.view(h, byHabit[h.ID]))
	}
	return views, nil
}

func (s *service) GetHabit(ctx context.Context, userID, id int32) (*HabitView, error) {
	habit, err := s.getOwnedHabit(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.ListHabitLogs(ctx, &store.FindHabitLog{HabitID: &id})
	if err != nil {
		return nil, storeError("failed to list habit logs", err)
	}
	return s.view(habit, logs), nil
}

func (s *service) UpdateHabit(ctx context.Context, userID, id int32, update *HabitUpdate) (*store.Habit, error) {
	habit, err := s.getOwnedHabit(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch := &store.UpdateHabit{
		ID:          id,
		Description: update.Description,
		Icon:        update.Icon,
		Color:       update.Color,
		Active:      update.Active,
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, errors.Validation("habit name is required")
		}
		patch.Name = &name
	}
	if update.Frequency != nil {
		if !validFrequency(*update.Frequency) {
			return nil, errors.Validation("frequency must be daily, weekly, or monthly")
		}
		frequency := store.HabitFrequency(*update.Frequency)
		patch.Frequency = &frequency
	}
	if update.TargetCount != nil {
		if *update.TargetCount < 1 {
			return nil, errors.Validation("target_count must be at least 1")
		}
		patch.TargetCount = update.TargetCount
	}
	if patch.Name == nil && patch.Description == nil && patch.Frequency == nil && patch.TargetCount == nil &&
		patch.Icon == nil && patch.Color == nil && patch.Active == nil {
		return habit, nil
	}

	updated, err := s.store.UpdateHabit(ctx, patch)
	if err != nil {
		return nil, storeError("failed to update habit", err)
	}
	return updated, nil
}

func (s *service) DeleteHabit(ctx context.Context, userID, id int32) error {
	if _, err := s.getOwnedHabit(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteHabit(ctx, &store.DeleteHabit{ID: id, UserID: userID}); err != nil {
		return storeError("failed to delete habit", err)
	}
	return nil
}

func (s *service) LogHabit(ctx context.Context, userID, habitID int32, notes string) (*store.HabitLog, error) {
	if _, err := s.getOwnedHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}
	log, err := s.store.CreateHabitLog(ctx, &store.HabitLog{
		HabitID:     habitID,
		CompletedTs: s.now().Unix(),
		Notes:       notes,
	})
	if err != nil {
		return nil, storeError("failed to log habit", err)
	}
	return log, nil
}

func (s *service) ListHabitLogs(ctx context.Context, userID, habitID int32) ([]*store.HabitLog, error) {
	if _, err := s.getOwnedHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}
	logs, err := s.store.ListHabitLogs(ctx, &store.FindHabitLog{HabitID: &habitID})
	if err != nil {
		return nil, storeError("failed to list habit logs", err)
	}
	return logs, nil
}

func (s *service) HabitStats(ctx context.Context, userID int32) (*HabitStats, error) {
	habits, err := s.store.ListHabits(ctx, &store.FindHabit{UserID: &userID})
	if err != nil {
		return nil, storeError("failed to list habits", err)
	}
	logs, err := s.store.ListHabitLogs(ctx, &store.FindHabitLog{UserID: &userID})
	if err != nil {
		return nil, storeError("failed to list habit logs", err)
	}
	byHabit := groupLogs(logs)

	stats := &HabitStats{
		TotalHabits:      len(habits),
		TotalCompletions: len(logs),
	}
	weekAgo := s.now().Add(-7 * day).Unix()
	recent := 0
	for _, h := range habits {
		if h.Active {
			stats.ActiveHabits++
		}
		for _, l := range byHabit[h.ID] {
			if l.CompletedTs >= weekAgo {
				recent++
			}
		}
		stats.BestStreak = max(stats.BestStreak, Streak(byHabit[h.ID], s.now()))
	}
	if expected := stats.ActiveHabits * 7; expected > 0 {
		stats.CompletionRate = round(float64(recent)/float64(expected)*100, 1)
	}
	return stats, nil
}

func (s *service) getOwnedHabit(ctx context.Context, userID, id int32) (*store.Habit, error) {
	habit, err := s.store.GetHabit(ctx, &store.FindHabit{ID: &id, UserID: &userID})
	if err != nil {
		return nil, storeError("failed to get habit", err)
	}
	if habit == nil {
		return nil, errors.NotFound("habit")
	}
	return habit, nil
}

func (s *service) view(h *store.Habit, logs []*store.HabitLog) *HabitView {
	today := startOfDay(s.now()).Unix()
	count := 0
	for _, l := range logs {
		if l.CompletedTs >= today {
			count++
		}
	}
	return &HabitView{
		Habit:      h,
		TodayCount: count,
		Streak:     Streak(logs, s.now()),
	}
}

func groupLogs(logs []*store.HabitLog) map[int32][]*store.HabitLog {
	byHabit := make(map[int32][]*store.HabitLog)
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l)
	}
	return byHabit
}

// Streak counts consecutive UTC days, ending today, that have at least one log.
func Streak(logs []*store.HabitLog, now time.Time) int {
	days := make(map[int64]struct{}, len(logs))
	for _, l := range logs {
		days[startOfDay(time.Unix(l.CompletedTs, 0)).Unix()] = struct{}{}
	}
	streak := 0
	for d := startOfDay(now); ; d = d.Add(-day) {
		if _, ok := days[d.Unix()]; !ok {
			return streak
		}
		streak++
	}
}
