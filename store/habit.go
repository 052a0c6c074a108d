package store

import "context"

type HabitFrequency string

const (
	HabitFrequencyDaily   HabitFrequency = "daily"
	HabitFrequencyWeekly  HabitFrequency = "weekly"
	HabitFrequencyMonthly HabitFrequency = "monthly"
)

type Habit struct {
	ID          int32
	UserID      int32
	Name        string
	Description string
	Frequency   HabitFrequency
	TargetCount int32
	Icon        string
	Color       string
	Active      bool
	CreatedTs   int64
}

type FindHabit struct {
	ID     *int32
	UserID *int32
	Active *bool
}

type UpdateHabit struct {
	ID int32

	Name        *string
	Description *string
	Frequency   *HabitFrequency
	TargetCount *int32
	Icon        *string
	Color       *string
	Active      *bool
}

type DeleteHabit struct {
	ID     int32
	UserID int32
}

type HabitLog struct {
	ID          int32
	HabitID     int32
	CompletedTs int64
	Notes       string
}

type FindHabitLog struct {
	HabitID *int32
	// UserID joins through habit ownership.
	UserID           *int32
	CompletedTsAfter *int64
}

func (s *Store) CreateHabit(ctx context.Context, create *Habit) (*Habit, error) {
	return s.driver.CreateHabit(ctx, create)
}

// ListHabits returns habits ordered by created_ts ascending.
func (s *Store) ListHabits(ctx context.Context, find *FindHabit) ([]*Habit, error) {
	return s.driver.ListHabits(ctx, find)
}

func (s *Store) GetHabit(ctx context.Context, find *FindHabit) (*Habit, error) {
	list, err := s.driver.ListHabits(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateHabit(ctx context.Context, update *UpdateHabit) (*Habit, error) {
	return s.driver.UpdateHabit(ctx, update)
}

// DeleteHabit removes the habit and its logs.
func (s *Store) DeleteHabit(ctx context.Context, delete *DeleteHabit) error {
	return s.driver.DeleteHabit(ctx, delete)
}

func (s *Store) CreateHabitLog(ctx context.Context, create *HabitLog) (*HabitLog, error) {
	return s.driver.CreateHabitLog(ctx, create)
}

// ListHabitLogs returns logs ordered by completed_ts descending.
func (s *Store) ListHabitLogs(ctx context.Context, find *FindHabitLog) ([]*HabitLog, error) {
	return s.driver.ListHabitLogs(ctx, find)
}
