package store

import "context"

type SleepRecord struct {
	ID        int32
	UserID    int32
	Quality   int32
	Duration  float64 // hours
	SleepTs   int64
	WakeTs    int64
	Mood      string
	Notes     string
	CreatedTs int64
}

type FindSleepRecord struct {
	ID     *int32
	UserID *int32
	// SleepTsAfter filters records with sleep_ts >= the value.
	SleepTsAfter *int64

	Limit *int
}

type DeleteSleepRecord struct {
	ID     int32
	UserID int32
}

func (s *Store) CreateSleepRecord(ctx context.Context, create *SleepRecord) (*SleepRecord, error) {
	return s.driver.CreateSleepRecord(ctx, create)
}

// ListSleepRecords returns records ordered by sleep_ts descending.
func (s *Store) ListSleepRecords(ctx context.Context, find *FindSleepRecord) ([]*SleepRecord, error) {
	return s.driver.ListSleepRecords(ctx, find)
}

func (s *Store) GetSleepRecord(ctx context.Context, find *FindSleepRecord) (*SleepRecord, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.driver.ListSleepRecords(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) DeleteSleepRecord(ctx context.Context, delete *DeleteSleepRecord) error {
	return s.driver.DeleteSleepRecord(ctx, delete)
}
