package tracker

import (
	"context"
	"time"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/store"
)

// Moods accepted on a sleep record.
var Moods = []string{"great", "good", "normal", "bad", "terrible"}

const defaultListLimit = 30

func isMood(mood string) bool {
	for _, m := range Moods {
		if m == mood {
			return true
		}
	}
	return false
}

func (s *service) CreateSleepRecord(ctx context.Context, userID int32, input *SleepInput) (*store.SleepRecord, error) {
	if input.Quality < 0 || input.Quality > 10 {
		return nil, errors.Validation("quality must be between 0 and 10")
	}
	if input.Duration <= 0 {
		return nil, errors.Validation("duration must be positive")
	}
	if input.Mood != "" && !isMood(input.Mood) {
		return nil, errors.Validation("mood must be one of great, good, normal, bad, terrible")
	}

	wake := s.now()
	if input.WakeTime != "" {
		t, err := ParseTime(input.WakeTime)
		if err != nil {
			return nil, err
		}
		wake = t
	}
	sleep := wake.Add(-time.Duration(input.Duration * float64(time.Hour)))
	if input.SleepTime != "" {
		t, err := ParseTime(input.SleepTime)
		if err != nil {
			return nil, err
		}
		sleep = t
	}

	record, err := s.store.CreateSleepRecord(ctx, &store.SleepRecord{
		UserID:    userID,
		Quality:   input.Quality,
		Duration:  input.Duration,
		SleepTs:   sleep.Unix(),
		WakeTs:    wake.Unix(),
		Mood:      input.Mood,
		Notes:     input.Notes,
		CreatedTs: s.now().Unix(),
	})
	if err != nil {
		return nil, storeError("failed to create sleep record", err)
	}
	return record, nil
}

func (s *service) ListSleepRecords(ctx context.Context, userID int32, limit int) ([]*store.SleepRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	list, err := s.store.ListSleepRecords(ctx, &store.FindSleepRecord{UserID: &userID, Limit: &limit})
	if err != nil {
		return nil, storeError("failed to list sleep records", err)
	}
	return list, nil
}

func (s *service) DeleteSleepRecord(ctx context.Context, userID, id int32) error {
	record, err := s.store.GetSleepRecord(ctx, &store.FindSleepRecord{ID: &id, UserID: &userID})
	if err != nil {
		return storeError("failed to get sleep record", err)
	}
	if record == nil {
		return errors.NotFound("sleep record")
	}
	if err := s.store.DeleteSleepRecord(ctx, &store.DeleteSleepRecord{ID: id, UserID: userID}); err != nil {
		return storeError("failed to delete sleep record", err)
	}
	return nil
}

func (s *service) SleepStats(ctx context.Context, userID int32) (*SleepStats, error) {
	records, err := s.store.ListSleepRecords(ctx, &store.FindSleepRecord{UserID: &userID})
	if err != nil {
		return nil, storeError("failed to list sleep records", err)
	}
	stats := &SleepStats{}
	if len(records) == 0 {
		return stats, nil
	}

	weekAgo := s.now().Add(-7 * day).Unix()
	var qualitySum, durationSum, recentQuality, recentDuration float64
	recent := 0
	stats.BestQuality, stats.WorstQuality = records[0].Quality, records[0].Quality
	for _, r := range records {
		qualitySum += float64(r.Quality)
		durationSum += r.Duration
		stats.BestQuality = max(stats.BestQuality, r.Quality)
		stats.WorstQuality = min(stats.WorstQuality, r.Quality)
		if r.SleepTs >= weekAgo {
			recent++
			recentQuality += float64(r.Quality)
			recentDuration += r.Duration
		}
	}

	n := float64(len(records))
	stats.TotalRecords = len(records)
	stats.AvgQuality = round(qualitySum/n, 1)
	stats.AvgDuration = round(durationSum/n, 1)
	stats.TotalSleepHours = round(durationSum, 1)
	if recent > 0 {
		stats.Last7DaysAvgQuality = round(recentQuality/float64(recent), 1)
		stats.Last7DaysAvgDuration = round(recentDuration/float64(recent), 1)
	}
	return stats, nil
}
