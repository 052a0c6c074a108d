package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/store"
)

func TestSleepRecordStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user, err := CreateTestingUser(ctx, ts, "sleeper")
	require.NoError(t, err)

	now := time.Now().Unix()
	day := int64(24 * 60 * 60)
	for i, quality := range []int32{8, 6, 3} {
		sleepTs := now - int64(i)*day - 8*3600
		_, err := ts.CreateSleepRecord(ctx, &store.SleepRecord{
			UserID:   user.ID,
			Quality:  quality,
			Duration: 8,
			SleepTs:  sleepTs,
			WakeTs:   sleepTs + 8*3600,
			Mood:     "good",
		})
		require.NoError(t, err)
	}

	list, err := ts.ListSleepRecords(ctx, &store.FindSleepRecord{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Newest first.
	require.Equal(t, int32(8), list[0].Quality)
	require.Equal(t, int32(3), list[2].Quality)

	boundary := list[1].SleepTs
	windowed, err := ts.ListSleepRecords(ctx, &store.FindSleepRecord{UserID: &user.ID, SleepTsAfter: &boundary})
	require.NoError(t, err)
	require.Len(t, windowed, 2, "window start is inclusive")

	other := user.ID + 100
	require.NoError(t, ts.DeleteSleepRecord(ctx, &store.DeleteSleepRecord{ID: list[0].ID, UserID: other}))
	got, err := ts.GetSleepRecord(ctx, &store.FindSleepRecord{ID: &list[0].ID})
	require.NoError(t, err)
	require.NotNil(t, got, "delete is scoped to the owner")

	require.NoError(t, ts.DeleteSleepRecord(ctx, &store.DeleteSleepRecord{ID: list[0].ID, UserID: user.ID}))
	got, err = ts.GetSleepRecord(ctx, &store.FindSleepRecord{ID: &list[0].ID})
	require.NoError(t, err)
	require.Nil(t, got)
}
