package context

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/plugin/ai/collector"
	"github.com/hrygo/eidos/plugin/ai/pattern"
)

type fakeCollector struct {
	calls atomic.Int32
	// gate, when set, blocks every Collect until closed.
	gate chan struct{}
	data func(userID int32) *collector.CollectedData
	err  error
}

func (f *fakeCollector) Collect(_ context.Context, userID int32, _ int) (*collector.CollectedData, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.data != nil {
		return f.data(userID), nil
	}
	return &collector.CollectedData{UserID: userID}, nil
}

func richData(userID int32) *collector.CollectedData {
	return &collector.CollectedData{
		UserID:  userID,
		Profile: collector.Profile{Name: "Ada"},
		Sleep: collector.SleepSummary{
			Available: true, RecordsCount: 3, AvgDuration: 5, AvgQuality: 2,
		},
		Habits: collector.HabitsSummary{
			Available: true, HabitsCount: 1,
			Stats: []collector.HabitStat{{Name: "Read", CompletionRate: 0.9}},
		},
		Finance: collector.FinanceSummary{
			Available: true, TotalIncome: 1000, TotalExpenses: 850, Balance: 150,
		},
		Conversations: collector.ConversationSummary{
			Available: true,
			TopTopics: []collector.TopicCount{
				{Word: "sleep", Count: 9}, {Word: "budget", Count: 7}, {Word: "running", Count: 5},
				{Word: "coffee", Count: 4}, {Word: "meetings", Count: 3}, {Word: "travel", Count: 2},
			},
		},
		Modules: collector.ModulesSummary{
			InstalledCount: 2, EnabledCount: 1,
			Modules: []collector.ModuleEntry{
				{Name: "Weather", Enabled: true},
				{Name: "Notes", Enabled: false},
			},
		},
	}
}

func newTestCache(f *fakeCollector, now *time.Time) *Cache {
	c := NewCache(f, Config{TTL: time.Hour})
	c.now = func() time.Time { return *now }
	return c
}

func TestGetOrBuild_DerivesContext(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	c := newTestCache(&fakeCollector{data: richData}, &now)

	uc, err := c.GetOrBuild(context.Background(), 7, false)
	require.NoError(t, err)

	assert.Equal(t, int32(7), uc.UserID)
	assert.Equal(t, now, uc.LastUpdated)
	assert.Len(t, uc.Patterns, len(pattern.Categories))
	assert.Equal(t, []string{"sleep", "budget", "running", "coffee", "meetings"}, uc.Preferences.Interests)
	assert.Equal(t, []string{"Weather"}, uc.Preferences.ActiveModules)

	// sleep needs_improvement, financial moderate; productivity high and habits consistent are ok.
	require.Len(t, uc.Insights, 2)
	assert.Equal(t, Insight{
		Category:    pattern.CategorySleep,
		Title:       "Sleep quality",
		Description: uc.Patterns[pattern.CategorySleep].Recommendation,
		Priority:    "high",
	}, uc.Insights[0])
	assert.Equal(t, pattern.CategoryFinancial, uc.Insights[1].Category)
	assert.Equal(t, "medium", uc.Insights[1].Priority)
}

func TestGetOrBuild_NoDataHasNoInsights(t *testing.T) {
	now := time.Now()
	c := newTestCache(&fakeCollector{}, &now)

	uc, err := c.GetOrBuild(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Empty(t, uc.Insights)
	assert.Empty(t, uc.Preferences.Interests)
	for _, name := range pattern.Categories {
		assert.Equal(t, pattern.StatusNoData, uc.Patterns[name].Status)
	}
}

func TestGetOrBuild_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	f := &fakeCollector{}
	c := newTestCache(f, &now)

	first, err := c.GetOrBuild(ctx, 1, false)
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	second, err := c.GetOrBuild(ctx, 1, false)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), f.calls.Load())

	now = now.Add(time.Minute)
	third, err := c.GetOrBuild(ctx, 1, false)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, int32(2), f.calls.Load())

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Builds)
}

func TestGetOrBuild_ForceRefreshAndInvalidate(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	f := &fakeCollector{}
	c := newTestCache(f, &now)

	_, err := c.GetOrBuild(ctx, 1, false)
	require.NoError(t, err)
	_, err = c.GetOrBuild(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())

	c.Invalidate(1)
	_, err = c.GetOrBuild(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, int32(3), f.calls.Load())

	// Other users are separate keys.
	_, err = c.GetOrBuild(ctx, 2, false)
	require.NoError(t, err)
	assert.Equal(t, int32(4), f.calls.Load())
}

func TestGetOrBuild_ConcurrentBuildsCollapse(t *testing.T) {
	now := time.Now()
	f := &fakeCollector{gate: make(chan struct{})}
	c := newTestCache(f, &now)

	const callers = 8
	results := make([]*UserContext, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uc, err := c.GetOrBuild(context.Background(), 1, i%2 == 0)
			assert.NoError(t, err)
			results[i] = uc
		}(i)
	}

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// Give the remaining callers time to join the in-flight build.
	time.Sleep(50 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for _, uc := range results {
		assert.Same(t, results[0], uc)
	}
}

func TestInvalidate_DuringBuild(t *testing.T) {
	now := time.Now()
	f := &fakeCollector{gate: make(chan struct{})}
	c := newTestCache(f, &now)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.GetOrBuild(context.Background(), 1, false)
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	// A write lands while the first build is still collecting.
	c.Invalidate(1)
	close(f.gate)
	<-done
	assert.Equal(t, 0, c.Stats().Size)

	_, err := c.GetOrBuild(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
	assert.Equal(t, 1, c.Stats().Size)

	// The fresh context is cached again.
	_, err = c.GetOrBuild(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestInvalidate_ForcedRefreshStartsNewBuild(t *testing.T) {
	now := time.Now()
	gate := make(chan struct{})
	f := &fakeCollector{gate: gate}
	c := newTestCache(f, &now)

	first := make(chan struct{})
	go func() {
		defer close(first)
		_, err := c.GetOrBuild(context.Background(), 1, false)
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	c.Invalidate(1)
	second := make(chan struct{})
	go func() {
		defer close(second)
		_, err := c.GetOrBuild(context.Background(), 1, true)
		assert.NoError(t, err)
	}()
	// The refresh does not join the detached build.
	require.Eventually(t, func() bool { return f.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	close(gate)
	<-first
	<-second
	assert.Equal(t, 1, c.Stats().Size)
}

func TestGetOrBuild_ErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	f := &fakeCollector{err: stderrors.New("database is locked")}
	c := newTestCache(f, &now)

	_, err := c.GetOrBuild(ctx, 1, false)
	require.Error(t, err)

	f.err = nil
	uc, err := c.GetOrBuild(ctx, 1, false)
	require.NoError(t, err)
	assert.NotNil(t, uc)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestGetOrBuild_CallerCancellation(t *testing.T) {
	now := time.Now()
	f := &fakeCollector{gate: make(chan struct{})}
	c := newTestCache(f, &now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrBuild(ctx, 1, false)
	assert.ErrorIs(t, err, context.Canceled)

	close(f.gate)
	require.Eventually(t, func() bool { return c.Stats().Size == 1 }, time.Second, 5*time.Millisecond)
}

func TestPrompt(t *testing.T) {
	now := time.Now()
	c := newTestCache(&fakeCollector{data: richData}, &now)
	uc, err := c.GetOrBuild(context.Background(), 1, false)
	require.NoError(t, err)

	prompt := Prompt(uc)
	assert.Contains(t, prompt, "Name: Ada")
	assert.Contains(t, prompt, "### sleep\nStatus: needs_improvement\n")
	assert.Contains(t, prompt, "### habit_consistency\nStatus: consistent\n")
	assert.NotContains(t, prompt, "### time_management")
	assert.Contains(t, prompt, "- [high] Sleep quality: ")
	assert.Contains(t, prompt, "Interests: sleep, budget, running, coffee, meetings\n")
	assert.Contains(t, prompt, "Active modules: Weather\n")
}

func TestPrompt_Empty(t *testing.T) {
	uc := &UserContext{Patterns: pattern.Analyze(&collector.CollectedData{})}
	prompt := Prompt(uc)
	assert.Contains(t, prompt, "Name: User")
	assert.NotContains(t, prompt, "###")
	assert.NotContains(t, prompt, "## Key insights")
	assert.NotContains(t, prompt, "## Preferences")
	assert.Empty(t, Prompt(nil))
}
