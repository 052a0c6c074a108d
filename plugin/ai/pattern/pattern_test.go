package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/plugin/ai/collector"
)

func TestAnalyze_EmptyDataIsNoData(t *testing.T) {
	patterns := Analyze(&collector.CollectedData{})

	require.Len(t, patterns, len(Categories))
	for _, name := range Categories {
		p, ok := patterns[name]
		require.True(t, ok, name)
		assert.Equal(t, StatusNoData, p.Status, name)
		assert.False(t, p.HasData())
		assert.Empty(t, p.Recommendation)
		assert.Equal(t, SeverityNone, p.Severity)
	}
}

func TestAnalyze_NilData(t *testing.T) {
	patterns := Analyze(nil)
	require.Len(t, patterns, len(Categories))
	assert.Equal(t, StatusNoData, patterns[CategorySleep].Status)
}

func sleepData(duration, quality float64) *collector.CollectedData {
	return &collector.CollectedData{Sleep: collector.SleepSummary{
		Available:    true,
		RecordsCount: 1,
		AvgDuration:  duration,
		AvgQuality:   quality,
	}}
}

func TestSleepRules(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		quality  float64
		status   Status
		severity Severity
	}{
		{"thresholds are inclusive", 7, 4, StatusExcellent, SeverityOK},
		{"long and restful", 8.5, 9, StatusExcellent, SeverityOK},
		{"long but poor quality", 8, 3.5, StatusGood, SeverityMedium},
		{"lower thresholds inclusive", 6, 3, StatusGood, SeverityMedium},
		{"short", 5.9, 9, StatusNeedsImprovement, SeverityHigh},
		{"restless", 7, 2, StatusNeedsImprovement, SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Evaluate(CategorySleep, sleepData(tt.duration, tt.quality))
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.severity, p.Severity)
			assert.NotEmpty(t, p.Recommendation)
			assert.Equal(t, tt.duration, p.Metrics[MetricAvgDuration])
		})
	}
}

func habitsData(rates ...float64) collector.HabitsSummary {
	h := collector.HabitsSummary{Available: true, HabitsCount: len(rates)}
	for i, r := range rates {
		h.Stats = append(h.Stats, collector.HabitStat{Name: string(rune('E' - i)), CompletionRate: r})
	}
	return h
}

func TestProductivityRules(t *testing.T) {
	tests := []struct {
		name   string
		rates  []float64
		status Status
	}{
		{"high", []float64{0.9, 0.8}, StatusHigh},
		{"boundary is exclusive", []float64{0.7}, StatusMedium},
		{"medium", []float64{0.6, 0.3}, StatusMedium},
		{"low", []float64{0.4}, StatusLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Evaluate(CategoryProductivity, &collector.CollectedData{Habits: habitsData(tt.rates...)})
			assert.Equal(t, tt.status, p.Status)
			assert.NotEmpty(t, p.Recommendation)
		})
	}

	t.Run("calendar alone counts as data", func(t *testing.T) {
		p := Evaluate(CategoryProductivity, &collector.CollectedData{
			Calendar: collector.CalendarSummary{Available: true, EventsCount: 1},
		})
		assert.Equal(t, StatusLow, p.Status)
		assert.Zero(t, p.Metrics[MetricCompletionRate])
	})
}

func TestFinancialRules(t *testing.T) {
	finance := func(income, expenses float64) *collector.CollectedData {
		return &collector.CollectedData{Finance: collector.FinanceSummary{
			Available:     true,
			TotalIncome:   income,
			TotalExpenses: expenses,
			Balance:       income - expenses,
			TopCategories: []collector.CategoryAmount{{Category: "Food", Amount: expenses}},
		}}
	}

	p := Evaluate(CategoryFinancial, finance(1000, 700))
	assert.Equal(t, StatusHealthy, p.Status)
	assert.InDelta(t, 30, p.Metrics[MetricSavingsRate], 1e-9)
	assert.Equal(t, "Food", p.TopExpenseCategories[0].Category)

	assert.Equal(t, StatusModerate, Evaluate(CategoryFinancial, finance(1000, 850)).Status)
	assert.Equal(t, StatusConcerning, Evaluate(CategoryFinancial, finance(1000, 900)).Status)

	noIncome := Evaluate(CategoryFinancial, finance(0, 100))
	assert.Equal(t, StatusConcerning, noIncome.Status)
	assert.Zero(t, noIncome.Metrics[MetricSavingsRate])
	assert.Equal(t, SeverityHigh, noIncome.Severity)
}

func TestHabitConsistencyRules(t *testing.T) {
	p := Evaluate(CategoryHabitConsistency, &collector.CollectedData{Habits: habitsData(0.9, 0.85, 0.3)})
	assert.Equal(t, StatusInconsistent, p.Status)
	assert.Equal(t, []string{"D", "E"}, p.StrongestHabits)
	assert.Equal(t, []string{"C"}, p.NeedsWork)

	p = Evaluate(CategoryHabitConsistency, &collector.CollectedData{Habits: habitsData(1, 0.75)})
	assert.Equal(t, StatusConsistent, p.Status)
	assert.Equal(t, SeverityOK, p.Severity)
	assert.Empty(t, p.NeedsWork)
}

func TestTimeManagementRules(t *testing.T) {
	calendar := func(types map[string]int) *collector.CollectedData {
		return &collector.CollectedData{Calendar: collector.CalendarSummary{Available: true, EventTypes: types}}
	}

	tests := []struct {
		name     string
		types    map[string]int
		status   Status
		severity Severity
		ratio    float64
	}{
		{"balanced", map[string]int{collector.EventTypeWork: 3, collector.EventTypeMeetings: 2, collector.EventTypeOther: 5}, StatusGood, SeverityOK, 0.5},
		{"upper bound inclusive", map[string]int{collector.EventTypeWork: 7, collector.EventTypeFitness: 3}, StatusGood, SeverityOK, 0.7},
		{"overworked", map[string]int{collector.EventTypeMeetings: 9, collector.EventTypeOther: 1}, StatusNeedsAdjustment, SeverityHigh, 0.9},
		{"unstructured", map[string]int{collector.EventTypeWork: 1, collector.EventTypeFitness: 4}, StatusNeedsAdjustment, SeverityHigh, 0.2},
		{"slightly off", map[string]int{collector.EventTypeWork: 3, collector.EventTypeOther: 7}, StatusNeedsAdjustment, SeverityMedium, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Evaluate(CategoryTimeManagement, calendar(tt.types))
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.severity, p.Severity)
			assert.InDelta(t, tt.ratio, p.Metrics[MetricWorkRatio], 1e-9)
			assert.NotEmpty(t, p.Recommendation)
		})
	}
}

func TestEveryRuleHasRecommendation(t *testing.T) {
	for _, c := range table {
		require.NotEmpty(t, c.rules, c.name)
		for _, r := range c.rules {
			assert.NotEmpty(t, r.recommendation, "%s/%s", c.name, r.status)
			assert.NotEqual(t, StatusNoData, r.status)
			assert.NotEqual(t, SeverityNone, r.severity)
		}
		last := c.rules[len(c.rules)-1]
		assert.True(t, last.when(nil), "%s must end with a catch-all rule", c.name)
	}
}

func TestEvaluate_UnknownCategory(t *testing.T) {
	assert.Nil(t, Evaluate("weather", &collector.CollectedData{}))
}
