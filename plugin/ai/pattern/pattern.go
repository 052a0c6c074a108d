// Package pattern turns collected user data into qualitative assessments.
//
// Each category is a rule table: an availability check, a metrics extractor,
// and an ordered list of rules. The first rule whose predicate holds decides
// the status, the recommendation and the severity.
package pattern

import (
	"sort"

	"github.com/hrygo/eidos/plugin/ai/collector"
)

// Category names. Patterns always carries all of them.
const (
	CategorySleep            = "sleep"
	CategoryProductivity     = "productivity"
	CategoryFinancial        = "financial"
	CategoryHabitConsistency = "habit_consistency"
	CategoryTimeManagement   = "time_management"
)

// Categories lists every category in presentation order.
var Categories = []string{
	CategorySleep,
	CategoryProductivity,
	CategoryFinancial,
	CategoryHabitConsistency,
	CategoryTimeManagement,
}

// Status is a per-category assessment label.
type Status string

const (
	StatusNoData Status = "no_data"

	StatusExcellent        Status = "excellent"
	StatusGood             Status = "good"
	StatusNeedsImprovement Status = "needs_improvement"

	StatusHigh   Status = "high"
	StatusMedium Status = "medium"
	StatusLow    Status = "low"

	StatusHealthy    Status = "healthy"
	StatusModerate   Status = "moderate"
	StatusConcerning Status = "concerning"

	StatusConsistent   Status = "consistent"
	StatusInconsistent Status = "inconsistent"

	StatusNeedsAdjustment Status = "needs_adjustment"
)

// Severity ranks how much a status needs the user's attention.
type Severity string

const (
	SeverityNone   Severity = ""
	SeverityOK     Severity = "ok"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Metric keys.
const (
	MetricAvgDuration    = "avg_duration"
	MetricAvgQuality     = "avg_quality"
	MetricCompletionRate = "habit_completion_rate"
	MetricSavingsRate    = "savings_rate"
	MetricIncome         = "total_income"
	MetricExpenses       = "total_expenses"
	MetricAvgConsistency = "avg_consistency"
	MetricTotalEvents    = "total_events"
	MetricWorkRatio      = "work_ratio"
)

// Pattern is one category's assessment.
type Pattern struct {
	Category       string             `json:"category"`
	Status         Status             `json:"status"`
	Recommendation string             `json:"recommendation,omitempty"`
	Severity       Severity           `json:"severity,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`

	// Habit consistency only.
	StrongestHabits []string `json:"strongest_habits,omitempty"`
	NeedsWork       []string `json:"needs_work,omitempty"`
	// Financial only.
	TopExpenseCategories []collector.CategoryAmount `json:"top_expense_categories,omitempty"`
}

// HasData reports whether the pattern is a real assessment.
func (p *Pattern) HasData() bool {
	return p != nil && p.Status != StatusNoData
}

// Patterns maps every category name to its assessment.
type Patterns map[string]*Pattern

// Analyze evaluates every category against data. It never fails and never
// omits a category.
func Analyze(data *collector.CollectedData) Patterns {
	patterns := make(Patterns, len(table))
	for _, c := range table {
		patterns[c.name] = c.evaluate(data)
	}
	return patterns
}

// Evaluate runs a single category. Unknown categories yield nil.
func Evaluate(category string, data *collector.CollectedData) *Pattern {
	for _, c := range table {
		if c.name == category {
			return c.evaluate(data)
		}
	}
	return nil
}

type rule struct {
	when           func(m map[string]float64) bool
	status         Status
	recommendation string
	severity       Severity
}

type category struct {
	name      string
	available func(d *collector.CollectedData) bool
	metrics   func(d *collector.CollectedData) map[string]float64
	rules     []rule
	// decorate attaches non-numeric detail to an evaluated pattern.
	decorate func(p *Pattern, d *collector.CollectedData)
}

func (c category) evaluate(data *collector.CollectedData) *Pattern {
	p := &Pattern{Category: c.name, Status: StatusNoData}
	if data == nil || !c.available(data) {
		return p
	}
	p.Metrics = c.metrics(data)
	for _, r := range c.rules {
		if r.when == nil || r.when(p.Metrics) {
			p.Status = r.status
			p.Recommendation = r.recommendation
			p.Severity = r.severity
			break
		}
	}
	if c.decorate != nil {
		c.decorate(p, data)
	}
	return p
}

func otherwise(map[string]float64) bool { return true }

var table = []category{
	{
		name:      CategorySleep,
		available: func(d *collector.CollectedData) bool { return d.Sleep.Available },
		metrics: func(d *collector.CollectedData) map[string]float64 {
			return map[string]float64{
				MetricAvgDuration: d.Sleep.AvgDuration,
				MetricAvgQuality:  d.Sleep.AvgQuality,
			}
		},
		rules: []rule{
			{
				when: func(m map[string]float64) bool {
					return m[MetricAvgDuration] >= 7 && m[MetricAvgQuality] >= 4
				},
				status:         StatusExcellent,
				recommendation: "Excellent sleep routine! Keep it up.",
				severity:       SeverityOK,
			},
			{
				when: func(m map[string]float64) bool {
					return m[MetricAvgDuration] >= 6 && m[MetricAvgQuality] >= 3
				},
				status:         StatusGood,
				recommendation: "Good sleep, but the quality could be better.",
				severity:       SeverityMedium,
			},
			{
				when:           otherwise,
				status:         StatusNeedsImprovement,
				recommendation: "Pay attention to both the quality and the length of your sleep.",
				severity:       SeverityHigh,
			},
		},
	},
	{
		name: CategoryProductivity,
		available: func(d *collector.CollectedData) bool {
			return d.Habits.Available || d.Calendar.Available
		},
		metrics: func(d *collector.CollectedData) map[string]float64 {
			return map[string]float64{MetricCompletionRate: meanCompletion(d.Habits)}
		},
		rules: []rule{
			{
				when:           func(m map[string]float64) bool { return m[MetricCompletionRate] > 0.7 },
				status:         StatusHigh,
				recommendation: "Great productivity! You are getting most of your tasks done.",
				severity:       SeverityOK,
			},
			{
				when:           func(m map[string]float64) bool { return m[MetricCompletionRate] > 0.4 },
				status:         StatusMedium,
				recommendation: "Not bad, but there is room to grow. Try planning tasks in advance.",
				severity:       SeverityMedium,
			},
			{
				when:           otherwise,
				status:         StatusLow,
				recommendation: "Consider rethinking how you plan. Start small.",
				severity:       SeverityHigh,
			},
		},
	},
	{
		name:      CategoryFinancial,
		available: func(d *collector.CollectedData) bool { return d.Finance.Available },
		metrics: func(d *collector.CollectedData) map[string]float64 {
			f := d.Finance
			rate := 0.0
			if f.TotalIncome > 0 {
				rate = f.Balance / f.TotalIncome * 100
			}
			return map[string]float64{
				MetricSavingsRate: rate,
				MetricIncome:      f.TotalIncome,
				MetricExpenses:    f.TotalExpenses,
			}
		},
		rules: []rule{
			{
				when:           func(m map[string]float64) bool { return m[MetricSavingsRate] > 20 },
				status:         StatusHealthy,
				recommendation: "Excellent money management! Keep saving.",
				severity:       SeverityOK,
			},
			{
				when:           func(m map[string]float64) bool { return m[MetricSavingsRate] > 10 },
				status:         StatusModerate,
				recommendation: "Not bad, but you could save more.",
				severity:       SeverityMedium,
			},
			{
				when:           otherwise,
				status:         StatusConcerning,
				recommendation: "Review your expenses and start putting more aside.",
				severity:       SeverityHigh,
			},
		},
		decorate: func(p *Pattern, d *collector.CollectedData) {
			p.TopExpenseCategories = d.Finance.TopCategories
		},
	},
	{
		name:      CategoryHabitConsistency,
		available: func(d *collector.CollectedData) bool { return d.Habits.Available && len(d.Habits.Stats) > 0 },
		metrics: func(d *collector.CollectedData) map[string]float64 {
			return map[string]float64{MetricAvgConsistency: meanCompletion(d.Habits)}
		},
		rules: []rule{
			{
				when:           func(m map[string]float64) bool { return m[MetricAvgConsistency] > 0.7 },
				status:         StatusConsistent,
				recommendation: "Your habits are consistent. Keep the streaks going.",
				severity:       SeverityOK,
			},
			{
				when:           otherwise,
				status:         StatusInconsistent,
				recommendation: "Your habits are irregular. Focus on the ones that slip most.",
				severity:       SeverityHigh,
			},
		},
		decorate: func(p *Pattern, d *collector.CollectedData) {
			for _, s := range d.Habits.Stats {
				if s.CompletionRate > 0.8 {
					p.StrongestHabits = append(p.StrongestHabits, s.Name)
				}
				if s.CompletionRate < 0.5 {
					p.NeedsWork = append(p.NeedsWork, s.Name)
				}
			}
			sort.Strings(p.StrongestHabits)
			sort.Strings(p.NeedsWork)
		},
	},
	{
		name:      CategoryTimeManagement,
		available: func(d *collector.CollectedData) bool { return d.Calendar.Available },
		metrics: func(d *collector.CollectedData) map[string]float64 {
			types := d.Calendar.EventTypes
			total := 0
			for _, n := range types {
				total += n
			}
			ratio := 0.0
			if total > 0 {
				ratio = float64(types[collector.EventTypeWork]+types[collector.EventTypeMeetings]) / float64(total)
			}
			return map[string]float64{
				MetricTotalEvents: float64(total),
				MetricWorkRatio:   ratio,
			}
		},
		rules: []rule{
			{
				when:           func(m map[string]float64) bool { return m[MetricWorkRatio] > 0.8 },
				status:         StatusNeedsAdjustment,
				recommendation: "Too many work events. Make room for rest and hobbies.",
				severity:       SeverityHigh,
			},
			{
				when:           func(m map[string]float64) bool { return m[MetricWorkRatio] < 0.3 },
				status:         StatusNeedsAdjustment,
				recommendation: "Few work events. Consider giving your working time more structure.",
				severity:       SeverityHigh,
			},
			{
				when: func(m map[string]float64) bool {
					return m[MetricWorkRatio] >= 0.4 && m[MetricWorkRatio] <= 0.7
				},
				status:         StatusGood,
				recommendation: "Good balance between work and personal time!",
				severity:       SeverityOK,
			},
			{
				when:           otherwise,
				status:         StatusNeedsAdjustment,
				recommendation: "Good balance between work and personal time!",
				severity:       SeverityMedium,
			},
		},
	},
}

func meanCompletion(h collector.HabitsSummary) float64 {
	if !h.Available || len(h.Stats) == 0 {
		return 0
	}
	var sum float64
	for _, s := range h.Stats {
		sum += s.CompletionRate
	}
	return sum / float64(len(h.Stats))
}
