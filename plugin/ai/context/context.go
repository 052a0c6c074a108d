// Package context builds and caches the per-user context that personalises
// the assistant's system prompt.
package context

import (
	"time"

	"github.com/hrygo/eidos/plugin/ai/collector"
	"github.com/hrygo/eidos/plugin/ai/pattern"
)

const (
	maxInterests = 5
)

// UserContext is an immutable snapshot. A rebuild produces a new value.
type UserContext struct {
	UserID      int32             `json:"user_id"`
	Profile     collector.Profile `json:"profile"`
	Patterns    pattern.Patterns  `json:"patterns"`
	Preferences Preferences       `json:"preferences"`
	Insights    []Insight         `json:"insights"`
	LastUpdated time.Time         `json:"last_updated"`
}

type Preferences struct {
	Interests     []string `json:"interests"`
	ActiveModules []string `json:"active_modules"`
}

// Insight flags a pattern that needs the user's attention.
type Insight struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Priority is "medium" or "high".
	Priority string `json:"priority"`
}

var insightTitles = map[string]string{
	pattern.CategorySleep:            "Sleep quality",
	pattern.CategoryProductivity:     "Productivity",
	pattern.CategoryFinancial:        "Financial health",
	pattern.CategoryHabitConsistency: "Habit consistency",
	pattern.CategoryTimeManagement:   "Time management",
}

// newUserContext derives preferences and insights from collected data.
func newUserContext(data *collector.CollectedData, patterns pattern.Patterns, now time.Time) *UserContext {
	return &UserContext{
		UserID:      data.UserID,
		Profile:     data.Profile,
		Patterns:    patterns,
		Preferences: extractPreferences(data),
		Insights:    generateInsights(patterns),
		LastUpdated: now,
	}
}

func extractPreferences(data *collector.CollectedData) Preferences {
	prefs := Preferences{
		Interests:     []string{},
		ActiveModules: []string{},
	}
	if data.Conversations.Available {
		for i, topic := range data.Conversations.TopTopics {
			if i == maxInterests {
				break
			}
			prefs.Interests = append(prefs.Interests, topic.Word)
		}
	}
	for _, m := range data.Modules.Modules {
		if m.Enabled {
			prefs.ActiveModules = append(prefs.ActiveModules, m.Name)
		}
	}
	return prefs
}

func generateInsights(patterns pattern.Patterns) []Insight {
	insights := []Insight{}
	for _, name := range pattern.Categories {
		p := patterns[name]
		if !p.HasData() {
			continue
		}
		if p.Severity != pattern.SeverityMedium && p.Severity != pattern.SeverityHigh {
			continue
		}
		insights = append(insights, Insight{
			Category:    name,
			Title:       insightTitles[name],
			Description: p.Recommendation,
			Priority:    string(p.Severity),
		})
	}
	return insights
}
