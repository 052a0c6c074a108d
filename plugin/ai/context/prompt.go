package context

import (
	"fmt"
	"strings"

	"github.com/hrygo/eidos/plugin/ai/pattern"
)

const defaultDisplayName = "User"

// Prompt renders uc as a markdown block for the system prompt.
func Prompt(uc *UserContext) string {
	if uc == nil {
		return ""
	}
	var sb strings.Builder

	name := uc.Profile.Name
	if name == "" {
		name = defaultDisplayName
	}
	sb.WriteString("# User context\n\n")
	sb.WriteString("## Profile\n")
	fmt.Fprintf(&sb, "Name: %s\n", name)

	sb.WriteString("\n## Behaviour patterns\n")
	for _, category := range pattern.Categories {
		p := uc.Patterns[category]
		if !p.HasData() {
			continue
		}
		fmt.Fprintf(&sb, "\n### %s\n", category)
		fmt.Fprintf(&sb, "Status: %s\n", p.Status)
		if p.Recommendation != "" {
			fmt.Fprintf(&sb, "Recommendation: %s\n", p.Recommendation)
		}
	}

	if len(uc.Insights) > 0 {
		sb.WriteString("\n## Key insights\n")
		for _, insight := range uc.Insights {
			fmt.Fprintf(&sb, "- [%s] %s: %s\n", insight.Priority, insight.Title, insight.Description)
		}
	}

	prefs := uc.Preferences
	if len(prefs.Interests) > 0 || len(prefs.ActiveModules) > 0 {
		sb.WriteString("\n## Preferences\n")
		if len(prefs.Interests) > 0 {
			fmt.Fprintf(&sb, "Interests: %s\n", strings.Join(prefs.Interests, ", "))
		}
		if len(prefs.ActiveModules) > 0 {
			fmt.Fprintf(&sb, "Active modules: %s\n", strings.Join(prefs.ActiveModules, ", "))
		}
	}
	return sb.String()
}
