package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/eidos/plugin/ai/agent/tools"
)

// PromptModule is an installed module as listed in the system prompt.
type PromptModule struct {
	Name        string
	Description string
}

// PromptInput is everything the system prompt is rendered from.
type PromptInput struct {
	UserName string
	// Context is the rendered user context block.
	Context string
	Modules []PromptModule
	// Tools is the turn's catalog. Only names and descriptions are listed.
	Tools []*tools.Descriptor
	Now   time.Time
}

var builtinModules = []PromptModule{
	{Name: "Calendar", Description: "events and reminders"},
	{Name: "Sleep Tracker", Description: "sleep quality and duration"},
	{Name: "Habit Tracker", Description: "habits and daily goals"},
	{Name: "Finance Manager", Description: "income, expenses and budget"},
}

const promptRules = `Rules:
- When the user asks you to do something, call the matching function.
- When the user mentions their sleep, record it with create_sleep_record.
- If no function fits, say so plainly.
- If a function reports an error, explain it briefly and suggest what to try.
- Be friendly and concise. Answer in the user's language.`

// BuildSystemPrompt renders the assistant persona, the user's context and
// the modules and functions available in this turn.
func BuildSystemPrompt(in *PromptInput) string {
	name := in.UserName
	if name == "" {
		name = "the user"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are the personal AI assistant of %s.\n", name)
	b.WriteString("You help them manage their life through the modular Eidos platform.\n")
	if !in.Now.IsZero() {
		fmt.Fprintf(&b, "Current time: %s\n", in.Now.UTC().Format(time.RFC3339))
	}

	if in.Context != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(in.Context, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\nInstalled modules:\n")
	for _, m := range builtinModules {
		fmt.Fprintf(&b, "- %s (built-in): %s\n", m.Name, m.Description)
	}
	for _, m := range in.Modules {
		if m.Description == "" {
			fmt.Fprintf(&b, "- %s\n", m.Name)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", m.Name, m.Description)
	}

	if len(in.Tools) > 0 {
		b.WriteString("\nAvailable functions:\n")
		for _, d := range in.Tools {
			fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
		}
	}

	b.WriteString("\n")
	b.WriteString(promptRules)
	b.WriteString("\n")
	return b.String()
}
