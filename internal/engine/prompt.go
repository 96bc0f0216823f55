package engine

import "strings"

// BuildPrompt flattens chat messages into a plain prompt for runtimes that
// take raw text. Kept deliberately simple: the fixture's job is to exercise
// client plumbing, not to match any model's chat template exactly.
func BuildPrompt(msgs []Message) string {
	var b strings.Builder
	for _, m := range msgs {
		role := m.Role
		if role == "" {
			role = "user"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("assistant: ")
	return b.String()
}
