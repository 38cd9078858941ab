package modes

import (
	"fmt"
	"strings"

	"github.com/roomodes/roomodes/pkg/models"
)

// SystemPrompt renders the system prompt text for a mode: the role
// definition followed by instruction, usage, and tool-group sections.
func SystemPrompt(mode *models.Mode) string {
	if mode == nil {
		return "You are a helpful AI assistant."
	}

	var b strings.Builder
	b.WriteString(mode.RoleDefinition)

	if mode.CustomInstructions != "" {
		b.WriteString("\n\n## Mode Instructions\n\n")
		b.WriteString(mode.CustomInstructions)
	}

	if mode.WhenToUse != "" {
		b.WriteString("\n\n## When to Use This Mode\n\n")
		b.WriteString(mode.WhenToUse)
	}

	if len(mode.Groups) > 0 {
		names := make([]string, 0, len(mode.Groups))
		for _, entry := range mode.Groups {
			if entry.Options != nil && entry.Options.FileRegex != "" {
				names = append(names, fmt.Sprintf("%s (restricted to: %s)", entry.Group, entry.Options.FileRegex))
			} else {
				names = append(names, string(entry.Group))
			}
		}
		b.WriteString("\n\n## Available Tool Groups\n\n")
		b.WriteString(strings.Join(names, ", "))
	}

	return b.String()
}
