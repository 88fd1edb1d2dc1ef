package stack

import (
	"fmt"
	"strings"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/model"
)

// stackMapMarker tags the generated section of a request body
const stackMapMarker = "<!-- stackpr-map -->"

// generateStackMap renders the chain as a markdown table for a request body, with the
// request being opened (titled newTitle) as the last row
func generateStackMap(chain *model.Chain, newTitle string) string {
	var sb strings.Builder

	total := chain.Len() + 1
	fmt.Fprintf(&sb, "## 📚 Stack (%d PRs)\n\n", total)

	sb.WriteString("| # | PR | Status | Title |\n")
	sb.WriteString("|---|-----|---------|---------------------------------------|\n")

	for i, entry := range chain.Entries {
		statusEmoji, statusText := getStatusDisplay(entry.Status)
		fmt.Fprintf(&sb, "| %d | %s | %s %s | %s |\n",
			i+1, entry.URL, statusEmoji, statusText, escapeCell(entry.Title))
	}
	fmt.Fprintf(&sb, "| %d | - | 🆕 New | %s ← **THIS PR** |\n", total, escapeCell(newTitle))

	sb.WriteString("\n**Merge order:** `" + chain.Trunk)
	for _, entry := range chain.Entries {
		fmt.Fprintf(&sb, " → #%d", entry.Number)
	}
	sb.WriteString(" → this PR`\n\n")

	if bottom := chain.Bottom(); bottom != nil {
		fmt.Fprintf(&sb, "💡 **Review tip:** Start from the bottom ([#%d](%s)) for full context\n\n", bottom.Number, bottom.URL)
	}

	sb.WriteString(stackMapMarker + "\n")
	return sb.String()
}

func getStatusDisplay(status gh.State) (emoji, text string) {
	switch status {
	case gh.StateOpen:
		return "✅", "Open"
	case gh.StateDraft:
		return "📝", "Draft"
	case gh.StateMerged:
		return "🟣", "Merged"
	case gh.StateClosed:
		return "❌", "Closed"
	default:
		return "⚪", "Unknown"
	}
}

// escapeCell keeps a title from breaking the table
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
