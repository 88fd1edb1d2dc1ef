package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bjulian5/stackpr/internal/model"
)

// Truncate truncates text to maxLen with an ellipsis if needed.
// Uses lipgloss for ANSI-aware width handling.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if lipgloss.Width(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return lipgloss.NewStyle().MaxWidth(maxLen).Render(text)
	}
	return lipgloss.NewStyle().MaxWidth(maxLen-3).Render(text) + "..."
}

// RenderBox renders content in a rounded box with an optional title
func RenderBox(title string, content string) string {
	if title == "" {
		return BoxStyle.Render(content)
	}
	combined := lipgloss.JoinVertical(lipgloss.Left, HeaderStyle.Render(title), "", content)
	return BoxStyle.BorderForeground(ColorPrimary).Render(combined)
}

func RenderKeyValue(key string, value string) string {
	return fmt.Sprintf("%s %s", DimStyle.Render(key+":"), value)
}

// KeyValue is one row of RenderKeyValueList
type KeyValue struct {
	Key   string
	Value string
}

// RenderKeyValueList renders rows with their keys padded to a common width
func RenderKeyValueList(pairs []KeyValue) string {
	maxKeyLen := 0
	for _, p := range pairs {
		maxKeyLen = max(maxKeyLen, lipgloss.Width(p.Key))
	}

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		key := lipgloss.PlaceHorizontal(maxKeyLen, lipgloss.Left, p.Key)
		lines = append(lines, fmt.Sprintf("%s %s", DimStyle.Render(key+":"), p.Value))
	}
	return strings.Join(lines, "\n")
}

// RenderBulletList renders a list with bullets
func RenderBulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, DimStyle.Render("  • ")+item)
	}
	return strings.Join(lines, "\n")
}

// FormatEntryFinderLine formats an entry for fuzzy finder display.
// Fuzzy finder doesn't support ANSI codes, so we use plain text.
func FormatEntryFinderLine(position int, entry model.StackEntry) string {
	return fmt.Sprintf("%d %s #%d %s  %s",
		position,
		GetStatus(entry.Status).Icon,
		entry.Number,
		entry.Title,
		entry.Head)
}

// FormatEntryPreview formats an entry for the fuzzy finder preview window.
// The preview pane supports ANSI codes.
func FormatEntryPreview(position int, entry model.StackEntry) string {
	lines := []string{
		RenderKeyValue("Position", fmt.Sprintf("%d", position)),
		RenderKeyValue("PR", fmt.Sprintf("#%d (%s)", entry.Number, GetStatus(entry.Status).Render())),
		RenderKeyValue("Title", Bold(entry.Title)),
		RenderKeyValue("Branch", entry.Head+Dim(" → "+entry.Base)),
		RenderKeyValue("URL", Highlight(entry.URL)),
	}
	if len(entry.Commits) > 0 {
		lines = append(lines, "", Bold("Commits:"))
		for _, commit := range entry.Commits {
			lines = append(lines, "  "+Dim(commit.ShortHash())+" "+commit.Title)
		}
	}
	return strings.Join(lines, "\n")
}
