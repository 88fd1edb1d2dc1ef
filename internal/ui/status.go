package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/model"
)

// Status icons
const (
	IconOpen      = "●"
	IconDraft     = "◐"
	IconMerged    = "◆"
	IconClosed    = "○"
	IconUnstacked = "◯"
)

// Status is a renderable entry state
type Status struct {
	Icon  string
	Label string
	Style lipgloss.Style
}

// GetStatus returns the Status for an entry state. The zero state renders as an
// unstacked commit.
func GetStatus(state gh.State) Status {
	style := GetStatusStyle(state)
	switch state {
	case gh.StateOpen:
		return Status{Icon: IconOpen, Label: "Open", Style: style}
	case gh.StateDraft:
		return Status{Icon: IconDraft, Label: "Draft", Style: style}
	case gh.StateMerged:
		return Status{Icon: IconMerged, Label: "Merged", Style: style}
	case gh.StateClosed:
		return Status{Icon: IconClosed, Label: "Closed", Style: style}
	default:
		return Status{Icon: IconUnstacked, Label: "Unstacked", Style: style}
	}
}

// Render returns the full status with icon and label (e.g., "● Open")
func (s Status) Render() string {
	return s.Style.Render(s.Icon + " " + s.Label)
}

// RenderCompact returns just the styled icon
func (s Status) RenderCompact() string {
	return s.Style.Render(s.Icon)
}

// RenderWithCount returns the status with a count (e.g., "● 3 open")
func (s Status) RenderWithCount(count int) string {
	return s.Style.Render(fmt.Sprintf("%s %d %s", s.Icon, count, strings.ToLower(s.Label)))
}

// FormatSummary summarizes a chain and its unstacked commits
// e.g., "● 2 open  ◐ 1 draft  ◯ 1 unstacked"
func FormatSummary(chain *model.Chain, unstacked int) string {
	var open, draft int
	for _, entry := range chain.Entries {
		if entry.IsDraft() {
			draft++
		} else {
			open++
		}
	}

	var parts []string
	if open > 0 {
		parts = append(parts, GetStatus(gh.StateOpen).RenderWithCount(open))
	}
	if draft > 0 {
		parts = append(parts, GetStatus(gh.StateDraft).RenderWithCount(draft))
	}
	if unstacked > 0 {
		parts = append(parts, GetStatus("").RenderWithCount(unstacked))
	}
	if len(parts) == 0 {
		return Dim("nothing stacked")
	}
	return strings.Join(parts, "  ")
}
