package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bjulian5/stackpr/internal/gh"
)

// Color palette
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple

	// Status colors
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorInfo    = lipgloss.Color("#3B82F6") // Blue

	// Entry state colors
	ColorOpen      = lipgloss.Color("#10B981") // Green
	ColorDraft     = lipgloss.Color("#F59E0B") // Amber
	ColorMerged    = lipgloss.Color("#8B5CF6") // Purple
	ColorClosed    = lipgloss.Color("#6B7280") // Gray
	ColorUnstacked = lipgloss.Color("#9CA3AF") // Light gray

	ColorTextMuted  = lipgloss.Color("#9CA3AF")
	ColorTextBright = lipgloss.Color("#FFFFFF")
	ColorBgMuted    = lipgloss.Color("#111827")
	ColorBorder     = lipgloss.Color("#374151")
)

var BorderRounded = lipgloss.RoundedBorder()

// Base styles
var (
	BoxStyle = lipgloss.NewStyle().
			Border(BorderRounded).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	BoldStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorTextBright)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)
)

// Entry state styles
var (
	StatusOpenStyle = lipgloss.NewStyle().
			Foreground(ColorOpen).
			Bold(true)

	StatusDraftStyle = lipgloss.NewStyle().
				Foreground(ColorDraft).
				Bold(true)

	StatusMergedStyle = lipgloss.NewStyle().
				Foreground(ColorMerged).
				Bold(true)

	StatusClosedStyle = lipgloss.NewStyle().
				Foreground(ColorClosed)

	StatusUnstackedStyle = lipgloss.NewStyle().
				Foreground(ColorUnstacked)
)

// Message styles
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)
)

// Tree styles
var (
	TreeRootStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	TreeEnumeratorStyle = lipgloss.NewStyle().
				Foreground(ColorBorder)

	CurrentPositionArrowStyle = lipgloss.NewStyle().
					Foreground(ColorSuccess).
					Bold(true)
)

// Table styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorTextBright).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TableRowAltStyle = lipgloss.NewStyle().
				Background(ColorBgMuted).
				Padding(0, 1)

	TableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorBorder)
)

// GetStatusStyle returns the style for an entry state
func GetStatusStyle(state gh.State) lipgloss.Style {
	switch state {
	case gh.StateOpen:
		return StatusOpenStyle
	case gh.StateDraft:
		return StatusDraftStyle
	case gh.StateMerged:
		return StatusMergedStyle
	case gh.StateClosed:
		return StatusClosedStyle
	default:
		return StatusUnstackedStyle
	}
}
