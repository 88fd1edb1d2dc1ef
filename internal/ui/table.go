package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bjulian5/stackpr/internal/model"
)

// NewStackTable creates a bordered table with alternating row shading
func NewStackTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(TableBorderStyle).
		BorderRow(true).
		BorderColumn(true).
		Width(GetTerminalWidth()).
		StyleFunc(defaultTableStyleFunc)
}

// RenderChainTable renders one row per entry, bottom first
func RenderChainTable(chain *model.Chain) string {
	if chain.IsEmpty() {
		return Dim("nothing stacked on " + chain.Trunk)
	}

	t := NewStackTable().Headers("#", "PR", "Status", "Title", "Branch", "Base", "Commits")
	for i, entry := range chain.Entries {
		t.Row(
			strconv.Itoa(i+1),
			fmt.Sprintf("#%d", entry.Number),
			GetStatus(entry.Status).Render(),
			Truncate(entry.Title, Display.MaxTitleLength),
			entry.Head,
			entry.Base,
			strconv.Itoa(len(entry.Commits)),
		)
	}
	return t.Render()
}

func defaultTableStyleFunc(row, col int) lipgloss.Style {
	switch {
	case row == table.HeaderRow:
		return TableHeaderStyle
	case row%2 == 0:
		return TableCellStyle
	default:
		return TableRowAltStyle
	}
}
