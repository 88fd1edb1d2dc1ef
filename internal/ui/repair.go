package ui

import (
	"fmt"

	"github.com/bjulian5/stackpr/internal/model"
	"github.com/bjulian5/stackpr/internal/stack"
)

// RepairLines describes what a repair pass did (or would do), one line per change
func RepairLines(r *stack.RepairResult) []string {
	if r == nil {
		return nil
	}
	var lines []string
	for _, e := range r.Merged {
		lines = append(lines, entryLine(GetStatus(e.Status), e, "merged, removed from the stack"))
	}
	for _, e := range r.Closed {
		lines = append(lines, entryLine(GetStatus(e.Status), e, "closed, removed from the stack"))
	}
	for _, e := range r.Dropped {
		lines = append(lines, fmt.Sprintf("%s #%d %s", ErrorStyle.Render("✗"), e.Number, Dim("left as it is until the next sync")))
	}
	for _, u := range r.Updated {
		lines = append(lines, fmt.Sprintf("#%d re-pointed %s → %s", u.Number, u.From, Bold(u.To)))
	}
	for _, u := range r.Planned {
		lines = append(lines, fmt.Sprintf("#%d would be re-pointed %s → %s", u.Number, u.From, Bold(u.To)))
	}
	return lines
}

func entryLine(status Status, e model.StackEntry, what string) string {
	return fmt.Sprintf("%s #%d %s %s", status.RenderCompact(), e.Number, Truncate(e.Title, Display.MaxTitleLength), Dim(what))
}

// PrintRepair prints the repair lines, if any, under a header
func PrintRepair(r *stack.RepairResult) {
	lines := RepairLines(r)
	if len(lines) == 0 {
		return
	}
	Header("Stack repair")
	Print(RenderBulletList(lines))
}
