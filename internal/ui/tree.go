package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/model"
)

// RenderChainTree renders the chain bottom-up under its trunk, followed by the commits
// not yet in any entry. The entry whose head is current is marked.
// Example output:
//
//	main
//	├─ ● #123 Add JWT auth  john/add-jwt-auth
//	│  ╰─ a1b2c3d Add JWT auth
//	├─ ◐ #124 Refresh tokens  john/refresh-tokens ←
//	│  ╰─ b2c3d4e Refresh tokens
//	╰─ ◯ unstacked
//	   ╰─ c3d4e5f Unit tests
func RenderChainTree(chain *model.Chain, unstacked []git.Commit, current string) string {
	t := tree.Root(TreeRootStyle.Render(chain.Trunk))

	for _, entry := range chain.Entries {
		node := tree.Root(formatEntryForTree(entry, current))
		addCommits(node, entry.Commits)
		t.Child(node)
	}

	if len(unstacked) > 0 {
		node := tree.Root(GetStatus("").RenderCompact() + " " + Dim("unstacked"))
		addCommits(node, unstacked)
		t.Child(node)
	}

	if chain.IsEmpty() && len(unstacked) == 0 {
		t.Child(Dim("nothing stacked on " + chain.Trunk))
	}

	t.Enumerator(roundedEnumerator).
		EnumeratorStyle(TreeEnumeratorStyle).
		Indenter(treeIndenter)

	return t.String()
}

func addCommits(node *tree.Tree, commits []git.Commit) {
	limit := Display.MaxCommitsPerEntry
	for i, commit := range commits {
		if limit > 0 && i == limit {
			node.Child(Dim(fmt.Sprintf("… %d more", len(commits)-limit)))
			break
		}
		node.Child(Dim(commit.ShortHash()) + " " + Truncate(commit.Title, Display.MaxTitleLength))
	}
	node.Enumerator(roundedEnumerator).
		EnumeratorStyle(TreeEnumeratorStyle).
		Indenter(treeIndenter)
}

// formatEntryForTree formats an entry as "● #123 Title  head"
func formatEntryForTree(entry model.StackEntry, current string) string {
	status := GetStatus(entry.Status)
	line := fmt.Sprintf("%s %s %s  %s",
		status.RenderCompact(),
		Highlight(fmt.Sprintf("#%d", entry.Number)),
		Truncate(entry.Title, Display.MaxTitleLength),
		Dim(entry.Head),
	)
	if entry.Unverified {
		line += " " + Dim("(status unknown)")
	}
	if current != "" && entry.Head == current {
		line += " " + CurrentPositionArrowStyle.Render("←")
	}
	return line
}

func roundedEnumerator(children tree.Children, i int) string {
	if i == children.Length()-1 {
		return "╰─ "
	}
	return "├─ "
}

func treeIndenter(children tree.Children, i int) string {
	if i == children.Length()-1 {
		return "   "
	}
	return "│  "
}
