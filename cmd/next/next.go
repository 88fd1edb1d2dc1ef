package next

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bjulian5/stackpr/internal/common"
	"github.com/bjulian5/stackpr/internal/stack"
	"github.com/bjulian5/stackpr/internal/ui"
)

// Command opens a pull request for the commits on trunk that are not stacked yet
type Command struct {
	Stack *stack.Client
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Open a pull request for the new commits on trunk",
		Long: `Open a pull request for the commits on trunk that no entry of the stack carries yet.

The commits get a new branch (named after the newest commit by default) which is
pushed and opened as a pull request based on the top of the stack, or on trunk when
the stack is empty. Trunk stays checked out.

Example:
  git commit -m "Add login form"
  stackpr next`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			clients, err := common.InitFromCommand(cmd)
			if err != nil {
				return err
			}
			c.Stack = clients.Stack
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}
	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	result, err := c.Stack.CreateNextEntry(ctx)
	if err != nil {
		return err
	}

	if result.Rebased {
		ui.Infof("Rebased %s onto its upstream", c.Stack.Trunk())
	}
	ui.PrintRepair(result.Sync.Repair)
	ui.Warnings(result.Sync.Warnings)

	if result.NothingToDo {
		ui.Infof("No new commits on %s; nothing to stack", c.Stack.Trunk())
		return nil
	}

	entry := result.Entry
	ui.Successf("Opened #%d %s", entry.Number, entry.Title)
	ui.Print(ui.RenderKeyValueList([]ui.KeyValue{
		{Key: "Branch", Value: entry.Head},
		{Key: "Base", Value: entry.Base},
		{Key: "Commits", Value: ui.Bold(strconv.Itoa(len(entry.Commits)))},
		{Key: "URL", Value: ui.Highlight(entry.URL)},
	}))
	return nil
}
