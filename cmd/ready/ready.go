package ready

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bjulian5/stackpr/internal/common"
	"github.com/bjulian5/stackpr/internal/stack"
	"github.com/bjulian5/stackpr/internal/ui"
)

// Command marks an entry as ready for review
type Command struct {
	Number int

	Stack *stack.Client
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ready <number>",
		Short: "Mark an entry as ready for review",
		Long: `Take a draft entry out of draft so reviewers are notified.

Entries are opened as drafts unless 'draft' is set to false. 'stackpr merge' marks
the entry it merges ready on its own.

Example:
  stackpr ready 123`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid pull request number %q", args[0])
			}
			c.Number = n
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
	changed, err := c.Stack.MarkReady(ctx, c.Number)
	if err != nil {
		return err
	}
	if !changed {
		ui.Infof("#%d is already ready for review", c.Number)
		return nil
	}
	ui.Successf("Marked #%d as ready for review", c.Number)
	return nil
}
