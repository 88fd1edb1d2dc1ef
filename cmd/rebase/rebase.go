package rebase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bjulian5/stackpr/internal/common"
	"github.com/bjulian5/stackpr/internal/stack"
	"github.com/bjulian5/stackpr/internal/ui"
)

// Command replays the entries stacked on a merged pull request onto trunk
type Command struct {
	Number int

	Stack *stack.Client
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "rebase <merged-number>",
		Short: "Rebase the entries above a merged pull request onto trunk",
		Long: `Rebase the entries stacked on a merged pull request onto the upstream trunk.

After a squash merge the entries above still carry the merged commits. This
rebases the first of them with 'git rebase --onto <remote>/<trunk>' so only its own
commits remain, replays every later entry onto its rebased parent, force-pushes the
results with lease and re-points the first entry to trunk.

A conflict aborts that rebase and stops; branches already rebased are kept and
nothing is pushed.

Example:
  stackpr rebase 123`,
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
	result, err := c.Stack.ManuallyRebase(ctx, c.Number)
	if result != nil {
		for _, branch := range result.Rebased {
			ui.Successf("Rebased %s", branch)
		}
	}
	if err != nil {
		return err
	}
	if u := result.Retargeted; u != nil {
		ui.Infof("#%d now targets %s", u.Number, u.To)
	}
	return nil
}
