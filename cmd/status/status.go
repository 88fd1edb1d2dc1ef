package status

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjulian5/stackpr/internal/common"
	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/stack"
	"github.com/bjulian5/stackpr/internal/ui"
)

type Command struct {
	Table    bool
	NoRepair bool

	Git   *git.Client
	Stack *stack.Client
}

func (c *Command) Register(parent *cobra.Command) {
	command := &cobra.Command{
		Use:   "status",
		Short: "Show the stack and the commits not stacked yet",
		Long: `Show every entry of the stack, bottom first, with its commits, followed by the
commits on HEAD that no entry carries yet.

The stack is repaired first, as in 'stackpr sync'. Use --no-repair to only report
what the repair would change.

Example:
  stackpr status
  stackpr status --table
  stackpr status --no-repair`,
		Args: cobra.NoArgs,
		PreRunE: func(cobraCmd *cobra.Command, args []string) error {
			clients, err := common.InitFromCommand(cobraCmd)
			if err != nil {
				return err
			}
			c.Git, c.Stack = clients.Git, clients.Stack
			return nil
		},
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return c.Run(cobraCmd.Context())
		},
	}

	command.Flags().BoolVar(&c.Table, "table", false, "Display as table instead of tree")
	command.Flags().BoolVar(&c.NoRepair, "no-repair", false, "Report repairs without applying them")

	parent.AddCommand(command)
}

func (c *Command) Run(ctx context.Context) error {
	result, err := c.Stack.GetStatus(ctx, stack.StatusOptions{NoRepair: c.NoRepair})
	if err != nil {
		return err
	}

	current := ""
	if c.Git != nil {
		current, _ = c.Git.GetCurrentBranch(ctx)
	}

	ui.PrintRepair(result.Repair)
	ui.Warnings(result.Warnings)

	if c.Table {
		ui.Print(ui.RenderChainTable(result.Chain))
	} else {
		ui.Print(ui.RenderChainTree(result.Chain, result.Unstacked, current))
	}
	ui.Print("")
	ui.Print(ui.FormatSummary(result.Chain, len(result.Unstacked)))
	return nil
}
