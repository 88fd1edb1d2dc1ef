package synccmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjulian5/stackpr/internal/common"
	"github.com/bjulian5/stackpr/internal/stack"
	"github.com/bjulian5/stackpr/internal/ui"
)

// Command rediscovers the stack and repairs it after merges
type Command struct {
	DryRun bool

	Stack *stack.Client
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Repair the stack after merges",
		Long: `Rediscover the stack from your open pull requests and repair it.

Merged and closed entries are removed, and every remaining entry is re-pointed at
the entry below it (trunk for the first). Entries whose status cannot be read keep
their place untouched and are checked again on the next run.`,
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

	cmd.Flags().BoolVar(&c.DryRun, "dry-run", false, "Show what would change without changing it")

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	result, err := c.Stack.Sync(ctx, stack.SyncOptions{DryRun: c.DryRun})
	if err != nil {
		return err
	}

	ui.Warnings(result.Warnings)
	if !result.Repair.Changed() {
		ui.Successf("Stack is in order (%s)", ui.FormatSummary(result.Chain, len(result.Unstacked)))
		return nil
	}
	ui.PrintRepair(result.Repair)
	ui.Print(ui.FormatSummary(result.Chain, len(result.Unstacked)))
	return nil
}
