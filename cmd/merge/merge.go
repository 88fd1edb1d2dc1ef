package merge

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bjulian5/stackpr/internal/common"
	"github.com/bjulian5/stackpr/internal/config"
	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/stack"
	"github.com/bjulian5/stackpr/internal/ui"
)

// Command merges the bottom entry of the stack
type Command struct {
	// Flags
	Method     string
	KeepBranch bool
	Select     bool

	Number   int
	Settings *config.Settings
	Stack    *stack.Client
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "merge [number]",
		Short: "Merge the bottom entry of the stack",
		Long: `Merge the bottom entry of the stack and repair the rest.

Only the bottom entry can be merged, since every other entry is based on another
entry's branch. A draft is marked ready first. Unless --keep-branch is given the
merged branch is deleted, and the next entry is re-pointed to trunk beforehand so
GitHub does not close it along with its base.

Example:
  stackpr merge
  stackpr merge 123 --method rebase
  stackpr merge --select`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid pull request number %q", args[0])
				}
				c.Number = n
			}
			if c.Select && c.Number != 0 {
				return fmt.Errorf("--select cannot be combined with a number")
			}
			clients, err := common.InitFromCommand(cmd)
			if err != nil {
				return err
			}
			c.Settings, c.Stack = clients.Settings, clients.Stack
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&c.Method, "method", "", "Merge method: squash, merge or rebase (default from merge-method)")
	cmd.Flags().BoolVar(&c.KeepBranch, "keep-branch", false, "Keep the merged branch on the remote")
	cmd.Flags().BoolVar(&c.Select, "select", false, "Pick the entry interactively")

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	method := c.Settings.MergeMethod
	if c.Method != "" {
		parsed, err := gh.ParseMergeMethod(c.Method)
		if err != nil {
			return err
		}
		method = parsed
	}

	number := c.Number
	if c.Select {
		selected, err := c.selectEntry(ctx)
		if err != nil || selected == 0 {
			return err
		}
		number = selected
	}

	result, err := c.Stack.MergeEntry(ctx, stack.MergeOptions{
		Number:       number,
		Method:       method,
		DeleteBranch: c.Settings.DeleteBranch && !c.KeepBranch,
	})
	if err != nil {
		return err
	}

	ui.Warnings(result.Warnings)
	ui.Successf("Merged #%d %s", result.Merged.Number, result.Merged.Title)
	if u := result.Retargeted; u != nil {
		ui.Infof("#%d now targets %s", u.Number, u.To)
	}
	ui.PrintRepair(result.Repair)
	if bottom := result.Chain.Bottom(); bottom != nil {
		ui.Infof("Next up: #%d %s", bottom.Number, bottom.Title)
	}
	return nil
}

// selectEntry lets the user pick an entry; zero means the selection was cancelled
func (c *Command) selectEntry(ctx context.Context) (int, error) {
	if !ui.IsInteractive() {
		return 0, fmt.Errorf("--select needs an interactive terminal")
	}
	status, err := c.Stack.GetStatus(ctx, stack.StatusOptions{NoRepair: true})
	if err != nil {
		return 0, err
	}
	if status.Chain.IsEmpty() {
		return 0, &stack.PreconditionError{Reason: "the stack has no open entries", Hint: "run 'stackpr next' to create one"}
	}
	entry, err := ui.SelectEntry(status.Chain.Entries)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		ui.Info("Cancelled")
		return 0, nil
	}
	return entry.Number, nil
}
