package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	configcmd "github.com/bjulian5/stackpr/cmd/config"
	"github.com/bjulian5/stackpr/cmd/merge"
	"github.com/bjulian5/stackpr/cmd/next"
	"github.com/bjulian5/stackpr/cmd/ready"
	"github.com/bjulian5/stackpr/cmd/rebase"
	"github.com/bjulian5/stackpr/cmd/status"
	synccmd "github.com/bjulian5/stackpr/cmd/sync"
	"github.com/bjulian5/stackpr/internal/common"
	"github.com/bjulian5/stackpr/internal/config"
	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/stack"
)

// newRootCommand builds the stackpr command tree
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stackpr",
		Short: "Stacked pull requests from commits on trunk",
		Long: `stackpr turns the commits you make on trunk into a chain of stacked pull requests.

Commit on main as usual, then run 'stackpr next' to open a pull request for the new
commits on top of the existing chain. The chain is rediscovered from GitHub on every
run and repaired after merges: merged and closed entries are dropped and the rest are
re-pointed so each entry is based on the one below it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(common.FlagConfig, "", "Path to a config file (default $XDG_CONFIG_HOME/stackpr/config.yaml)")
	flags.BoolP(common.FlagVerbose, "v", false, "Log debug output and print full error chains")
	flags.String(config.KeyLogLevel, "", "Log level: debug, info, warn, error")
	flags.String(config.KeyTrunk, "", "Trunk branch the stack is built on (default main)")
	flags.String(config.KeyRemote, "", "Remote to push to and discover from (default origin)")

	commands := []Command{
		&next.Command{},
		&status.Command{},
		&synccmd.Command{},
		&merge.Command{},
		&rebase.Command{},
		&ready.Command{},
		&configcmd.Command{},
	}
	for _, c := range commands {
		c.Register(rootCmd)
	}
	return rootCmd
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context) int {
	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	verbose, _ := rootCmd.PersistentFlags().GetBool(common.FlagVerbose)
	handleError(os.Stderr, err, verbose)
	return 1
}

func handleError(w io.Writer, err error, verbose bool) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Interrupted")
		return
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	red.Fprint(w, "Error:")
	fmt.Fprintf(w, " %s\n", err)
	if verbose {
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			fmt.Fprintf(w, "  caused by: %+v\n", cause)
		}
	}
	if hint := hintFor(err); hint != "" {
		yellow.Fprint(w, "Hint:")
		fmt.Fprintf(w, " %s\n", hint)
	}
}

func hintFor(err error) string {
	if hint := stack.HintFor(err); hint != "" {
		return hint
	}
	var conflict *git.RebaseConflictError
	switch {
	case errors.As(err, &conflict):
		return fmt.Sprintf("the rebase was aborted and %s is unchanged; rebase it onto %s by hand", conflict.Branch, conflict.Onto)
	case errors.Is(err, git.ErrNotGitRepository):
		return "run stackpr inside a git repository"
	case errors.Is(err, exec.ErrNotFound):
		return "install the GitHub CLI (gh) and run 'gh auth login'"
	case errors.Is(err, stack.ErrBranchExists):
		return "a different change already uses this branch; delete it locally and on the remote, or amend the newest commit's subject"
	}
	return ""
}
