package git

import (
	"context"
	"errors"
	"fmt"
)

// Rebase rebases the current branch onto the given ref. On conflict the rebase is
// aborted and a RebaseConflictError is returned.
func (c *Client) Rebase(ctx context.Context, onto string) error {
	branch, err := c.GetCurrentBranch(ctx)
	if err != nil {
		return err
	}
	if _, err := c.run(ctx, "rebase", onto); err != nil {
		return c.abortOnConflict(ctx, branch, onto, err)
	}
	return nil
}

// RebaseOnto replays the commits of branch that are not in upstream on top of newBase,
// leaving branch checked out. On conflict the rebase is aborted and a
// RebaseConflictError is returned.
func (c *Client) RebaseOnto(ctx context.Context, newBase string, upstream string, branch string) error {
	if _, err := c.run(ctx, "rebase", "--onto", newBase, upstream, branch); err != nil {
		return c.abortOnConflict(ctx, branch, newBase, err)
	}
	return nil
}

func (c *Client) abortOnConflict(ctx context.Context, branch, onto string, err error) error {
	if !c.IsRebaseInProgress() {
		return fmt.Errorf("failed to rebase %s onto %s: %w", branch, onto, err)
	}
	// Abort with a fresh context so a cancelled caller still leaves the tree clean.
	if _, abortErr := c.run(context.WithoutCancel(ctx), "rebase", "--abort"); abortErr != nil {
		return fmt.Errorf("rebase of %s conflicted and abort failed: %w", branch, errors.Join(err, abortErr))
	}
	conflict := &RebaseConflictError{Branch: branch, Onto: onto}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		conflict.Output = cmdErr.Stderr
	}
	return conflict
}
