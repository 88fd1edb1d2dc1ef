package git

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotGitRepository is returned when the working directory is not inside a repository
var ErrNotGitRepository = errors.New("not a git repository")

// CommandError is returned when a git subprocess exits unsuccessfully
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), e.Stderr)
	}
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// RebaseConflictError is returned when a rebase stopped on a conflict. By the time it
// is returned the rebase has already been aborted and the branch is unchanged.
type RebaseConflictError struct {
	Branch string
	Onto   string
	Output string
}

func (e *RebaseConflictError) Error() string {
	return fmt.Sprintf("rebase of %s onto %s hit conflicts and was aborted", e.Branch, e.Onto)
}

// IsRebaseConflict reports whether err is (or wraps) a RebaseConflictError
func IsRebaseConflict(err error) bool {
	var conflict *RebaseConflictError
	return errors.As(err, &conflict)
}
