package stack

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition matches every PreconditionError
	ErrPrecondition = errors.New("precondition failed")
	// ErrMutation matches every MutationError
	ErrMutation = errors.New("mutation failed")
	// ErrBranchExists is wrapped when a new entry's branch name is already taken
	ErrBranchExists = errors.New("branch already exists")
)

// PreconditionError means the operation refused to start; nothing was changed
type PreconditionError struct {
	Reason string
	Hint   string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// MutationError means a change to the repository or the review service failed part way
type MutationError struct {
	Op     string
	Target string
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

func (e *MutationError) Is(target error) bool {
	return target == ErrMutation
}

// HintFor returns the remediation hint carried by err, if any
func HintFor(err error) string {
	var pre *PreconditionError
	if errors.As(err, &pre) {
		return pre.Hint
	}
	return ""
}
