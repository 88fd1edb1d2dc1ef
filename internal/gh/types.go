package gh

import (
	"fmt"
	"strings"
	"time"
)

// State is the lifecycle state of a pull request. Open and draft requests are live;
// merged and closed are terminal.
type State string

const (
	StateOpen   State = "open"
	StateDraft  State = "draft"
	StateMerged State = "merged"
	StateClosed State = "closed"
)

// IsOpen reports whether the request can still change (open or draft)
func (s State) IsOpen() bool {
	return s == StateOpen || s == StateDraft
}

// IsTerminal reports whether the request has been merged or closed
func (s State) IsTerminal() bool {
	return s == StateMerged || s == StateClosed
}

// normalizeState converts GitHub API state to our internal format.
// GitHub returns OPEN, CLOSED, MERGED (uppercase); draft is derived from isDraft.
func normalizeState(state string, isDraft bool) (State, error) {
	switch strings.ToLower(state) {
	case "open":
		if isDraft {
			return StateDraft, nil
		}
		return StateOpen, nil
	case "merged":
		return StateMerged, nil
	case "closed":
		return StateClosed, nil
	default:
		return "", fmt.Errorf("unknown pull request state %q", state)
	}
}

// MergeMethod selects how a pull request is merged
type MergeMethod string

const (
	MergeSquash MergeMethod = "squash"
	MergeCommit MergeMethod = "merge"
	MergeRebase MergeMethod = "rebase"
)

// ParseMergeMethod validates a merge method name
func ParseMergeMethod(s string) (MergeMethod, error) {
	switch m := MergeMethod(strings.ToLower(s)); m {
	case MergeSquash, MergeCommit, MergeRebase:
		return m, nil
	default:
		return "", fmt.Errorf("unknown merge method %q (want squash, merge or rebase)", s)
	}
}

// PRSpec defines all parameters for creating a PR
type PRSpec struct {
	Title string // PR title
	Body  string // PR description
	Base  string // base branch name
	Head  string // head branch name
	Draft bool   // whether PR should be a draft
}

// MergeOptions controls MergePR
type MergeOptions struct {
	Method       MergeMethod
	DeleteBranch bool
}

// PR contains GitHub PR information returned from gh CLI
type PR struct {
	Number    int       // PR number
	Title     string    // PR title
	URL       string    // PR URL
	State     State     // open, draft, merged, closed
	Head      string    // head branch name
	Base      string    // base branch name
	HeadOID   string    // commit the head branch pointed at when last seen by GitHub
	CreatedAt time.Time // when PR was created
	UpdatedAt time.Time // when PR was last updated
}
