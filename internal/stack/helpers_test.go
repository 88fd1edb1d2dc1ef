package stack

import (
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/model"
	"github.com/bjulian5/stackpr/internal/naming"
	"github.com/bjulian5/stackpr/internal/state"
)

var errNotFound = errors.New("reference not found")

type fixture struct {
	git    *MockGitClient
	gh     *MockReviewClient
	store  *state.Store
	client *Client
}

// newFixture creates a stack client over mocks with prefix "john" and trunk "main"
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		git:   &MockGitClient{},
		gh:    &MockReviewClient{},
		store: state.NewStore(t.TempDir()),
	}
	f.client = NewClient(f.git, f.gh, f.store, Options{
		Trunk:          "main",
		BranchPrefix:   "john",
		NamingStrategy: naming.CommitMessage,
		Draft:          true,
		RequireSynced:  true,
	}, logr.Discard())
	f.client.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

// remoteBranches makes RemoteBranchExists true for the given names only. Call it after
// any more specific expectations.
func (f *fixture) remoteBranches(names ...string) {
	for _, name := range names {
		f.git.On("RemoteBranchExists", name).Return(true).Maybe()
	}
	f.git.On("RemoteBranchExists", mock.Anything).Return(false).Maybe()
}

// remoteRefs makes GetCommitHash resolve the given refs and fail for everything else
func (f *fixture) remoteRefs(refs ...string) {
	for _, ref := range refs {
		f.git.On("GetCommitHash", ref).Return("sha-"+ref, nil).Maybe()
	}
	f.git.On("GetCommitHash", mock.Anything).Return("", errNotFound).Maybe()
}

func (f *fixture) saveState(t *testing.T, st *state.State) {
	t.Helper()
	require.NoError(t, f.store.Save(st))
}

func (f *fixture) loadState(t *testing.T) *state.State {
	t.Helper()
	st, err := f.store.Load()
	require.NoError(t, err)
	return st
}

func pr(number int, head, base string, st gh.State) *gh.PR {
	return &gh.PR{
		Number:  number,
		Title:   "Change " + head,
		URL:     "https://github.com/o/r/pull/" + head,
		State:   st,
		Head:    head,
		Base:    base,
		HeadOID: "oid-" + head,
	}
}

func entry(number int, head, base string) model.StackEntry {
	return model.EntryFromPR(pr(number, head, base, gh.StateOpen))
}

func commit(hash, title string) git.Commit {
	return git.Commit{Hash: hash, Title: title}
}

func numbers(entries []model.StackEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Number
	}
	return out
}
