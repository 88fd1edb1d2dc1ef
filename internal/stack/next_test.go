package stack

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/model"
	"github.com/bjulian5/stackpr/internal/state"
)

// expectOnTrunk sets up a clean checkout of main with no open requests and the given
// commits on top of origin/main
func (f *fixture) expectOnTrunk(commits ...git.Commit) {
	f.git.On("GetCurrentBranch").Return("main", nil)
	f.git.On("Status", "").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("Fetch").Return(nil)
	f.gh.On("ListOpenPRs").Return([]*gh.PR{}, nil)
	f.remoteRefs("origin/main", "HEAD")
	f.git.On("GetCommits", "origin/main", "HEAD").Return(commits, nil)
}

func TestCreateNextEntry_FirstEntry(t *testing.T) {
	f := newFixture(t)
	c1 := git.Commit{Hash: "1111111aaaa", Title: "Add login API", Body: "Adds /login."}
	c2 := git.Commit{Hash: "2222222bbbb", Title: "Add login form"}
	f.expectOnTrunk(c1, c2)
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true}, nil)

	branch := "john/add-login-form"
	f.git.On("BranchExists", branch).Return(false)
	f.remoteBranches()
	f.git.On("CreateBranch", branch, "HEAD").Return(nil).Once()
	f.git.On("Push", branch, git.PushOptions{SetUpstream: true}).Return(nil).Once()
	f.git.On("FindPRTemplate").Return("", nil)
	f.gh.On("CreatePR", mock.MatchedBy(func(spec gh.PRSpec) bool {
		return spec.Base == "main" &&
			spec.Head == branch &&
			spec.Draft &&
			spec.Title == "Add login API" &&
			strings.HasPrefix(spec.Body, "This change contains 2 commits:") &&
			strings.Contains(spec.Body, "- 2222222 Add login form")
	})).Return(&gh.PR{Number: 10, Title: "Add login API", State: gh.StateDraft, Head: branch, Base: "main"}, nil).Once()

	result, err := f.client.CreateNextEntry(context.Background())
	require.NoError(t, err)

	assert.False(t, result.NothingToDo)
	assert.False(t, result.Rebased)
	require.NotNil(t, result.Entry)
	assert.Equal(t, 10, result.Entry.Number)
	assert.Equal(t, "main", result.Entry.Base)
	assert.Equal(t, []string{c1.Hash, c2.Hash}, git.Hashes(result.Entry.Commits))
	assert.Equal(t, []int{10}, numbers(result.Sync.Chain.Entries))

	st := f.loadState(t)
	assert.Equal(t, []string{branch}, st.Branches)
	assert.Equal(t, []int{10}, st.PullRequests)
	f.git.AssertNotCalled(t, "CheckoutBranch", mock.Anything)
	f.gh.AssertExpectations(t)
}

func TestCreateNextEntry_StacksOnTail(t *testing.T) {
	f := newFixture(t)
	f.git.On("GetCurrentBranch").Return("main", nil)
	f.git.On("Status", "").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("Fetch").Return(nil)
	f.expectTwoEntryStack()

	f.git.On("BranchExists", "john/three").Return(false)
	f.git.On("CreateBranch", "john/three", "HEAD").Return(nil)
	f.git.On("Push", "john/three", git.PushOptions{SetUpstream: true}).Return(nil)
	f.git.On("FindPRTemplate").Return("## Testing", nil)
	f.gh.On("CreatePR", mock.MatchedBy(func(spec gh.PRSpec) bool {
		return spec.Base == "john/b" && spec.Head == "john/three" && strings.Contains(spec.Body, "## Testing")
	})).Return(pr(3, "john/three", "john/b", gh.StateDraft), nil)

	result, err := f.client.CreateNextEntry(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Entry.Number)
	assert.Equal(t, []int{1, 2, 3}, numbers(result.Sync.Chain.Entries))
	assert.Equal(t, []string{"john/a", "john/b", "john/three"}, f.loadState(t).Branches)
}

func TestCreateNextEntry_NothingToDo(t *testing.T) {
	f := newFixture(t)
	f.expectOnTrunk()
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true}, nil)

	result, err := f.client.CreateNextEntry(context.Background())
	require.NoError(t, err)

	assert.True(t, result.NothingToDo)
	assert.Nil(t, result.Entry)
	f.git.AssertNotCalled(t, "CreateBranch", mock.Anything, mock.Anything)
	f.gh.AssertNotCalled(t, "CreatePR", mock.Anything)
}

func TestCreateNextEntry_Preconditions(t *testing.T) {
	t.Run("not on trunk", func(t *testing.T) {
		f := newFixture(t)
		f.git.On("GetCurrentBranch").Return("feature", nil)

		_, err := f.client.CreateNextEntry(context.Background())
		require.ErrorIs(t, err, ErrPrecondition)
		assert.Equal(t, "run 'git checkout main'", HintFor(err))
		f.git.AssertNotCalled(t, "Fetch")
	})

	t.Run("dirty tree", func(t *testing.T) {
		f := newFixture(t)
		f.git.On("GetCurrentBranch").Return("main", nil)
		f.git.On("Status", "").Return(&git.TreeStatus{Clean: false}, nil)

		_, err := f.client.CreateNextEntry(context.Background())
		require.ErrorIs(t, err, ErrPrecondition)
		assert.Contains(t, err.Error(), "uncommitted changes")
	})

	t.Run("behind upstream", func(t *testing.T) {
		f := newFixture(t)
		f.expectOnTrunk(commit("c1", "one"))
		f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true, Behind: 3}, nil)

		_, err := f.client.CreateNextEntry(context.Background())
		require.ErrorIs(t, err, ErrPrecondition)
		assert.Contains(t, err.Error(), "3 commit(s) behind origin/main")
		assert.Contains(t, HintFor(err), "auto-rebase-limit to 3")
		f.git.AssertNotCalled(t, "Rebase", mock.Anything)
		f.gh.AssertNotCalled(t, "ListOpenPRs")
	})
}

func TestCreateNextEntry_BehindUpstreamRepairsNothing(t *testing.T) {
	f := newFixture(t)
	f.git.On("GetCurrentBranch").Return("main", nil)
	f.git.On("Status", "").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("Fetch").Return(nil)
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true, Behind: 3}, nil)
	f.saveState(t, &state.State{Branches: []string{"john/a", "john/b"}, PullRequests: []int{1, 2}})
	f.gh.On("ListOpenPRs").Return([]*gh.PR{pr(2, "john/b", "john/a", gh.StateOpen)}, nil).Maybe()
	f.gh.On("GetPR", 1).Return(pr(1, "john/a", "main", gh.StateMerged), nil).Maybe()
	f.gh.On("UpdatePRBase", 2, "main").Return(nil).Maybe()

	_, err := f.client.CreateNextEntry(context.Background())
	require.ErrorIs(t, err, ErrPrecondition)
	f.gh.AssertNotCalled(t, "UpdatePRBase", mock.Anything, mock.Anything)
	f.gh.AssertNotCalled(t, "GetPR", mock.Anything)
	assert.Equal(t, []int{1, 2}, f.loadState(t).PullRequests)
}

func TestCreateNextEntry_FetchFailureIsAWarning(t *testing.T) {
	f := newFixture(t)
	f.git.On("GetCurrentBranch").Return("main", nil)
	f.git.On("Status", "").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("Fetch").Return(errors.New("network unreachable")).Once()
	f.gh.On("ListOpenPRs").Return([]*gh.PR{}, nil)
	f.remoteRefs("origin/main", "HEAD")
	f.git.On("GetCommits", "origin/main", "HEAD").Return([]git.Commit{}, nil)
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true}, nil)

	result, err := f.client.CreateNextEntry(context.Background())
	require.NoError(t, err)
	assert.True(t, result.NothingToDo)
	require.NotEmpty(t, result.Sync.Warnings)
	assert.Contains(t, result.Sync.Warnings[0], "network unreachable")
	f.git.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestCreateNextEntry_BehindWithoutRequireSynced(t *testing.T) {
	f := newFixture(t)
	f.client.opts.RequireSynced = false
	f.expectOnTrunk()
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true, Behind: 3}, nil)

	result, err := f.client.CreateNextEntry(context.Background())
	require.NoError(t, err)
	assert.True(t, result.NothingToDo)
	assert.False(t, result.Rebased)
}

func TestCreateNextEntry_AutoRebase(t *testing.T) {
	f := newFixture(t)
	f.client.opts.AutoRebaseLimit = 5
	f.expectOnTrunk()
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true, Behind: 2}, nil).Once()
	f.git.On("Rebase", "origin/main").Return(nil).Once()

	result, err := f.client.CreateNextEntry(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Rebased)
	assert.True(t, result.NothingToDo)
	f.git.AssertNumberOfCalls(t, "Fetch", 1)
	f.gh.AssertNumberOfCalls(t, "ListOpenPRs", 1)
	f.git.AssertCalled(t, "Rebase", "origin/main")
}

func TestCreateNextEntry_AutoRebaseConflict(t *testing.T) {
	f := newFixture(t)
	f.client.opts.AutoRebaseLimit = 5
	f.expectOnTrunk()
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true, Behind: 1}, nil)
	f.git.On("Rebase", "origin/main").Return(&git.RebaseConflictError{Branch: "main", Onto: "origin/main"})

	_, err := f.client.CreateNextEntry(context.Background())
	require.ErrorIs(t, err, ErrMutation)
	assert.True(t, git.IsRebaseConflict(err))
}

func TestCreateNextEntry_BranchExists(t *testing.T) {
	f := newFixture(t)
	f.expectOnTrunk(commit("c1", "Fix typo"))
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("BranchExists", "john/fix-typo").Return(false)
	f.remoteBranches("john/fix-typo")

	_, err := f.client.CreateNextEntry(context.Background())
	require.ErrorIs(t, err, ErrBranchExists)
	assert.ErrorIs(t, err, ErrMutation)
	f.git.AssertNotCalled(t, "CreateBranch", mock.Anything, mock.Anything)
	f.gh.AssertNotCalled(t, "CreatePR", mock.Anything)
}

func TestCreateNextEntry_PushFailureRemovesBranch(t *testing.T) {
	f := newFixture(t)
	f.expectOnTrunk(commit("c1", "Fix typo"))
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("BranchExists", "john/fix-typo").Return(false)
	f.remoteBranches()
	f.git.On("CreateBranch", "john/fix-typo", "HEAD").Return(nil)
	f.git.On("Push", "john/fix-typo", git.PushOptions{SetUpstream: true}).Return(errors.New("permission denied"))
	f.git.On("DeleteBranch", "john/fix-typo", true).Return(nil).Once()

	_, err := f.client.CreateNextEntry(context.Background())
	require.ErrorIs(t, err, ErrMutation)
	assert.Contains(t, err.Error(), "permission denied")
	f.git.AssertExpectations(t)
	f.gh.AssertNotCalled(t, "CreatePR", mock.Anything)
}

func TestCreateNextEntry_CreatePRFailure(t *testing.T) {
	f := newFixture(t)
	f.expectOnTrunk(commit("c1", "Fix typo"))
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("BranchExists", "john/fix-typo").Return(false)
	f.remoteBranches()
	f.git.On("CreateBranch", "john/fix-typo", "HEAD").Return(nil)
	f.git.On("Push", "john/fix-typo", git.PushOptions{SetUpstream: true}).Return(nil)
	f.git.On("FindPRTemplate").Return("", nil)
	f.gh.On("CreatePR", mock.Anything).Return(nil, errors.New("HTTP 422"))

	_, err := f.client.CreateNextEntry(context.Background())
	require.ErrorIs(t, err, ErrMutation)
	assert.Contains(t, err.Error(), "john/fix-typo")
	assert.Contains(t, err.Error(), "run 'stackpr next' again")
	assert.Empty(t, f.loadState(t).Branches)
}

func TestCreateNextEntry_ResumesPushedBranchWithoutPR(t *testing.T) {
	f := newFixture(t)
	branch := "john/fix-typo"
	f.git.On("GetCommitHash", branch).Return("sha-HEAD", nil)
	f.git.On("GetCommitHash", "origin/"+branch).Return("sha-HEAD", nil)
	f.expectOnTrunk(commit("c1", "Fix typo"))
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("BranchExists", branch).Return(true)
	f.remoteBranches(branch)
	f.git.On("FindPRTemplate").Return("", nil)
	f.gh.On("CreatePR", mock.MatchedBy(func(spec gh.PRSpec) bool {
		return spec.Head == branch && spec.Base == "main"
	})).Return(pr(7, branch, "main", gh.StateDraft), nil).Once()

	result, err := f.client.CreateNextEntry(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, result.Entry.Number)
	assert.Equal(t, []string{branch}, f.loadState(t).Branches)
	f.git.AssertNotCalled(t, "CreateBranch", mock.Anything, mock.Anything)
	f.git.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
	f.gh.AssertExpectations(t)
}

func TestCreateNextEntry_BranchOfOtherChangeIsNotResumed(t *testing.T) {
	f := newFixture(t)
	branch := "john/fix-typo"
	f.git.On("GetCommitHash", branch).Return("sha-older", nil)
	f.expectOnTrunk(commit("c1", "Fix typo"))
	f.git.On("Status", "origin/main").Return(&git.TreeStatus{Clean: true}, nil)
	f.git.On("BranchExists", branch).Return(true)
	f.remoteBranches(branch)

	_, err := f.client.CreateNextEntry(context.Background())
	require.ErrorIs(t, err, ErrBranchExists)
	f.gh.AssertNotCalled(t, "CreatePR", mock.Anything)
}

func TestDescribeEntry(t *testing.T) {
	chain := &model.Chain{Trunk: "main"}

	t.Run("single commit keeps its body", func(t *testing.T) {
		title, body := describeEntry([]git.Commit{{Hash: "abc1234567", Title: "Fix typo", Body: "In the README."}}, chain, "")
		assert.Equal(t, "Fix typo", title)
		assert.True(t, strings.HasPrefix(body, "In the README.\n\n## 📚 Stack (1 PRs)"))
		assert.Contains(t, body, "| 1 | - | 🆕 New | Fix typo ← **THIS PR** |")
	})

	t.Run("empty body starts with the stack map", func(t *testing.T) {
		_, body := describeEntry([]git.Commit{{Hash: "abc1234567", Title: "Fix typo"}}, chain, "  ")
		assert.True(t, strings.HasPrefix(body, "## 📚 Stack"))
	})

	t.Run("template follows the description", func(t *testing.T) {
		_, body := describeEntry([]git.Commit{{Hash: "abc1234567", Title: "Fix typo", Body: "Body."}}, chain, "## Checklist\n")
		assert.True(t, strings.HasPrefix(body, "Body.\n\n## Checklist\n\n## 📚 Stack"))
	})
}
