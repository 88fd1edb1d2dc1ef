package stack

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/model"
)

func twoEntryChain() *model.Chain {
	return &model.Chain{
		Trunk:   "main",
		Entries: []model.StackEntry{entry(1, "john/a", "main"), entry(2, "john/b", "john/a")},
	}
}

func TestFindUnstackedCommits_HeadOnTailIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.remoteRefs("origin/main", "origin/john/a", "origin/john/b")
	f.git.On("GetCommits", "origin/main", "HEAD").Return([]git.Commit{commit("c1", "one"), commit("c2", "two")}, nil)
	f.git.On("GetCommits", "origin/john/a", "HEAD").Return([]git.Commit{commit("c2", "two")}, nil)
	f.git.On("GetCommits", "origin/john/b", "HEAD").Return([]git.Commit{}, nil)

	unstacked, err := f.client.FindUnstackedCommits(context.Background(), twoEntryChain())
	require.NoError(t, err)
	assert.Empty(t, unstacked)
}

func TestFindUnstackedCommits_PicksSmallestRange(t *testing.T) {
	f := newFixture(t)
	f.remoteRefs("origin/main", "origin/john/a", "origin/john/b")
	f.git.On("GetCommits", "origin/main", "HEAD").Return([]git.Commit{commit("c1", "one"), commit("c2", "two"), commit("c3", "three")}, nil)
	f.git.On("GetCommits", "origin/john/a", "HEAD").Return([]git.Commit{commit("c3", "three")}, nil)
	f.git.On("GetCommits", "origin/john/b", "HEAD").Return([]git.Commit{commit("x3", "three, again")}, nil)

	unstacked, err := f.client.FindUnstackedCommits(context.Background(), twoEntryChain())
	require.NoError(t, err)
	require.Len(t, unstacked, 1)
	assert.Equal(t, "c3", unstacked[0].Hash, "ties go to the earlier candidate")
}

func TestFindUnstackedCommits_SkipsMissingCandidates(t *testing.T) {
	f := newFixture(t)
	f.remoteRefs("origin/main", "origin/john/b")
	f.git.On("GetCommits", "origin/main", "HEAD").Return([]git.Commit{commit("c1", "one"), commit("c2", "two")}, nil)
	f.git.On("GetCommits", "origin/john/b", "HEAD").Return([]git.Commit{commit("c2", "two")}, nil)

	unstacked, err := f.client.FindUnstackedCommits(context.Background(), twoEntryChain())
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, git.Hashes(unstacked))
	f.git.AssertNotCalled(t, "GetCommits", "origin/john/a", "HEAD")
}

func TestFindUnstackedCommits_FallsBackToLocalTrunk(t *testing.T) {
	f := newFixture(t)
	f.remoteRefs()
	f.git.On("GetCommits", "main", "HEAD").Return([]git.Commit{commit("c1", "one")}, nil)

	unstacked, err := f.client.FindUnstackedCommits(context.Background(), &model.Chain{Trunk: "main"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, git.Hashes(unstacked))
}

func TestFindUnstackedCommits_FallsBackToRepositoryRoot(t *testing.T) {
	f := newFixture(t)
	f.remoteRefs()
	f.git.On("GetCommits", "main", "HEAD").Return(nil, errors.New("unknown revision main"))
	f.git.On("GetAllCommits", "HEAD").Return([]git.Commit{commit("root", "initial"), commit("c1", "one")}, nil)

	unstacked, err := f.client.FindUnstackedCommits(context.Background(), &model.Chain{Trunk: "main"})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "c1"}, git.Hashes(unstacked))
}

func TestFindUnstackedCommits_NoHistory(t *testing.T) {
	f := newFixture(t)
	f.remoteRefs()
	f.git.On("GetCommits", "main", "HEAD").Return(nil, errors.New("unknown revision main"))
	f.git.On("GetAllCommits", "HEAD").Return(nil, errors.New("unknown revision HEAD"))

	_, err := f.client.FindUnstackedCommits(context.Background(), &model.Chain{Trunk: "main"})
	assert.Error(t, err)
}

func TestDedupeUnstacked(t *testing.T) {
	chain := twoEntryChain()
	chain.Entries[0].Commits = []git.Commit{commit("c1", "one")}
	chain.Entries[1].Commits = []git.Commit{commit("c2", "two")}
	unstacked := []git.Commit{commit("c1", "one"), commit("c2", "two"), commit("c3", "three")}

	once := dedupeUnstacked(chain, unstacked)
	assert.Equal(t, []string{"c3"}, git.Hashes(once))
	assert.Equal(t, once, dedupeUnstacked(chain, once), "dedupe is idempotent")
	assert.Empty(t, dedupeUnstacked(chain, []git.Commit{commit("c1", "one")}))
}

func TestPopulateCommits(t *testing.T) {
	f := newFixture(t)
	f.git.On("GetCommits", "origin/main", "origin/john/a").Return([]git.Commit{commit("c1", "one")}, nil)
	f.git.On("GetCommits", "origin/john/a", "origin/john/b").Return([]git.Commit{commit("c2", "two")}, nil)

	chain := twoEntryChain()
	warnings := f.client.PopulateCommits(context.Background(), chain)

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"c1"}, git.Hashes(chain.Entries[0].Commits))
	assert.Equal(t, []string{"c2"}, git.Hashes(chain.Entries[1].Commits))
	f.git.AssertNotCalled(t, "Fetch")
}

func TestPopulateCommits_FetchesOnceAndRetries(t *testing.T) {
	f := newFixture(t)
	f.git.On("GetCommits", "origin/main", "origin/john/a").Return(nil, errors.New("bad revision")).Once()
	f.git.On("GetCommits", "origin/main", "origin/john/a").Return([]git.Commit{commit("c1", "one")}, nil)
	f.git.On("GetCommits", "origin/john/a", "origin/john/b").Return(nil, errors.New("bad revision"))
	f.git.On("Fetch").Return(nil)

	chain := twoEntryChain()
	warnings := f.client.PopulateCommits(context.Background(), chain)

	assert.Equal(t, []string{"c1"}, git.Hashes(chain.Entries[0].Commits))
	assert.Empty(t, chain.Entries[1].Commits)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "#2")
	f.git.AssertNumberOfCalls(t, "Fetch", 1)
}
