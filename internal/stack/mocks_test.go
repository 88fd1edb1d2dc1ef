package stack

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/git"
)

type MockGitClient struct {
	mock.Mock
}

// RemoteRef implements GitClient.
func (m *MockGitClient) RemoteRef(branch string) string {
	return "origin/" + branch
}

// GetCurrentBranch implements GitClient.
func (m *MockGitClient) GetCurrentBranch(ctx context.Context) (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// Status implements GitClient.
func (m *MockGitClient) Status(ctx context.Context, upstream string) (*git.TreeStatus, error) {
	args := m.Called(upstream)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*git.TreeStatus), args.Error(1)
}

// GetCommitHash implements GitClient.
func (m *MockGitClient) GetCommitHash(ctx context.Context, ref string) (string, error) {
	args := m.Called(ref)
	return args.String(0), args.Error(1)
}

// BranchExists implements GitClient.
func (m *MockGitClient) BranchExists(ctx context.Context, name string) bool {
	args := m.Called(name)
	return args.Bool(0)
}

// RemoteBranchExists implements GitClient.
func (m *MockGitClient) RemoteBranchExists(ctx context.Context, name string) bool {
	args := m.Called(name)
	return args.Bool(0)
}

// IsAncestor implements GitClient.
func (m *MockGitClient) IsAncestor(ctx context.Context, ancestor string, descendant string) bool {
	args := m.Called(ancestor, descendant)
	return args.Bool(0)
}

// GetCommits implements GitClient.
func (m *MockGitClient) GetCommits(ctx context.Context, base string, head string) ([]git.Commit, error) {
	args := m.Called(base, head)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]git.Commit), args.Error(1)
}

// GetAllCommits implements GitClient.
func (m *MockGitClient) GetAllCommits(ctx context.Context, head string) ([]git.Commit, error) {
	args := m.Called(head)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]git.Commit), args.Error(1)
}

// CreateBranch implements GitClient.
func (m *MockGitClient) CreateBranch(ctx context.Context, name string, at string) error {
	args := m.Called(name, at)
	return args.Error(0)
}

// CheckoutBranch implements GitClient.
func (m *MockGitClient) CheckoutBranch(ctx context.Context, name string) error {
	args := m.Called(name)
	return args.Error(0)
}

// ResetBranch implements GitClient.
func (m *MockGitClient) ResetBranch(ctx context.Context, name string, to string) error {
	args := m.Called(name, to)
	return args.Error(0)
}

// DeleteBranch implements GitClient.
func (m *MockGitClient) DeleteBranch(ctx context.Context, name string, force bool) error {
	args := m.Called(name, force)
	return args.Error(0)
}

// Push implements GitClient.
func (m *MockGitClient) Push(ctx context.Context, branch string, opts git.PushOptions) error {
	args := m.Called(branch, opts)
	return args.Error(0)
}

// Fetch implements GitClient.
func (m *MockGitClient) Fetch(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

// Rebase implements GitClient.
func (m *MockGitClient) Rebase(ctx context.Context, onto string) error {
	args := m.Called(onto)
	return args.Error(0)
}

// RebaseOnto implements GitClient.
func (m *MockGitClient) RebaseOnto(ctx context.Context, newBase string, upstream string, branch string) error {
	args := m.Called(newBase, upstream, branch)
	return args.Error(0)
}

// FindPRTemplate implements GitClient.
func (m *MockGitClient) FindPRTemplate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

type MockReviewClient struct {
	mock.Mock
}

// ListOpenPRs implements ReviewClient.
func (m *MockReviewClient) ListOpenPRs(ctx context.Context) ([]*gh.PR, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*gh.PR), args.Error(1)
}

// GetPR implements ReviewClient.
func (m *MockReviewClient) GetPR(ctx context.Context, number int) (*gh.PR, error) {
	args := m.Called(number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gh.PR), args.Error(1)
}

// CreatePR implements ReviewClient.
func (m *MockReviewClient) CreatePR(ctx context.Context, spec gh.PRSpec) (*gh.PR, error) {
	args := m.Called(spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gh.PR), args.Error(1)
}

// UpdatePRBase implements ReviewClient.
func (m *MockReviewClient) UpdatePRBase(ctx context.Context, number int, base string) error {
	args := m.Called(number, base)
	return args.Error(0)
}

// MarkPRReady implements ReviewClient.
func (m *MockReviewClient) MarkPRReady(ctx context.Context, number int) error {
	args := m.Called(number)
	return args.Error(0)
}

// MergePR implements ReviewClient.
func (m *MockReviewClient) MergePR(ctx context.Context, number int, opts gh.MergeOptions) error {
	args := m.Called(number, opts)
	return args.Error(0)
}
