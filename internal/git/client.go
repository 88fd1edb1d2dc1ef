package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultRemote is the remote used when none is configured
const DefaultRemote = "origin"

// Client provides git operations for a repository.
//
// Mutating operations (branch, push, rebase, fetch) shell out to the git binary so
// hooks, credentials and config behave exactly as on the command line. Read-only
// lookups of refs and commit objects go through go-git.
type Client struct {
	gitRoot string
	remote  string
	repo    *gogit.Repository
}

// NewClient creates a new git client for the repository containing the current directory
func NewClient(ctx context.Context, remote string) (*Client, error) {
	gitRoot, err := getGitRoot(ctx, "")
	if err != nil {
		return nil, err
	}
	return NewClientAt(gitRoot, remote)
}

// NewClientAt creates a new git client for the repository at dir
func NewClientAt(dir string, remote string) (*Client, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if remote == "" {
		remote = DefaultRemote
	}
	c := &Client{gitRoot: abs, remote: remote}
	if err := c.reopen(); err != nil {
		return nil, err
	}
	return c, nil
}

// reopen replaces the go-git handle. go-git indexes packfiles once per handle, so
// objects that arrive in a new pack are only visible through a fresh one.
func (c *Client) reopen() error {
	repo, err := gogit.PlainOpenWithOptions(c.gitRoot, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	c.repo = repo
	return nil
}

// GitRoot returns the root directory of the git repository
func (c *Client) GitRoot() string {
	return c.gitRoot
}

// Remote returns the name of the remote used for pushes and upstream lookups
func (c *Client) Remote() string {
	return c.remote
}

// RemoteRef returns the remote-tracking ref for a branch, e.g. origin/main
func (c *Client) RemoteRef(branch string) string {
	return c.remote + "/" + branch
}

// GetCurrentBranch returns the name of the current git branch
func (c *Client) GetCurrentBranch(ctx context.Context) (string, error) {
	output, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// TreeStatus describes the working tree and its position relative to an upstream ref
type TreeStatus struct {
	Clean  bool
	Ahead  int
	Behind int
}

// Status reports working tree cleanliness and ahead/behind counts against upstream.
// If upstream is empty or does not exist, Ahead and Behind are zero.
func (c *Client) Status(ctx context.Context, upstream string) (*TreeStatus, error) {
	dirty, err := c.HasUncommittedChanges(ctx)
	if err != nil {
		return nil, err
	}
	status := &TreeStatus{Clean: !dirty}
	if upstream == "" {
		return status, nil
	}
	if _, err := c.GetCommitHash(ctx, upstream); err != nil {
		return status, nil
	}

	output, err := c.run(ctx, "rev-list", "--left-right", "--count", "HEAD..."+upstream)
	if err != nil {
		return nil, fmt.Errorf("failed to compare HEAD with %s: %w", upstream, err)
	}
	fields := strings.Fields(string(output))
	if len(fields) != 2 {
		return nil, fmt.Errorf("unexpected rev-list output: %q", string(output))
	}
	if status.Ahead, err = strconv.Atoi(fields[0]); err != nil {
		return nil, fmt.Errorf("failed to parse ahead count: %w", err)
	}
	if status.Behind, err = strconv.Atoi(fields[1]); err != nil {
		return nil, fmt.Errorf("failed to parse behind count: %w", err)
	}
	return status, nil
}

// HasUncommittedChanges checks if there are any uncommitted changes in the working directory
func (c *Client) HasUncommittedChanges(ctx context.Context) (bool, error) {
	output, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to check git status: %w", err)
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// GetCommitHash resolves a ref (branch, remote ref, HEAD, hash) to a commit hash
func (c *Client) GetCommitHash(ctx context.Context, ref string) (string, error) {
	hash, err := c.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("failed to get commit hash for %s: %w", ref, err)
	}
	return hash.String(), nil
}

// BranchExists checks if a local branch exists
func (c *Client) BranchExists(ctx context.Context, name string) bool {
	_, err := c.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	return err == nil
}

// RemoteBranchExists checks if the remote-tracking ref for a branch exists.
// The answer is only as fresh as the last fetch.
func (c *Client) RemoteBranchExists(ctx context.Context, name string) bool {
	_, err := c.repo.Reference(plumbing.NewRemoteReferenceName(c.remote, name), true)
	return err == nil
}

// IsAncestor reports whether ancestor is reachable from descendant
func (c *Client) IsAncestor(ctx context.Context, ancestor string, descendant string) bool {
	_, err := c.run(ctx, "merge-base", "--is-ancestor", ancestor, descendant)
	return err == nil
}

// GetCommits returns all commits reachable from head that are not reachable from base,
// oldest first
func (c *Client) GetCommits(ctx context.Context, base string, head string) ([]Commit, error) {
	output, err := c.run(ctx, "rev-list", "--reverse", fmt.Sprintf("%s..%s", base, head))
	if err != nil {
		return nil, fmt.Errorf("failed to get commits %s..%s: %w", base, head, err)
	}
	return c.commitsFromRevList(output)
}

// GetAllCommits returns every commit reachable from head back to the repository root,
// oldest first
func (c *Client) GetAllCommits(ctx context.Context, head string) ([]Commit, error) {
	output, err := c.run(ctx, "rev-list", "--reverse", head)
	if err != nil {
		return nil, fmt.Errorf("failed to get commits for %s: %w", head, err)
	}
	return c.commitsFromRevList(output)
}

func (c *Client) commitsFromRevList(output []byte) ([]Commit, error) {
	hashes := strings.Fields(string(output))
	commits := make([]Commit, 0, len(hashes))
	for _, hash := range hashes {
		commit, err := c.commitObject(hash)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

func (c *Client) commitObject(hash string) (Commit, error) {
	obj, err := c.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return Commit{}, fmt.Errorf("failed to read commit %s: %w", ShortHash(hash), err)
	}
	commit := ParseCommitMessage(obj.Hash.String(), obj.Message)
	commit.Author = obj.Author.Name
	commit.AuthorEmail = obj.Author.Email
	commit.Timestamp = obj.Author.When
	return commit, nil
}

// CreateBranch creates a new branch at the given ref without checking it out
func (c *Client) CreateBranch(ctx context.Context, name string, at string) error {
	if _, err := c.run(ctx, "branch", name, at); err != nil {
		return fmt.Errorf("failed to create branch %s at %s: %w", name, at, err)
	}
	return nil
}

// CheckoutBranch checks out the specified branch
func (c *Client) CheckoutBranch(ctx context.Context, name string) error {
	if _, err := c.run(ctx, "checkout", name); err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", name, err)
	}
	return nil
}

// ResetBranch moves a local branch to the given ref. A checked-out branch is reset
// with `reset --hard`, so the working tree must be clean.
func (c *Client) ResetBranch(ctx context.Context, name string, to string) error {
	current, err := c.GetCurrentBranch(ctx)
	if err != nil {
		return err
	}
	args := []string{"branch", "--force", name, to}
	if current == name {
		args = []string{"reset", "--hard", to}
	}
	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to reset branch %s to %s: %w", name, to, err)
	}
	return nil
}

// DeleteBranch deletes a local branch
func (c *Client) DeleteBranch(ctx context.Context, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := c.run(ctx, "branch", flag, name); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}

// PushOptions controls how a branch is pushed
type PushOptions struct {
	// ForceWithLease overwrites the remote branch only if it still points where we last saw it
	ForceWithLease bool
	// SetUpstream records the remote branch as the upstream of the local one
	SetUpstream bool
}

// Push pushes a branch to the configured remote
func (c *Client) Push(ctx context.Context, branch string, opts PushOptions) error {
	args := []string{"push"}
	if opts.ForceWithLease {
		args = append(args, "--force-with-lease")
	}
	if opts.SetUpstream {
		args = append(args, "--set-upstream")
	}
	args = append(args, c.remote, branch)

	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}
	return nil
}

// Fetch refreshes remote-tracking refs, pruning refs deleted upstream
func (c *Client) Fetch(ctx context.Context) error {
	if _, err := c.run(ctx, "fetch", "--prune", c.remote); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", c.remote, err)
	}
	return c.reopen()
}

// IsRebaseInProgress checks if a rebase is currently in progress
func (c *Client) IsRebaseInProgress() bool {
	gitDir := filepath.Join(c.gitRoot, ".git")
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, dir)); err == nil {
			return true
		}
	}
	return false
}

// run executes git in the repository root and returns stdout
func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	return runGit(ctx, c.gitRoot, args...)
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return output, &CommandError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return output, nil
}

// getGitRoot is a private helper to get the git root directory
func getGitRoot(ctx context.Context, dir string) (string, error) {
	output, err := runGit(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotGitRepository, err)
	}
	return strings.TrimSpace(string(output)), nil
}
