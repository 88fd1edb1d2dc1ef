package gh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// prFields are the JSON fields requested from every gh pr query
const prFields = "number,title,url,state,isDraft,headRefName,baseRefName,headRefOid,createdAt,updatedAt"

// listLimit bounds how many open PRs are listed for the current user
const listLimit = 200

// Runner executes gh with the given arguments and returns stdout
type Runner func(ctx context.Context, args ...string) ([]byte, error)

// Client provides GitHub operations via gh CLI
type Client struct {
	run Runner
}

// NewClient creates a new GitHub client backed by the gh binary
func NewClient() *Client {
	return &Client{run: execGH}
}

// NewClientWithRunner creates a client that sends gh invocations to run
func NewClientWithRunner(run Runner) *Client {
	return &Client{run: run}
}

// ListOpenPRs returns the open pull requests authored by the authenticated user
func (c *Client) ListOpenPRs(ctx context.Context) ([]*PR, error) {
	output, err := c.run(ctx,
		"pr", "list",
		"--author", "@me",
		"--state", "open",
		"--limit", strconv.Itoa(listLimit),
		"--json", prFields,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list open PRs: %w", err)
	}
	return parsePRList(output)
}

// GetPR fetches a pull request by number
func (c *Client) GetPR(ctx context.Context, number int) (*PR, error) {
	output, err := c.run(ctx, "pr", "view", strconv.Itoa(number), "--json", prFields)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PR #%d: %w", number, err)
	}
	return parsePR(output)
}

// CreatePR opens a new pull request. If GitHub reports one already exists for the head
// branch, the existing request is returned instead.
func (c *Client) CreatePR(ctx context.Context, spec PRSpec) (*PR, error) {
	args := []string{
		"pr", "create",
		"--title", spec.Title,
		"--body", spec.Body,
		"--base", spec.Base,
		"--head", spec.Head,
	}
	if spec.Draft {
		args = append(args, "--draft")
	}

	// Create the PR (outputs URL to stdout)
	if _, err := c.run(ctx, args...); err != nil {
		if !isPRAlreadyExistsError(err) {
			return nil, fmt.Errorf("failed to create PR: %w", err)
		}
	}

	// Query GitHub for the PR details
	pr, err := c.getPRByHead(ctx, spec.Head)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created PR details: %w", err)
	}
	if pr == nil {
		return nil, fmt.Errorf("PR for %s was created but not found", spec.Head)
	}
	return pr, nil
}

// UpdatePRBase re-points a pull request at a new base branch
func (c *Client) UpdatePRBase(ctx context.Context, number int, base string) error {
	if _, err := c.run(ctx, "pr", "edit", strconv.Itoa(number), "--base", base); err != nil {
		return fmt.Errorf("failed to update base of PR #%d to %s: %w", number, base, err)
	}
	return nil
}

// MarkPRReady takes a pull request out of draft
func (c *Client) MarkPRReady(ctx context.Context, number int) error {
	if _, err := c.run(ctx, "pr", "ready", strconv.Itoa(number)); err != nil {
		return fmt.Errorf("failed to mark PR #%d as ready: %w", number, err)
	}
	return nil
}

// MergePR merges a pull request with the given method
func (c *Client) MergePR(ctx context.Context, number int, opts MergeOptions) error {
	method := opts.Method
	if method == "" {
		method = MergeSquash
	}
	args := []string{"pr", "merge", strconv.Itoa(number), "--" + string(method)}
	if opts.DeleteBranch {
		args = append(args, "--delete-branch")
	}
	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to merge PR #%d: %w", number, err)
	}
	return nil
}

// getPRByHead finds a PR by head branch name, returning nil if none exists
func (c *Client) getPRByHead(ctx context.Context, head string) (*PR, error) {
	output, err := c.run(ctx,
		"pr", "list",
		"--head", head,
		"--state", "all",
		"--json", prFields,
		"--limit", "1",
	)
	if err != nil {
		return nil, err
	}

	prs, err := parsePRList(output)
	if err != nil {
		return nil, err
	}
	if len(prs) == 0 {
		return nil, nil // No PR found
	}
	return prs[0], nil
}

// prJSON is the common structure for PR data from gh CLI
type prJSON struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	State       string    `json:"state"`
	IsDraft     bool      `json:"isDraft"`
	HeadRefName string    `json:"headRefName"`
	BaseRefName string    `json:"baseRefName"`
	HeadRefOid  string    `json:"headRefOid"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// toPR converts a prJSON to a PR
func (p *prJSON) toPR() (*PR, error) {
	state, err := normalizeState(p.State, p.IsDraft)
	if err != nil {
		return nil, fmt.Errorf("PR #%d: %w", p.Number, err)
	}
	return &PR{
		Number:    p.Number,
		Title:     p.Title,
		URL:       p.URL,
		State:     state,
		Head:      p.HeadRefName,
		Base:      p.BaseRefName,
		HeadOID:   p.HeadRefOid,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

// parsePR parses PR data from gh CLI JSON output (single PR)
func parsePR(data []byte) (*PR, error) {
	var ghPR prJSON
	if err := json.Unmarshal(data, &ghPR); err != nil {
		return nil, fmt.Errorf("failed to parse PR JSON: %w", err)
	}
	return ghPR.toPR()
}

// parsePRList parses a JSON array of PRs from gh CLI output
func parsePRList(data []byte) ([]*PR, error) {
	var raw []prJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse PR list: %w", err)
	}
	prs := make([]*PR, 0, len(raw))
	for i := range raw {
		pr, err := raw[i].toPR()
		if err != nil {
			return nil, err
		}
		prs = append(prs, pr)
	}
	return prs, nil
}

// execGH executes a gh CLI command and returns the output
func execGH(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("gh CLI error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("failed to execute gh: %w", err)
	}
	return output, nil
}

// isPRAlreadyExistsError checks if error indicates PR already exists (private helper)
func isPRAlreadyExistsError(err error) bool {
	return strings.Contains(err.Error(), "already exists")
}
