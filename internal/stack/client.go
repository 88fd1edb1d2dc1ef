package stack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/logging"
	"github.com/bjulian5/stackpr/internal/naming"
	"github.com/bjulian5/stackpr/internal/state"
)

// GitClient defines the git operations needed by Stack Client
type GitClient interface {
	RemoteRef(branch string) string
	GetCurrentBranch(ctx context.Context) (string, error)
	Status(ctx context.Context, upstream string) (*git.TreeStatus, error)
	GetCommitHash(ctx context.Context, ref string) (string, error)
	BranchExists(ctx context.Context, name string) bool
	RemoteBranchExists(ctx context.Context, name string) bool
	IsAncestor(ctx context.Context, ancestor string, descendant string) bool
	GetCommits(ctx context.Context, base string, head string) ([]git.Commit, error)
	GetAllCommits(ctx context.Context, head string) ([]git.Commit, error)
	CreateBranch(ctx context.Context, name string, at string) error
	CheckoutBranch(ctx context.Context, name string) error
	ResetBranch(ctx context.Context, name string, to string) error
	DeleteBranch(ctx context.Context, name string, force bool) error
	Push(ctx context.Context, branch string, opts git.PushOptions) error
	Fetch(ctx context.Context) error
	Rebase(ctx context.Context, onto string) error
	RebaseOnto(ctx context.Context, newBase string, upstream string, branch string) error
	FindPRTemplate() (string, error)
}

// ReviewClient defines the pull request operations needed by Stack Client
type ReviewClient interface {
	ListOpenPRs(ctx context.Context) ([]*gh.PR, error)
	GetPR(ctx context.Context, number int) (*gh.PR, error)
	CreatePR(ctx context.Context, spec gh.PRSpec) (*gh.PR, error)
	UpdatePRBase(ctx context.Context, number int, base string) error
	MarkPRReady(ctx context.Context, number int) error
	MergePR(ctx context.Context, number int, opts gh.MergeOptions) error
}

// Options are the settings the stack client acts on
type Options struct {
	Trunk          string
	BranchPrefix   string
	NamingStrategy naming.Strategy
	Draft          bool
	// RequireSynced refuses to create entries while local trunk is behind its upstream
	RequireSynced bool
	// AutoRebaseLimit rebases local trunk instead of refusing when it is behind by at
	// most this many commits
	AutoRebaseLimit int
}

// Client provides stack operations
type Client struct {
	git   GitClient
	gh    ReviewClient
	store *state.Store
	opts  Options
	log   logr.Logger
	now   func() time.Time
}

// NewClient creates a new stack client
func NewClient(gitOps GitClient, ghClient ReviewClient, store *state.Store, opts Options, logger logr.Logger) *Client {
	if opts.Trunk == "" {
		opts.Trunk = "main"
	}
	if opts.NamingStrategy == "" {
		opts.NamingStrategy = naming.CommitMessage
	}
	return &Client{
		git:   gitOps,
		gh:    ghClient,
		store: store,
		opts:  opts,
		log:   logger,
		now:   time.Now,
	}
}

// Trunk returns the trunk branch the stack is built on
func (c *Client) Trunk() string {
	return c.opts.Trunk
}

// logger returns the run logger carried by ctx, or the client's logger
func (c *Client) logger(ctx context.Context) logr.Logger {
	if log, err := logr.FromContext(ctx); err == nil {
		return log
	}
	return c.log
}

// withRun attaches a run-scoped logger to ctx unless one is already there
func (c *Client) withRun(ctx context.Context) context.Context {
	if _, err := logr.FromContext(ctx); err == nil {
		return ctx
	}
	return logr.NewContext(ctx, logging.WithRun(c.log))
}

// lock takes the state lock for the duration of a mutating operation
func (c *Client) lock() (*state.Lock, error) {
	lock, err := c.store.Lock()
	if err != nil {
		if errors.Is(err, state.ErrLocked) {
			return nil, &PreconditionError{
				Reason: "another stackpr command is running in this repository",
				Hint:   "wait for it to finish and retry",
			}
		}
		return nil, err
	}
	return lock, nil
}

// persist writes next if it differs from what was loaded
func (c *Client) persist(log logr.Logger, prev *state.State, next *state.State) error {
	if prev != nil && prev.Equal(next) {
		log.V(1).Info("state unchanged")
		return nil
	}
	if err := c.store.Save(next); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	log.V(1).Info("state saved", "entries", next.Len())
	return nil
}

// requireCleanTree fails when the working tree has uncommitted changes
func (c *Client) requireCleanTree(ctx context.Context) error {
	status, err := c.git.Status(ctx, "")
	if err != nil {
		return err
	}
	if !status.Clean {
		return &PreconditionError{
			Reason: "working tree has uncommitted changes",
			Hint:   "commit or stash them first",
		}
	}
	return nil
}
