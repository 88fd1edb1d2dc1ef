package common

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bjulian5/stackpr/internal/config"
	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/git"
	"github.com/bjulian5/stackpr/internal/logging"
	"github.com/bjulian5/stackpr/internal/stack"
	"github.com/bjulian5/stackpr/internal/state"
)

// Names of the root persistent flags read by InitFromCommand
const (
	FlagConfig  = "config"
	FlagVerbose = "verbose"
)

// Clients bundles everything a command needs
type Clients struct {
	Settings *config.Settings
	Log      logr.Logger
	Git      *git.Client
	GH       *gh.Client
	Stack    *stack.Client
}

// InitOptions are the root flags that shape client construction
type InitOptions struct {
	Flags      *pflag.FlagSet
	ConfigFile string
	Verbose    bool
}

// InitClients resolves settings and builds the git, GitHub and stack clients.
// Returns an error that is suitable for use in PreRunE hooks.
func InitClients(ctx context.Context, opts InitOptions) (*Clients, error) {
	gitClient, err := git.NewClient(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("git client initialization failed: %w", err)
	}

	settings, err := config.Load(config.Options{
		Flags:      opts.Flags,
		ConfigFile: opts.ConfigFile,
		RepoRoot:   gitClient.GitRoot(),
	})
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		settings.LogLevel = "debug"
	}

	logger, err := logging.New(settings.LogLevel, nil)
	if err != nil {
		return nil, err
	}

	if settings.Remote != gitClient.Remote() {
		if gitClient, err = git.NewClientAt(gitClient.GitRoot(), settings.Remote); err != nil {
			return nil, fmt.Errorf("git client initialization failed: %w", err)
		}
	}
	logger.V(1).Info("configuration loaded", "files", settings.ConfigFiles, "trunk", settings.Trunk, "remote", settings.Remote)

	ghClient := gh.NewClient()
	store := state.NewStore(gitClient.StateDir())
	stackClient := stack.NewClient(gitClient, ghClient, store, stack.Options{
		Trunk:           settings.Trunk,
		BranchPrefix:    settings.BranchPrefix,
		NamingStrategy:  settings.NamingStrategy,
		Draft:           settings.Draft,
		RequireSynced:   settings.RequireSynced,
		AutoRebaseLimit: settings.AutoRebaseLimit,
	}, logger)

	return &Clients{
		Settings: settings,
		Log:      logger,
		Git:      gitClient,
		GH:       ghClient,
		Stack:    stackClient,
	}, nil
}

// InitFromCommand runs InitClients with the flags of the executing command
func InitFromCommand(cmd *cobra.Command) (*Clients, error) {
	configFile, _ := cmd.Flags().GetString(FlagConfig)
	verbose, _ := cmd.Flags().GetBool(FlagVerbose)
	return InitClients(cmd.Context(), InitOptions{
		Flags:      cmd.Flags(),
		ConfigFile: configFile,
		Verbose:    verbose,
	})
}
