// Package config resolves stackpr settings from flags, environment, and config files.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/naming"
)

// Setting keys. Flags with the same name are bound to them.
const (
	KeyTrunk           = "trunk"
	KeyRemote          = "remote"
	KeyBranchPrefix    = "branch-prefix"
	KeyNamingStrategy  = "naming-strategy"
	KeyDraft           = "draft"
	KeyRequireSynced   = "require-synced"
	KeyAutoRebaseLimit = "auto-rebase-limit"
	KeyMergeMethod     = "merge-method"
	KeyDeleteBranch    = "delete-branch"
	KeyLogLevel        = "log-level"
)

const (
	envPrefix      = "STACKPR"
	appName        = "stackpr"
	repoConfigName = ".stackpr.yaml"
)

// Settings is the resolved configuration for one invocation
type Settings struct {
	Trunk           string
	Remote          string
	BranchPrefix    string
	NamingStrategy  naming.Strategy
	Draft           bool
	RequireSynced   bool
	AutoRebaseLimit int
	MergeMethod     gh.MergeMethod
	DeleteBranch    bool
	LogLevel        string

	// ConfigFiles lists the files that contributed, in the order they were read
	ConfigFiles []string
}

// Options controls where Load looks for settings
type Options struct {
	// Flags are bound so explicitly set flags override every other source
	Flags *pflag.FlagSet
	// ConfigFile is an explicit config path; when set it must exist
	ConfigFile string
	// RepoRoot, when set, is searched for a repository-level .stackpr.yaml
	RepoRoot string
}

// Load resolves settings. Precedence, highest first: flags, STACKPR_* environment,
// repository .stackpr.yaml, user config.yaml, defaults.
func Load(opts Options) (*Settings, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	explicit := opts.ConfigFile
	if explicit == "" {
		explicit = os.Getenv(envPrefix + "_CONFIG")
	}
	configureConfigFile(v, explicit)
	if err := readConfigFile(v, explicit != ""); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var files []string
	if used := v.ConfigFileUsed(); used != "" && fileExists(used) {
		files = append(files, used)
	}

	if opts.RepoRoot != "" {
		repoFile := filepath.Join(opts.RepoRoot, repoConfigName)
		if fileExists(repoFile) {
			v.SetConfigFile(repoFile)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", repoFile, err)
			}
			files = append(files, repoFile)
		}
	}

	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	s := &Settings{
		Trunk:           v.GetString(KeyTrunk),
		Remote:          v.GetString(KeyRemote),
		BranchPrefix:    v.GetString(KeyBranchPrefix),
		NamingStrategy:  naming.Strategy(v.GetString(KeyNamingStrategy)),
		Draft:           v.GetBool(KeyDraft),
		RequireSynced:   v.GetBool(KeyRequireSynced),
		AutoRebaseLimit: v.GetInt(KeyAutoRebaseLimit),
		MergeMethod:     gh.MergeMethod(strings.ToLower(v.GetString(KeyMergeMethod))),
		DeleteBranch:    v.GetBool(KeyDeleteBranch),
		LogLevel:        v.GetString(KeyLogLevel),
		ConfigFiles:     files,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that every setting has a usable value
func (s *Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Trunk) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyTrunk))
	}
	if strings.TrimSpace(s.Remote) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyRemote))
	}
	if strings.ContainsAny(s.BranchPrefix, " ~^:?*[\\") {
		errs = append(errs, fmt.Errorf("%s %q is not a valid branch name component", KeyBranchPrefix, s.BranchPrefix))
	}
	if _, err := naming.ParseStrategy(string(s.NamingStrategy)); err != nil {
		errs = append(errs, err)
	}
	if _, err := gh.ParseMergeMethod(string(s.MergeMethod)); err != nil {
		errs = append(errs, err)
	}
	if s.AutoRebaseLimit < 0 {
		errs = append(errs, fmt.Errorf("%s must be zero or positive, got %d", KeyAutoRebaseLimit, s.AutoRebaseLimit))
	}
	return errors.Join(errs...)
}

// Entry is one resolved setting, used for display
type Entry struct {
	Key   string
	Value string
}

// Entries returns the settings as ordered key/value pairs
func (s *Settings) Entries() []Entry {
	return []Entry{
		{KeyTrunk, s.Trunk},
		{KeyRemote, s.Remote},
		{KeyBranchPrefix, s.BranchPrefix},
		{KeyNamingStrategy, string(s.NamingStrategy)},
		{KeyDraft, fmt.Sprint(s.Draft)},
		{KeyRequireSynced, fmt.Sprint(s.RequireSynced)},
		{KeyAutoRebaseLimit, fmt.Sprint(s.AutoRebaseLimit)},
		{KeyMergeMethod, string(s.MergeMethod)},
		{KeyDeleteBranch, fmt.Sprint(s.DeleteBranch)},
		{KeyLogLevel, s.LogLevel},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTrunk, "main")
	v.SetDefault(KeyRemote, "origin")
	v.SetDefault(KeyBranchPrefix, defaultBranchPrefix())
	v.SetDefault(KeyNamingStrategy, string(naming.CommitMessage))
	v.SetDefault(KeyDraft, true)
	v.SetDefault(KeyRequireSynced, true)
	v.SetDefault(KeyAutoRebaseLimit, 0)
	v.SetDefault(KeyMergeMethod, string(gh.MergeSquash))
	v.SetDefault(KeyDeleteBranch, true)
	v.SetDefault(KeyLogLevel, "warn")
}

// defaultBranchPrefix returns the OS username for branch naming
func defaultBranchPrefix() string {
	currentUser, err := user.Current()
	if err != nil || currentUser.Username == "" {
		return "stackpr"
	}
	name := currentUser.Username
	// Windows usernames come back as DOMAIN\name
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range configSearchDirs() {
		v.AddConfigPath(dir)
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

func configSearchDirs() []string {
	added := make(map[string]struct{})
	var dirs []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := added[path]; ok {
			return
		}
		added[path] = struct{}{}
		dirs = append(dirs, path)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		add(filepath.Join(xdg, appName))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		add(filepath.Join(home, ".config", appName))
	}
	return dirs
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
