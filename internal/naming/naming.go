// Package naming derives branch names for new stack entries.
package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bjulian5/stackpr/internal/git"
)

// Strategy selects how a branch name is derived
type Strategy string

const (
	// CommitMessage slugs the newest commit's subject line
	CommitMessage Strategy = "commit-message"
	// Sequential uses the current time in milliseconds as a monotonic counter
	Sequential Strategy = "sequential"
	// Timestamp uses an ISO-8601 UTC timestamp with separators replaced by hyphens
	Timestamp Strategy = "timestamp"
)

const (
	// MaxBranchNameLength is GitHub's limit on ref name length
	MaxBranchNameLength = 255
	// MaxSlugLength bounds the commit-message slug so branch names stay readable
	MaxSlugLength = 50
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// Strategies lists the supported strategies
func Strategies() []Strategy {
	return []Strategy{CommitMessage, Sequential, Timestamp}
}

// ParseStrategy validates a strategy name
func ParseStrategy(s string) (Strategy, error) {
	for _, strategy := range Strategies() {
		if string(strategy) == s {
			return strategy, nil
		}
	}
	return "", fmt.Errorf("unknown naming strategy %q (want commit-message, sequential or timestamp)", s)
}

// BranchName derives a branch name for commits (oldest first) under prefix.
// An empty commit list yields a placeholder name rather than an error.
func BranchName(commits []git.Commit, prefix string, strategy Strategy, now time.Time) (string, error) {
	if len(commits) == 0 {
		return join(prefix, "empty-"+timestamp(now)), nil
	}

	switch strategy {
	case CommitMessage:
		newest := commits[len(commits)-1]
		slug := Slugify(newest.Title, slugBudget(prefix))
		if slug == "" {
			slug = "commit-" + newest.ShortHash()
		}
		return join(prefix, slug), nil
	case Sequential:
		return join(prefix, strconv.FormatInt(now.UnixMilli(), 10)), nil
	case Timestamp:
		return join(prefix, timestamp(now)), nil
	default:
		return "", fmt.Errorf("unknown naming strategy %q", strategy)
	}
}

// Slugify lowercases s, strips everything but letters, digits, spaces and hyphens,
// turns whitespace runs into single hyphens and truncates to maxLen
func Slugify(s string, maxLen int) string {
	slug := strings.ToLower(s)
	slug = disallowed.ReplaceAllString(slug, "")
	slug = strings.TrimSpace(slug)
	slug = whitespace.ReplaceAllString(slug, "-")
	slug = hyphens.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if maxLen >= 0 && len(slug) > maxLen {
		slug = strings.TrimRight(slug[:maxLen], "-")
	}
	return slug
}

// Validate rejects branch names the hosting platform would refuse
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("branch name is empty")
	}
	if len(name) > MaxBranchNameLength {
		return fmt.Errorf("branch name is %d characters, the limit is %d; use a shorter branch-prefix", len(name), MaxBranchNameLength)
	}
	return nil
}

func slugBudget(prefix string) int {
	budget := MaxBranchNameLength
	if prefix != "" {
		budget -= len(prefix) + 1
	}
	return min(MaxSlugLength, budget)
}

func timestamp(now time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format("2006-01-02T15:04:05.000Z"))
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
