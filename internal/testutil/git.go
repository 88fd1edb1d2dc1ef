package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bjulian5/stackpr/internal/git"
)

// Fixed dates keep commit hashes reproducible across runs
var commitEnv = []string{
	"GIT_AUTHOR_DATE=2024-01-01T00:00:00Z",
	"GIT_COMMITTER_DATE=2024-01-01T00:00:00Z",
}

// NewTestGitClient creates a git client in a temporary repository that has an initial
// commit on main and a bare "origin" remote that main has been pushed to
func NewTestGitClient(t *testing.T) *git.Client {
	t.Helper()

	remoteDir := t.TempDir()
	Git(t, remoteDir, "init", "--bare", "--initial-branch=main")

	tempDir := t.TempDir()
	Git(t, tempDir, "init", "--initial-branch=main")
	Git(t, tempDir, "config", "user.name", "Test User")
	Git(t, tempDir, "config", "user.email", "test@example.com")
	Git(t, tempDir, "config", "commit.gpgsign", "false")
	Git(t, tempDir, "remote", "add", "origin", remoteDir)

	gitClient, err := git.NewClientAt(tempDir, "origin")
	require.NoError(t, err)

	_ = CreateCommit(t, gitClient, "Initial commit", "")
	Git(t, tempDir, "push", "--set-upstream", "origin", "main")

	return gitClient
}

// CreateCommit creates a commit touching a file derived from the title and returns its hash
func CreateCommit(t *testing.T, gitClient *git.Client, title, body string) string {
	t.Helper()

	// file names come from the title so repeated runs produce identical trees
	name := strings.NewReplacer(" ", "-", "/", "-", ":", "-").Replace(title)
	testFile := filepath.Join(gitClient.GitRoot(), fmt.Sprintf("file-%s.txt", name))
	err := os.WriteFile(testFile, fmt.Appendf(nil, "%s\n%s", title, body), 0644)
	require.NoError(t, err)

	Git(t, gitClient.GitRoot(), "add", ".")

	message := title
	if body != "" {
		message += "\n\n" + body
	}
	cmd := exec.Command("git", "commit", "-m", message)
	cmd.Dir = gitClient.GitRoot()
	cmd.Env = append(os.Environ(), commitEnv...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git commit failed: %s", string(output))

	return Git(t, gitClient.GitRoot(), "rev-parse", "HEAD")
}

// Git runs a git command in dir, fails the test on error, and returns trimmed stdout
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), commitEnv...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s failed: %s", strings.Join(args, " "), string(output))
	return strings.TrimSpace(string(output))
}
