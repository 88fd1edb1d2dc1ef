package git

import (
	"os"
	"path/filepath"
)

// prTemplateLocations lists standard pull request template locations in order of precedence
var prTemplateLocations = []string{
	".github/PULL_REQUEST_TEMPLATE.md",
	".github/pull_request_template.md",
	"docs/pull_request_template.md",
	"PULL_REQUEST_TEMPLATE.md",
	"pull_request_template.md",
}

// FindPRTemplate returns the repository's pull request template, or an empty string
// if the repository has none
func (c *Client) FindPRTemplate() (string, error) {
	for _, location := range prTemplateLocations {
		content, err := os.ReadFile(filepath.Join(c.gitRoot, location))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		return string(content), nil
	}
	return "", nil
}

// StateDir returns the directory stackpr keeps its private files in, inside .git
func (c *Client) StateDir() string {
	return filepath.Join(c.gitRoot, ".git", "stackpr")
}
