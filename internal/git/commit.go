package git

import (
	"strings"
	"time"
)

// Commit is a single commit read from the local repository. Values are never mutated
// after they are read.
type Commit struct {
	Hash        string
	Title       string
	Body        string
	Message     string
	Author      string
	AuthorEmail string
	Timestamp   time.Time
}

// ShortHash returns the abbreviated form of the commit hash
func (c Commit) ShortHash() string {
	return ShortHash(c.Hash)
}

// ShortHash abbreviates a full commit hash to 7 characters
func ShortHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}

// ParseCommitMessage splits a raw commit message into title and body
func ParseCommitMessage(hash string, message string) Commit {
	commit := Commit{
		Hash:    hash,
		Message: message,
	}

	title, body, _ := strings.Cut(strings.TrimLeft(message, "\n"), "\n")
	commit.Title = strings.TrimSpace(title)
	commit.Body = strings.TrimSpace(body)
	return commit
}

// Hashes returns the hashes of commits in order
func Hashes(commits []Commit) []string {
	hashes := make([]string, len(commits))
	for i, c := range commits {
		hashes[i] = c.Hash
	}
	return hashes
}
