package model

import (
	"github.com/bjulian5/stackpr/internal/gh"
	"github.com/bjulian5/stackpr/internal/git"
)

// StackEntry is one pull request in the chain together with the commits it carries
type StackEntry struct {
	Number  int
	Title   string
	URL     string
	Status  gh.State
	Head    string
	Base    string
	HeadOID string

	// Commits holds the commits in <base>..<head>, oldest first. Filled during sync.
	Commits []git.Commit

	// NeedsBaseRepair marks an entry whose declared base branch no longer exists upstream
	// or which was only reachable through a cycle of base pointers.
	NeedsBaseRepair bool

	// Unverified marks an entry whose status or base update failed during the last
	// repair. It keeps its place in the chain and is left untouched until a later sync.
	Unverified bool
}

// EntryFromPR builds a chain entry from a pull request returned by GitHub
func EntryFromPR(pr *gh.PR) StackEntry {
	return StackEntry{
		Number:  pr.Number,
		Title:   pr.Title,
		URL:     pr.URL,
		Status:  pr.State,
		Head:    pr.Head,
		Base:    pr.Base,
		HeadOID: pr.HeadOID,
	}
}

// UpdateFromPR refreshes the live fields of the entry from a newer view of its request
func (e *StackEntry) UpdateFromPR(pr *gh.PR) {
	e.Title = pr.Title
	e.URL = pr.URL
	e.Status = pr.State
	e.Base = pr.Base
	if pr.HeadOID != "" {
		e.HeadOID = pr.HeadOID
	}
}

// IsDraft reports whether the entry is an open draft
func (e *StackEntry) IsDraft() bool {
	return e.Status == gh.StateDraft
}

// HasCommit reports whether the entry carries the commit with the given hash
func (e *StackEntry) HasCommit(hash string) bool {
	for _, c := range e.Commits {
		if c.Hash == hash {
			return true
		}
	}
	return false
}
