package model

import (
	"fmt"
)

// Chain is the ordered, linear sequence of stacked entries built on top of Trunk.
// Entries[0] is based on Trunk and every later entry is based on its predecessor's head.
type Chain struct {
	Trunk   string
	Entries []StackEntry
}

// Len returns the number of entries in the chain
func (c *Chain) Len() int {
	return len(c.Entries)
}

// IsEmpty reports whether the chain has no entries
func (c *Chain) IsEmpty() bool {
	return len(c.Entries) == 0
}

// Tail returns the top-most entry, or nil for an empty chain
func (c *Chain) Tail() *StackEntry {
	if len(c.Entries) == 0 {
		return nil
	}
	return &c.Entries[len(c.Entries)-1]
}

// Bottom returns the entry based directly on trunk, or nil for an empty chain
func (c *Chain) Bottom() *StackEntry {
	if len(c.Entries) == 0 {
		return nil
	}
	return &c.Entries[0]
}

// TailHead returns the branch a new entry should be based on: the tail's head, or trunk
func (c *Chain) TailHead() string {
	if tail := c.Tail(); tail != nil {
		return tail.Head
	}
	return c.Trunk
}

// Position returns the 1-based position of the entry with the given number, or 0
func (c *Chain) Position(number int) int {
	for i := range c.Entries {
		if c.Entries[i].Number == number {
			return i + 1
		}
	}
	return 0
}

// Find returns the entry with the given number, or nil
func (c *Chain) Find(number int) *StackEntry {
	if pos := c.Position(number); pos > 0 {
		return &c.Entries[pos-1]
	}
	return nil
}

// ExpectedBase returns the base the entry at index i must have for the chain to be linear
func (c *Chain) ExpectedBase(i int) string {
	if i == 0 {
		return c.Trunk
	}
	return c.Entries[i-1].Head
}

// CommitSet returns the hashes of every commit attributed to an entry
func (c *Chain) CommitSet() map[string]struct{} {
	set := make(map[string]struct{})
	for i := range c.Entries {
		for _, commit := range c.Entries[i].Commits {
			set[commit.Hash] = struct{}{}
		}
	}
	return set
}

// Validate checks that the chain is a simple path from trunk: each entry based on the
// previous entry's head and no head repeated. The base of an unverified entry is not
// checked.
func (c *Chain) Validate() error {
	seen := make(map[string]int, len(c.Entries))
	for i := range c.Entries {
		entry := &c.Entries[i]
		if entry.Head == "" {
			return fmt.Errorf("entry #%d has no head branch", entry.Number)
		}
		if entry.Head == c.Trunk {
			return fmt.Errorf("entry #%d uses trunk %s as its head", entry.Number, c.Trunk)
		}
		if prev, ok := seen[entry.Head]; ok {
			return fmt.Errorf("entries #%d and #%d share head %s", prev, entry.Number, entry.Head)
		}
		seen[entry.Head] = entry.Number

		if want := c.ExpectedBase(i); entry.Base != want && !entry.Unverified {
			return fmt.Errorf("entry #%d is based on %s, expected %s", entry.Number, entry.Base, want)
		}
	}
	return nil
}
