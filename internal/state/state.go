// Package state persists the last known chain between runs.
//
// The file is a cache: it is rebuilt from the review service on every sync and only
// used to order entries and to notice entries that stopped being listed as open.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bjulian5/stackpr/internal/model"
)

const stateFileName = "state.json"

// State is the persisted snapshot of the chain. Branches and PullRequests are index
// aligned: position i describes the i-th entry from the bottom of the chain.
type State struct {
	LastProcessedCommit string   `json:"lastProcessedCommit,omitempty"`
	Branches            []string `json:"branches"`
	PullRequests        []int    `json:"pullRequests"`
	LastBranch          string   `json:"lastBranch,omitempty"`
}

// FromChain builds the state describing chain with HEAD at head
func FromChain(chain *model.Chain, head string) *State {
	s := &State{
		LastProcessedCommit: head,
		Branches:            make([]string, 0, len(chain.Entries)),
		PullRequests:        make([]int, 0, len(chain.Entries)),
	}
	for _, entry := range chain.Entries {
		s.Branches = append(s.Branches, entry.Head)
		s.PullRequests = append(s.PullRequests, entry.Number)
	}
	if tail := chain.Tail(); tail != nil {
		s.LastBranch = tail.Head
	}
	return s
}

// Len returns the number of entries recorded
func (s *State) Len() int {
	return min(len(s.Branches), len(s.PullRequests))
}

// IndexOf returns the recorded position of the request with the given number, or -1
func (s *State) IndexOf(number int) int {
	if s == nil {
		return -1
	}
	idx := slices.Index(s.PullRequests, number)
	if idx >= s.Len() {
		return -1
	}
	return idx
}

// Equal reports whether two states record the same chain
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.LastProcessedCommit == other.LastProcessedCommit &&
		s.LastBranch == other.LastBranch &&
		slices.Equal(s.Branches, other.Branches) &&
		slices.Equal(s.PullRequests, other.PullRequests)
}

// Store reads and writes the state file in a directory
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, typically .git/stackpr
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the state file
func (s *Store) Path() string {
	return filepath.Join(s.dir, stateFileName)
}

// Load reads the state file. A missing file yields an empty state.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.Path(), err)
	}
	if len(st.Branches) != len(st.PullRequests) {
		return nil, fmt.Errorf("state file %s is inconsistent: %d branches, %d pull requests",
			s.Path(), len(st.Branches), len(st.PullRequests))
	}
	return &st, nil
}

// Save replaces the state file with st. The file is written to a temporary name and
// renamed so readers never see a partial write.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, stateFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
