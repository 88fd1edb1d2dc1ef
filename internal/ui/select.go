package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/bjulian5/stackpr/internal/model"
)

func init() {
	// Detect the terminal before the fuzzy finder takes it over so escape
	// sequences from the color probe do not leak into the finder input
	_ = lipgloss.NewStyle().Render("")
	_ = lipgloss.HasDarkBackground()
}

// SelectEntry presents a fuzzy finder over the chain's entries. It returns nil without
// an error when the user cancels.
func SelectEntry(entries []model.StackEntry) (*model.StackEntry, error) {
	os.Stdout.Sync()
	os.Stderr.Sync()

	idx, err := fuzzyfinder.Find(
		entries,
		func(i int) string {
			return FormatEntryFinderLine(i+1, entries[i])
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return FormatEntryPreview(i+1, entries[i])
		}),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entries[idx], nil
}
