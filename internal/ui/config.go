package ui

// DisplayConfig holds configuration for UI rendering
type DisplayConfig struct {
	// Truncation limits
	MaxTitleLength         int
	MaxTitleLengthDetailed int
	MaxCommitsPerEntry     int

	// Display lengths
	CommitHashDisplayLength int
	DefaultTerminalWidth    int
}

// DefaultConfig returns the default display configuration
func DefaultConfig() DisplayConfig {
	return DisplayConfig{
		MaxTitleLength:         50,
		MaxTitleLengthDetailed: 72,
		MaxCommitsPerEntry:     5,

		CommitHashDisplayLength: 7,
		DefaultTerminalWidth:    120,
	}
}

// Display is the global display configuration
var Display = DefaultConfig()
