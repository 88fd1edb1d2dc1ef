package ui

import (
	"fmt"
	"io"
	"os"
)

// Output destinations. Commands write results to Stdout and diagnostics to Stderr.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Success prints a success message with a checkmark icon
func Success(msg string) {
	fmt.Fprintln(Stdout, SuccessStyle.Render("✓ "+msg))
}

// Successf prints a formatted success message with a checkmark icon
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message with a warning icon
func Warning(msg string) {
	fmt.Fprintln(Stderr, WarningStyle.Render("⚠ "+msg))
}

// Warnings prints each tolerated failure of an operation
func Warnings(warnings []string) {
	for _, w := range warnings {
		Warning(w)
	}
}

// Info prints an info message with an info icon
func Info(msg string) {
	fmt.Fprintln(Stdout, InfoStyle.Render("ℹ "+msg))
}

// Infof prints a formatted info message with an info icon
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Print prints a plain message (no styling)
func Print(msg string) {
	fmt.Fprintln(Stdout, msg)
}

// Header prints a header (bold, colored)
func Header(header string) {
	fmt.Fprintln(Stdout, HeaderStyle.Render(header))
}

// Dim renders dimmed text
func Dim(text string) string {
	return DimStyle.Render(text)
}

// Bold renders bold text
func Bold(text string) string {
	return BoldStyle.Render(text)
}

// Highlight renders highlighted text (primary color, bold)
func Highlight(text string) string {
	return HighlightStyle.Render(text)
}
