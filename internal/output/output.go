// Package output handles formatting CLI output as table, JSON, or compact.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (table).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatCompact outputs one-line-per-record compact format.
	FormatCompact
)

// EnvFormat is the environment variable that selects the default format.
const EnvFormat = "TASKLANE_OUTPUT"

// Detect returns the appropriate format based on flags and environment.
// Default is table when no explicit format is set.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	if compactFlag {
		return FormatCompact
	}
	if tableFlag {
		return FormatTable
	}

	// Check environment variable.
	switch os.Getenv(EnvFormat) {
	case "json":
		return FormatJSON
	case "compact", "oneline":
		return FormatCompact
	case "table":
		return FormatTable
	}

	// Default: table.
	return FormatTable
}

// colorEnabled tracks whether styled output and glamour rendering are on.
var colorEnabled = true

// DisableColor strips all styling from table output and switches lipgloss
// to the plain ASCII profile.
func DisableColor() {
	colorEnabled = false
	lipgloss.SetColorProfile(termenv.Ascii)
	resetStyles()
}

// ColorEnabled reports whether styled output is on.
func ColorEnabled() bool { return colorEnabled }
