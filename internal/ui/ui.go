// Package ui provides terminal styling helpers for skd command output.
//
// Styling is applied only when stdout is a terminal that supports color.
// NO_COLOR and the --no-color flag disable it.
package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	accentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

var (
	colorMu       sync.Mutex
	colorOverride *bool
	colorDetected bool
	colorOnce     sync.Once
)

func detectColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// ColorEnabled reports whether styled output is active.
func ColorEnabled() bool {
	colorMu.Lock()
	defer colorMu.Unlock()
	if colorOverride != nil {
		return *colorOverride
	}
	colorOnce.Do(func() {
		colorDetected = detectColor()
	})
	return colorDetected
}

// SetColorEnabled forces styling on or off, overriding detection.
func SetColorEnabled(enabled bool) {
	colorMu.Lock()
	defer colorMu.Unlock()
	colorOverride = &enabled
}

func render(style lipgloss.Style, s string) string {
	if !ColorEnabled() {
		return s
	}
	return style.Render(s)
}

// RenderAccent styles s as a highlighted label.
func RenderAccent(s string) string { return render(accentStyle, s) }

// RenderPass styles s as a success marker.
func RenderPass(s string) string { return render(passStyle, s) }

// RenderWarn styles s as a warning marker.
func RenderWarn(s string) string { return render(warnStyle, s) }

// RenderError styles s as an error marker.
func RenderError(s string) string { return render(errorStyle, s) }

// RenderDim styles s as de-emphasized detail text.
func RenderDim(s string) string { return render(dimStyle, s) }

// IsInteractive reports whether stdin is attached to a terminal, which
// gates interactive prompts.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
