package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestRenderPlainWhenDisabled(t *testing.T) {
	SetColorEnabled(false)
	defer func() { colorOverride = nil }()

	if got := RenderAccent("sync"); got != "sync" {
		t.Errorf("RenderAccent() = %q, want plain %q", got, "sync")
	}
	if got := RenderPass("✓"); got != "✓" {
		t.Errorf("RenderPass() = %q, want plain %q", got, "✓")
	}
	if got := RenderError("failed"); got != "failed" {
		t.Errorf("RenderError() = %q, want plain %q", got, "failed")
	}
}

func TestRenderStyledWhenEnabled(t *testing.T) {
	// Tests run without a TTY, so force a color profile for lipgloss.
	lipgloss.SetColorProfile(termenv.ANSI256)
	SetColorEnabled(true)
	defer func() {
		colorOverride = nil
		lipgloss.SetColorProfile(termenv.Ascii)
	}()

	tests := []struct {
		name   string
		render func(string) string
	}{
		{"accent", RenderAccent},
		{"pass", RenderPass},
		{"warn", RenderWarn},
		{"error", RenderError},
		{"dim", RenderDim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.render("text")
			if !strings.Contains(got, "text") {
				t.Errorf("styled output %q lost the input text", got)
			}
			if got == "text" {
				t.Errorf("%s output is unstyled with color forced on", tt.name)
			}
		})
	}
}

func TestDetectColorHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if detectColor() {
		t.Error("detectColor() = true with NO_COLOR set")
	}
}

func TestSetColorEnabledOverridesDetection(t *testing.T) {
	SetColorEnabled(true)
	defer func() { colorOverride = nil }()

	if !ColorEnabled() {
		t.Error("ColorEnabled() = false after SetColorEnabled(true)")
	}

	SetColorEnabled(false)
	if ColorEnabled() {
		t.Error("ColorEnabled() = true after SetColorEnabled(false)")
	}
}
