package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared by every styled CLI output.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
	colourBorder  = lipgloss.Color("#45475A")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary)

	mutedStyle = lipgloss.NewStyle().Foreground(colourMuted)

	successStyle = lipgloss.NewStyle().Foreground(colourSuccess)

	warningStyle = lipgloss.NewStyle().Foreground(colourWarning)

	errorStyle = lipgloss.NewStyle().Foreground(colourError)

	bannerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colourBorder).
			Padding(0, 2)
)

// keyBanner renders the one-time API key notice shown after ingestion.
func keyBanner(modelName, apiKey string) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Model %q created", modelName)),
		"",
		"API key: " + successStyle.Render(apiKey),
		"",
		warningStyle.Render("Store this key now. It is shown only once and cannot be recovered."),
	}
	return bannerStyle.Render(strings.Join(lines, "\n"))
}

// checkMark renders a pass/fail marker for doctor output.
func checkMark(ok bool) string {
	if ok {
		return successStyle.Render("ok")
	}
	return errorStyle.Render("FAIL")
}
