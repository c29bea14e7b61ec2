package tui

import "github.com/charmbracelet/lipgloss"

// Shared terminal styles for command output.
var (
	// Title is the main header text style.
	Title = lipgloss.NewStyle().Bold(true)

	// Muted is for hints and less important info.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	// Success marks a record that matches the live address.
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	// Failure marks a missing or mismatched record.
	Failure = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// Warning marks partial or degraded outcomes.
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

// Mark renders a styled check or cross for a boolean outcome.
func Mark(ok bool) string {
	if ok {
		return Success.Render("✓")
	}
	return Failure.Render("✗")
}
