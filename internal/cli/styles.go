package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/gitroster/internal/model"
)

var (
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// StatusIcon returns the marker shown next to a repository with status s.
func StatusIcon(s model.Status) string {
	switch s {
	case model.StatusUpToDate:
		return successStyle.Render("✓")
	case model.StatusError:
		return errorStyle.Render("✗")
	case model.StatusCloning, model.StatusUpdating:
		return spinnerStyle.Render("…")
	default:
		return mutedStyle.Render("·")
	}
}
