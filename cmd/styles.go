package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mpjhorner/specdash/internal/render"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(render.ColorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(render.ColorError).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(render.ColorWarning)
	dimStyle     = lipgloss.NewStyle().Foreground(render.ColorMuted)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)
