package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpjhorner/specdash/internal/render"
)

// Shell styles. Panel content is styled by the render engine.
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(render.ColorPrimary)

	FlashStyle = lipgloss.NewStyle().
			Foreground(render.ColorHighlight).
			Bold(true)

	FlashErrorStyle = lipgloss.NewStyle().
			Foreground(render.ColorError).
			Bold(true)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(render.ColorSecondary)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(render.ColorMuted)
)

// newHelp returns a help model using the shell palette
func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = HelpKeyStyle
	h.Styles.ShortDesc = HelpDescStyle
	h.Styles.ShortSeparator = HelpDescStyle
	h.Styles.FullKey = HelpKeyStyle
	h.Styles.FullDesc = HelpDescStyle
	h.Styles.FullSeparator = HelpDescStyle
	return h
}
