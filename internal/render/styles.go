package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	ColorPrimary   = lipgloss.Color("99")  // Purple
	ColorSecondary = lipgloss.Color("39")  // Cyan
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("196") // Red
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorMuted     = lipgloss.Color("245") // Gray
	ColorHighlight = lipgloss.Color("212") // Pink
	ColorCode      = lipgloss.Color("180") // Tan
)

// Style names the color and weight of a content line
type Style int

const (
	StyleNormal Style = iota
	StyleMuted
	StyleHeading
	StyleAccent
	StyleSuccess
	StyleWarning
	StyleError
	StyleCode
)

// Styles holds the lipgloss styles used to compose a frame
type Styles struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	Selected  lipgloss.Style
	Gutter    lipgloss.Style
	Gate      lipgloss.Style
	ErrorBox  lipgloss.Style
	ErrorCode lipgloss.Style
	Footer    lipgloss.Style
	Lines     map[Style]lipgloss.Style
}

// DefaultStyles returns the dashboard palette
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary),
		Selected: lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true),
		Gutter: lipgloss.NewStyle().
			Foreground(ColorHighlight),
		Gate: lipgloss.NewStyle().
			Background(ColorWarning).
			Foreground(lipgloss.Color("0")).
			Bold(true),
		ErrorBox: lipgloss.NewStyle().
			Foreground(ColorError),
		ErrorCode: lipgloss.NewStyle().
			Background(ColorError).
			Foreground(lipgloss.Color("255")).
			Bold(true),
		Footer: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Lines: map[Style]lipgloss.Style{
			StyleNormal:  lipgloss.NewStyle(),
			StyleMuted:   lipgloss.NewStyle().Foreground(ColorMuted),
			StyleHeading: lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true),
			StyleAccent:  lipgloss.NewStyle().Foreground(ColorSecondary),
			StyleSuccess: lipgloss.NewStyle().Foreground(ColorSuccess),
			StyleWarning: lipgloss.NewStyle().Foreground(ColorWarning),
			StyleError:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
			StyleCode:    lipgloss.NewStyle().Foreground(ColorCode),
		},
	}
}

func (s Styles) line(style Style) lipgloss.Style {
	if ls, ok := s.Lines[style]; ok {
		return ls
	}
	return lipgloss.NewStyle()
}
