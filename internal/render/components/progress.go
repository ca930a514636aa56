package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mpjhorner/specdash/internal/model"
)

// ProgressBar renders completion of a set of work entities
type ProgressBar struct {
	Width   int
	Total   int
	Current int
	Label   string
	ShowPct bool
	ASCII   bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(current, total, width int) ProgressBar {
	return ProgressBar{
		Width:   width,
		Total:   total,
		Current: current,
		ShowPct: true,
	}
}

// NewCountsBar creates a progress bar for the completed share of counts
func NewCountsBar(c model.Counts, width int) ProgressBar {
	return NewProgressBar(c.Completed, c.Total, width)
}

// WithLabel adds a label to the progress bar
func (p ProgressBar) WithLabel(label string) ProgressBar {
	p.Label = label
	return p
}

// Render returns the string representation of the progress bar. An empty
// total renders an empty bar rather than nothing.
func (p ProgressBar) Render() string {
	result := p.bar()
	if p.Label != "" {
		result = fmt.Sprintf("%s %s", p.Label, result)
	}

	if p.ShowPct {
		pctStr := lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Render(fmt.Sprintf(" %d/%d (%d%%)", p.Current, p.Total, model.Percent(p.Current, p.Total)))
		result += pctStr
	}

	return result
}

func (p ProgressBar) bar() string {
	fill, rest := "█", "░"
	if p.ASCII {
		fill, rest = "#", "-"
	}

	filledWidth := 0
	if p.Total > 0 {
		filledWidth = p.Current * p.Width / p.Total
	}
	if filledWidth > p.Width {
		filledWidth = p.Width
	}
	emptyWidth := p.Width - filledWidth

	filled := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Render(strings.Repeat(fill, filledWidth))

	empty := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat(rest, emptyWidth))

	return filled + empty
}

// MiniProgressBar renders a compact bar for per-intent breakdowns
type MiniProgressBar struct {
	Width   int
	Total   int
	Current int
	ASCII   bool
}

// NewMiniProgressBar creates a new mini progress bar
func NewMiniProgressBar(current, total, width int) MiniProgressBar {
	return MiniProgressBar{
		Width:   width,
		Total:   total,
		Current: current,
	}
}

// Render returns the mini progress bar
func (p MiniProgressBar) Render() string {
	return ProgressBar{Width: p.Width, Total: p.Total, Current: p.Current, ASCII: p.ASCII}.bar()
}
