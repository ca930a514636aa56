package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StepState is the progress of one step in a StageIndicator
type StepState int

const (
	StepPending StepState = iota
	StepActive
	StepComplete
)

// Step is one named stage or phase
type Step struct {
	Name  string
	State StepState
}

// StageIndicator shows an ordered sequence of stages, e.g. a bolt's
// plan -> implement -> test or a run's plan -> execute -> review
type StageIndicator struct {
	Steps []Step
	ASCII bool
}

// NewStageIndicator creates a stage indicator
func NewStageIndicator(steps []Step) *StageIndicator {
	return &StageIndicator{Steps: steps}
}

// Render returns the indicator as a string, or "" when there are no steps
func (p *StageIndicator) Render() string {
	if len(p.Steps) == 0 {
		return ""
	}

	// Colors
	activeColor := lipgloss.Color("42")   // Green
	pendingColor := lipgloss.Color("245") // Gray
	completeColor := lipgloss.Color("99") // Purple

	// Styles
	activeStyle := lipgloss.NewStyle().
		Foreground(activeColor).
		Bold(true)

	pendingStyle := lipgloss.NewStyle().
		Foreground(pendingColor)

	completeStyle := lipgloss.NewStyle().
		Foreground(completeColor)

	arrowStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	arrow := " → "
	if p.ASCII {
		arrow = " -> "
	}

	parts := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		switch step.State {
		case StepActive:
			parts = append(parts, activeStyle.Render(strings.ToUpper(step.Name)))
		case StepComplete:
			parts = append(parts, completeStyle.Render(step.Name+p.check()))
		default:
			parts = append(parts, pendingStyle.Render(step.Name))
		}
	}

	return strings.Join(parts, arrowStyle.Render(arrow))
}

func (p *StageIndicator) check() string {
	if p.ASCII {
		return "*"
	}
	return "✓"
}
