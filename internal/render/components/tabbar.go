package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mpjhorner/specdash/internal/model"
)

// Tab is one of the dashboard views
type Tab int

const (
	TabWork Tab = iota
	TabIntents
	TabGit
	TabHealth
)

var tabNames = [...]string{"Work", "Intents", "Git", "Health"}

const tabCount = Tab(len(tabNames))

func (t Tab) valid() bool { return t >= 0 && t < tabCount }

func (t Tab) String() string {
	if !t.valid() {
		return "Unknown"
	}
	return tabNames[t]
}

// ShortKey returns the number key that selects the tab
func (t Tab) ShortKey() string {
	if !t.valid() {
		return "?"
	}
	return strconv.Itoa(int(t) + 1)
}

// Label names the tab in the vocabulary of a flow. Without a flow the
// generic names are used.
func (t Tab) Label(f model.Flow) string {
	switch {
	case t == TabWork && f == model.FlowFire:
		return "Runs"
	case t == TabWork && f == model.FlowAIDLC:
		return "Bolts"
	case t == TabWork && f == model.FlowSimple:
		return "Specs"
	case t == TabIntents && f == model.FlowSimple:
		return "Docs"
	}
	return t.String()
}

// Next returns the following view, wrapping around
func (t Tab) Next() Tab {
	if !t.valid() {
		return TabWork
	}
	return (t + 1) % tabCount
}

// Prev returns the preceding view, wrapping around
func (t Tab) Prev() Tab {
	if !t.valid() {
		return TabWork
	}
	return (t + tabCount - 1) % tabCount
}

// AllTabs returns the views in key order
func AllTabs() []Tab {
	return []Tab{TabWork, TabIntents, TabGit, TabHealth}
}

// TabFromKey returns the tab for a number key, or -1
func TabFromKey(key string) Tab {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > int(tabCount) {
		return Tab(-1)
	}
	return Tab(n - 1)
}

var (
	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("99")).
			Padding(0, 2)
	tabIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("238")).
			Padding(0, 2)
	tabFillStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
)

// TabBar is the view switcher under the header
type TabBar struct {
	Active Tab
	Flow   model.Flow
	Width  int

	// Counts badges a tab label; zero shows no badge.
	Counts map[Tab]int
}

// NewTabBar creates a tab bar for a flow with the given view selected
func NewTabBar(f model.Flow, active Tab) *TabBar {
	return &TabBar{Active: active, Flow: f, Width: 80}
}

func (tb *TabBar) label(t Tab) string {
	s := "[" + t.ShortKey() + "] " + t.Label(tb.Flow)
	if n := tb.Counts[t]; n > 0 {
		s += fmt.Sprintf(" %d", n)
	}
	return s
}

// Render draws every tab with its label. When that does not fit, only the
// active tab keeps its label, and as a last resort only keys are shown.
func (tb *TabBar) Render() string {
	full := tb.join(func(Tab) bool { return true })
	if lipgloss.Width(full) <= tb.Width {
		return tabFillStyle.Width(tb.Width).Render(full)
	}
	if active := tb.join(func(t Tab) bool { return t == tb.Active }); lipgloss.Width(active) <= tb.Width {
		return active
	}
	return tb.RenderCompact()
}

// RenderCompact draws only the number keys
func (tb *TabBar) RenderCompact() string {
	return tb.join(func(Tab) bool { return false })
}

func (tb *TabBar) join(labeled func(Tab) bool) string {
	parts := make([]string, 0, tabCount)
	for _, t := range AllTabs() {
		text := t.ShortKey()
		if labeled(t) {
			text = tb.label(t)
		}
		style := tabIdleStyle
		if t == tb.Active {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(text))
	}
	return strings.Join(parts, tabFillStyle.Render(" "))
}
