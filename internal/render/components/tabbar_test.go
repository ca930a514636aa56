package components

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/mpjhorner/specdash/internal/model"
)

func TestNewTabBar(t *testing.T) {
	tb := NewTabBar(model.FlowAIDLC, TabGit)

	assert.Equal(t, TabGit, tb.Active)
	assert.Equal(t, model.FlowAIDLC, tb.Flow)
	assert.Equal(t, 80, tb.Width, "Default width should be 80")
	assert.Empty(t, tb.Counts)
}

func TestTabNextPrev(t *testing.T) {
	tab := TabWork
	var seen []Tab
	for range AllTabs() {
		tab = tab.Next()
		seen = append(seen, tab)
	}
	assert.Equal(t, []Tab{TabIntents, TabGit, TabHealth, TabWork}, seen, "Next from Health wraps to Work")

	assert.Equal(t, TabHealth, TabWork.Prev(), "Prev from Work wraps to Health")
	assert.Equal(t, TabIntents, TabGit.Prev())
	assert.Equal(t, TabWork, Tab(-1).Next())
	assert.Equal(t, TabWork, Tab(9).Prev())
}

func TestTabLabel(t *testing.T) {
	tests := []struct {
		flow    model.Flow
		work    string
		intents string
	}{
		{model.FlowFire, "Runs", "Intents"},
		{model.FlowAIDLC, "Bolts", "Intents"},
		{model.FlowSimple, "Specs", "Docs"},
		{"", "Work", "Intents"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.work, TabWork.Label(tt.flow), "flow %q", tt.flow)
		assert.Equal(t, tt.intents, TabIntents.Label(tt.flow), "flow %q", tt.flow)
		assert.Equal(t, "Git", TabGit.Label(tt.flow))
		assert.Equal(t, "Health", TabHealth.Label(tt.flow))
	}
}

func TestTabBarRender(t *testing.T) {
	tb := NewTabBar(model.FlowSimple, TabWork)
	tb.Width = 100
	tb.Counts = map[Tab]int{TabWork: 2, TabGit: 0, TabHealth: 1}

	for _, tab := range AllTabs() {
		tb.Active = tab
		rendered := ansi.Strip(tb.Render())

		assert.Contains(t, rendered, "[1] Specs 2")
		assert.Contains(t, rendered, "[2] Docs")
		assert.Contains(t, rendered, "[3] Git")
		assert.NotContains(t, rendered, "[3] Git 0", "zero counts have no badge")
		assert.Contains(t, rendered, "[4] Health 1")
		assert.Equal(t, 100, lipgloss.Width(tb.Render()))
	}
}

func TestTabBarRenderNarrow(t *testing.T) {
	tb := NewTabBar(model.FlowFire, TabIntents)
	tb.Counts = map[Tab]int{TabIntents: 3}

	tb.Width = 40
	rendered := ansi.Strip(tb.Render())
	assert.Contains(t, rendered, "[2] Intents 3", "the active tab keeps its label")
	assert.NotContains(t, rendered, "Runs")
	assert.LessOrEqual(t, lipgloss.Width(tb.Render()), 40)

	tb.Width = 20
	rendered = ansi.Strip(tb.Render())
	assert.NotContains(t, rendered, "Intents")
	assert.Equal(t, ansi.Strip(tb.RenderCompact()), rendered)
	assert.Contains(t, rendered, "1")
	assert.Contains(t, rendered, "4")
}

func TestTabFromKey(t *testing.T) {
	tests := []struct {
		key      string
		expected Tab
	}{
		{"1", TabWork},
		{"2", TabIntents},
		{"3", TabGit},
		{"4", TabHealth},
		{"0", Tab(-1)},
		{"5", Tab(-1)},
		{"a", Tab(-1)},
		{"", Tab(-1)},
	}

	for _, tt := range tests {
		result := TabFromKey(tt.key)
		assert.Equal(t, tt.expected, result, "TabFromKey(%q)", tt.key)
	}
}

func TestTabStringAndShortKey(t *testing.T) {
	tests := []struct {
		tab   Tab
		name  string
		short string
	}{
		{TabWork, "Work", "1"},
		{TabIntents, "Intents", "2"},
		{TabGit, "Git", "3"},
		{TabHealth, "Health", "4"},
		{Tab(99), "Unknown", "?"},
		{Tab(-1), "Unknown", "?"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.tab.String())
		assert.Equal(t, tt.short, tt.tab.ShortKey())
	}
}
