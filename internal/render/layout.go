// Package render lays out dashboard frames: it splits the terminal height
// between panels, windows long panels around the selection and composes the
// final string.
package render

import (
	"fmt"

	"github.com/mpjhorner/specdash/internal/textutil"
)

// MinPanelRows is the height every admitted panel reserves, title included
const MinPanelRows = 4

// Line is one row of panel content
type Line struct {
	Text     string
	Style    Style
	Selected bool

	// Key identifies a selectable line across refreshes. Decoration lines
	// leave it empty.
	Key string

	// Path is the file previewed or opened for the line.
	Path string

	// Styled lines already carry ANSI styling and are not restyled.
	Styled bool
}

// Selectable reports whether the line can hold the selection
func (l Line) Selectable() bool {
	return l.Key != ""
}

// Panel is a titled block of lines
type Panel struct {
	Title string
	Lines []Line

	// MaxRows caps the rows leftover distribution may give the panel.
	// Zero means uncapped.
	MaxRows int
}

// Allocation is a panel admitted into the layout with its row count
type Allocation struct {
	Panel Panel
	Rows  int
}

// Allocate splits budget rows between panels in order. Every admitted panel
// reserves MinPanelRows, and panels after the first also reserve one
// separator row. Panels are admitted while the remaining budget covers their
// reservation; the first is always admitted. Leftover rows are handed out one
// at a time, round-robin, until the budget is spent or no panel can grow.
func Allocate(panels []Panel, budget int) []Allocation {
	if len(panels) == 0 {
		return nil
	}

	first := textutil.Clamp(budget, 1, MinPanelRows)
	allocs := []Allocation{{Panel: panels[0], Rows: first}}
	remaining := budget - first

	for _, p := range panels[1:] {
		cost := MinPanelRows + 1
		if remaining < cost {
			break
		}
		allocs = append(allocs, Allocation{Panel: p, Rows: MinPanelRows})
		remaining -= cost
	}

	for remaining > 0 {
		grew := false
		for i := range allocs {
			if remaining == 0 {
				break
			}
			if limit := allocs[i].Panel.MaxRows; limit > 0 && allocs[i].Rows >= limit {
				continue
			}
			allocs[i].Rows++
			remaining--
			grew = true
		}
		if !grew {
			break
		}
	}

	return allocs
}

// Window returns at most budget lines of lines. With a selected line the
// window is centered on it and clamped to the list bounds; otherwise the head
// of the list is shown with a trailing "+N more" line.
func Window(lines []Line, budget int) []Line {
	if budget <= 0 {
		return nil
	}
	if len(lines) <= budget {
		return lines
	}

	selected := -1
	for i, l := range lines {
		if l.Selected {
			selected = i
			break
		}
	}

	if selected < 0 {
		head := budget - 1
		more := Line{
			Text:  fmt.Sprintf("+%d more", len(lines)-head),
			Style: StyleMuted,
		}
		return append(append([]Line{}, lines[:head]...), more)
	}

	start := textutil.Clamp(selected-budget/2, 0, len(lines)-budget)
	return lines[start : start+budget]
}
