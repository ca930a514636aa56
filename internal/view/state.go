// Package view turns snapshots into frames of titled panels. Every builder
// is a pure function of its inputs.
package view

import (
	"time"

	"github.com/mpjhorner/specdash/internal/render"
	"github.com/mpjhorner/specdash/internal/render/components"
)

// RunFilter narrows the work view to active or finished entries
type RunFilter int

const (
	FilterAll RunFilter = iota
	FilterActive
	FilterCompleted
)

// String returns the filter name
func (f RunFilter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Next cycles all -> active -> completed -> all
func (f RunFilter) Next() RunFilter {
	return (f + 1) % 3
}

func (f RunFilter) showActive() bool {
	return f != FilterCompleted
}

func (f RunFilter) showCompleted() bool {
	return f != FilterActive
}

// Preview is file or diff content shown below the panels of a view
type Preview struct {
	Title string
	Text  string
	Diff  bool
}

// State is the UI state a frame is built from
type State struct {
	View     components.Tab
	Selected string
	Expanded map[string]bool
	Filter   RunFilter
	Icons    IconSet
	Now      time.Time

	// Preview is shown when set. The caller loads it for the selected line.
	Preview       *Preview
	HighlightCode bool
}

func (s State) expanded(key string) bool {
	return s.Expanded[key]
}

// Selectables returns the selectable lines of a frame in display order
func Selectables(f render.Frame) []render.Line {
	var out []render.Line
	for _, p := range f.Panels {
		for _, l := range p.Lines {
			if l.Selectable() {
				out = append(out, l)
			}
		}
	}
	return out
}

// Lookup finds the selectable line with key
func Lookup(f render.Frame, key string) (render.Line, bool) {
	if key == "" {
		return render.Line{}, false
	}
	for _, l := range Selectables(f) {
		if l.Key == key {
			return l, true
		}
	}
	return render.Line{}, false
}

// Move returns the key delta selectable lines away from current, clamped to
// the ends. An unknown current key selects the first line.
func Move(f render.Frame, current string, delta int) string {
	lines := Selectables(f)
	if len(lines) == 0 {
		return ""
	}

	idx := -1
	for i, l := range lines {
		if l.Key == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return lines[0].Key
	}

	next := idx + delta
	if next < 0 {
		next = 0
	}
	if next >= len(lines) {
		next = len(lines) - 1
	}
	return lines[next].Key
}

// markSelected flags the line whose key is selected
func markSelected(panels []render.Panel, selected string) {
	if selected == "" {
		return
	}
	for i := range panels {
		for j := range panels[i].Lines {
			if panels[i].Lines[j].Key == selected {
				panels[i].Lines[j].Selected = true
				return
			}
		}
	}
}
