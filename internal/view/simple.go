package view

import (
	"fmt"
	"path/filepath"

	"github.com/mpjhorner/specdash/internal/flow/simple"
	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/render"
)

var phaseLabels = map[model.SpecPhase]string{
	model.PhaseRequirementsPending: "requirements pending",
	model.PhaseDesignPending:       "design pending",
	model.PhaseTasksPending:        "tasks pending",
	model.PhaseImplementing:        "implementing",
	model.PhaseCompleted:           "completed",
}

func specKey(name string) string {
	return "spec:" + name
}

// specDocument is the file opened for a spec: the most advanced document
// that exists
func specDocument(s model.Spec) string {
	switch {
	case s.HasTasks:
		return filepath.Join(s.Path, simple.TasksFile)
	case s.HasDesign:
		return filepath.Join(s.Path, simple.DesignFile)
	case s.HasRequirements:
		return filepath.Join(s.Path, simple.RequirementsFile)
	default:
		return ""
	}
}

func specLines(s model.Spec, st State) []render.Line {
	key := specKey(s.Name)
	text := fmt.Sprintf("%s %s %s  %s", st.Icons.Fold(st.expanded(key)), st.Icons.Status(s.Status), s.Name, phaseLabels[s.Phase])
	if s.Counts.Total > 0 {
		text += fmt.Sprintf("  %d/%d tasks", s.Counts.Completed, s.Counts.Total)
	}
	lines := []render.Line{{Text: text, Style: statusStyle(s.Status), Key: key, Path: specDocument(s)}}

	if !st.expanded(key) {
		return lines
	}
	for _, task := range s.Tasks {
		box := st.Icons.Pending
		style := render.StyleNormal
		if task.Done {
			box, style = st.Icons.Completed, render.StyleSuccess
		}
		label := task.Text
		if task.Optional {
			label += " (optional)"
			if !task.Done {
				style = render.StyleMuted
			}
		}
		lines = append(lines, render.Line{
			Text:  fmt.Sprintf("    %s %s %s", box, task.ID, label),
			Style: style,
			Key:   fmt.Sprintf("%s/task:%d", key, task.Line),
			Path:  filepath.Join(s.Path, simple.TasksFile),
		})
	}
	return lines
}

func specPanels(ss *model.SimpleState, st State) []render.Panel {
	group := func(title, empty string, keep func(model.Spec) bool) render.Panel {
		var lines []render.Line
		n := 0
		for _, s := range ss.Specs {
			if !keep(s) {
				continue
			}
			n++
			lines = append(lines, specLines(s, st)...)
		}
		if n == 0 {
			return emptyPanel(title, empty)
		}
		return render.Panel{Title: fmt.Sprintf("%s (%d)", title, n), Lines: lines}
	}

	var panels []render.Panel
	if st.Filter.showActive() {
		panels = append(panels,
			group("Implementing", "No spec in implementation", func(s model.Spec) bool {
				return s.Phase == model.PhaseImplementing
			}),
			group("In authoring", "No spec being written", func(s model.Spec) bool {
				return s.Phase != model.PhaseImplementing && s.Phase != model.PhaseCompleted
			}),
		)
	}
	if st.Filter.showCompleted() {
		panels = append(panels, group("Completed specs", "No completed specs", func(s model.Spec) bool {
			return s.Phase == model.PhaseCompleted
		}))
	}
	if st.Filter != FilterAll {
		panels[0].Title += " [" + st.Filter.String() + "]"
	}
	return panels
}

// simpleDocPanels lists each spec with the documents it has
func simpleDocPanels(ss *model.SimpleState, st State) []render.Panel {
	if len(ss.Specs) == 0 {
		return []render.Panel{emptyPanel("Specs", "No specs yet")}
	}

	mark := func(ok bool) string {
		if ok {
			return st.Icons.Completed
		}
		return st.Icons.Pending
	}

	var lines []render.Line
	for _, s := range ss.Specs {
		lines = append(lines, render.Line{
			Text:  fmt.Sprintf("%s %s", st.Icons.Status(s.Status), s.Name),
			Style: statusStyle(s.Status),
			Key:   "doc:" + s.Name,
			Path:  specDocument(s),
		})
		docs := []struct {
			name string
			ok   bool
		}{
			{simple.RequirementsFile, s.HasRequirements},
			{simple.DesignFile, s.HasDesign},
			{simple.TasksFile, s.HasTasks},
		}
		for _, d := range docs {
			l := render.Line{Text: fmt.Sprintf("    %s %s", mark(d.ok), d.name), Style: render.StyleMuted}
			if d.ok {
				l.Key = "doc:" + s.Name + "/" + d.name
				l.Path = filepath.Join(s.Path, d.name)
				l.Style = render.StyleNormal
			}
			lines = append(lines, l)
		}
	}
	return []render.Panel{{Title: fmt.Sprintf("Specs (%d)", len(ss.Specs)), Lines: lines}}
}
