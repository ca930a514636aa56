package view

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/render"
	"github.com/mpjhorner/specdash/internal/render/components"
	"github.com/mpjhorner/specdash/internal/textutil"
)

// runPhases is the order a FIRE work item moves through inside a run
var runPhases = []string{"plan", "implement", "test", "review"}

var phaseAliases = map[string]string{
	"planning":       "plan",
	"design":         "plan",
	"execute":        "implement",
	"execution":      "implement",
	"implementation": "implement",
	"build":          "implement",
	"testing":        "test",
	"verify":         "test",
	"validation":     "test",
	"walkthrough":    "review",
	"document":       "review",
}

func canonicalPhase(phase string) string {
	token := model.NormalizeToken(phase)
	if alias, ok := phaseAliases[token]; ok {
		return alias
	}
	return token
}

// runSteps derives the phase indicator of a run from its current phase and
// the artifacts on disk
func runSteps(run model.Run) []components.Step {
	phase := run.CurrentPhase
	if item := run.Current(); item != nil && item.CurrentPhase != "" {
		phase = item.CurrentPhase
	}
	current := lo.IndexOf(runPhases, canonicalPhase(phase))
	done := map[string]bool{
		"plan":   run.HasPlan,
		"test":   run.HasTestReport,
		"review": run.HasWalkthrough,
	}

	steps := make([]components.Step, 0, len(runPhases))
	for i, name := range runPhases {
		state := components.StepPending
		switch {
		case run.Status == model.RunCompleted:
			state = components.StepComplete
		case i == current:
			state = components.StepActive
		case (current >= 0 && i < current) || done[name]:
			state = components.StepComplete
		}
		steps = append(steps, components.Step{Name: name, State: state})
	}
	return steps
}

func runKey(id string) string {
	return "run:" + id
}

func itemKey(intent, id string) string {
	return "item:" + intent + "/" + id
}

func runLines(run model.Run, gated bool, st State) []render.Line {
	icon := st.Icons.InProgress
	style := render.StyleAccent
	if run.Status == model.RunCompleted {
		icon, style = st.Icons.Completed, render.StyleSuccess
	}

	head := fmt.Sprintf("%s %s %s  %s", st.Icons.Fold(st.expanded(runKey(run.ID))), icon, run.ID, run.Scope)
	if gated {
		head += " " + st.Icons.Gate
	}
	when := run.StartedAt
	if run.Status == model.RunCompleted && run.CompletedAt != "" {
		when = run.CompletedAt
	}
	if ts := textutil.FormatRawTimestamp(when, st.Now); ts != "" {
		head += "  " + ts
	}

	path := ""
	if run.Path != "" {
		path = filepath.Join(run.Path, "run.md")
	}
	lines := []render.Line{{Text: head, Style: style, Key: runKey(run.ID), Path: path}}

	if run.Status == model.RunActive {
		indicator := components.NewStageIndicator(runSteps(run))
		indicator.ASCII = st.Icons.ASCII()
		lines = append(lines, render.Line{Text: "    " + indicator.Render(), Styled: true})
		if item := run.Current(); item != nil {
			lines = append(lines, muted(fmt.Sprintf("    current: %s (%s)", item.ID, item.Mode)))
		}
	}

	if st.expanded(runKey(run.ID)) {
		for _, item := range run.WorkItems {
			lines = append(lines, render.Line{
				Text:  fmt.Sprintf("    %s %s  %s", st.Icons.Status(item.Status), item.ID, item.Mode),
				Style: statusStyle(item.Status),
			})
		}
		lines = append(lines, muted("    "+artifactSummary(run)))
	}
	return lines
}

func artifactSummary(run model.Run) string {
	var have []string
	if run.HasPlan {
		have = append(have, "plan")
	}
	if run.HasTestReport {
		have = append(have, "test-report")
	}
	if run.HasWalkthrough {
		have = append(have, "walkthrough")
	}
	if len(have) == 0 {
		return "no artifacts yet"
	}
	return "artifacts: " + strings.Join(have, ", ")
}

// gatedSubjects returns the ids of runs or bolts waiting for approval
func gatedSubjects(gates []model.ApprovalGate) []string {
	return lo.Map(gates, func(g model.ApprovalGate, _ int) string { return g.Subject })
}

func workItemLine(item model.WorkItem, st State) render.Line {
	text := fmt.Sprintf("%s %s  %s · %s · %s", st.Icons.Status(item.Status), item.Title, item.IntentID, item.Mode, item.Complexity)
	style := statusStyle(item.Status)
	if !item.Exists {
		text += "  (missing file)"
		style = render.StyleWarning
	}
	return render.Line{
		Text:  text,
		Style: style,
		Key:   itemKey(item.IntentID, item.ID),
		Path:  item.FilePath,
	}
}

func fireWorkPanels(fs *model.FireState, st State) []render.Panel {
	var panels []render.Panel
	gated := gatedSubjects(fs.Gates)

	if st.Filter.showActive() {
		var lines []render.Line
		for _, run := range fs.ActiveRuns {
			lines = append(lines, runLines(run, lo.Contains(gated, run.ID), st)...)
		}
		if len(lines) == 0 {
			panels = append(panels, emptyPanel("Active runs", "No active run"))
		} else {
			panels = append(panels, render.Panel{Title: fmt.Sprintf("Active runs (%d)", len(fs.ActiveRuns)), Lines: lines})
		}

		pending := lo.Map(fs.PendingItems, func(item model.WorkItem, _ int) render.Line {
			return workItemLine(item, st)
		})
		if len(pending) == 0 {
			panels = append(panels, emptyPanel("Pending queue", "Nothing queued"))
		} else {
			panels = append(panels, render.Panel{Title: fmt.Sprintf("Pending queue (%d)", len(pending)), Lines: pending})
		}
	}

	if st.Filter.showCompleted() {
		var lines []render.Line
		for _, run := range fs.CompletedRuns {
			lines = append(lines, runLines(run, false, st)...)
		}
		if len(lines) == 0 {
			panels = append(panels, emptyPanel("Completed runs", "No completed runs"))
		} else {
			panels = append(panels, render.Panel{Title: fmt.Sprintf("Completed runs (%d)", len(fs.CompletedRuns)), Lines: lines})
		}
	}

	if st.Filter != FilterAll {
		panels[0].Title += " [" + st.Filter.String() + "]"
	}
	return panels
}

func fireIntentPanels(fs *model.FireState, st State) []render.Panel {
	if len(fs.Intents) == 0 {
		return []render.Panel{emptyPanel("Intents", "No intents yet")}
	}

	var lines []render.Line
	for _, intent := range fs.Intents {
		key := "intent:" + intent.ID
		counts := model.CountStatuses(lo.Map(intent.WorkItems, func(w model.WorkItem, _ int) model.Status { return w.Status }))
		bar := components.NewMiniProgressBar(counts.Completed, counts.Total, 10)
		bar.ASCII = st.Icons.ASCII()

		lines = append(lines, render.Line{
			Text: fmt.Sprintf("%s %s %s  %s %d/%d",
				st.Icons.Fold(st.expanded(key)), st.Icons.Status(intent.Status), intent.Title, bar.Render(), counts.Completed, counts.Total),
			Style: statusStyle(intent.Status),
			Key:   key,
			Path:  intent.FilePath,
		})
		if !st.expanded(key) {
			continue
		}
		for _, item := range intent.WorkItems {
			l := workItemLine(item, st)
			l.Text = "    " + l.Text
			lines = append(lines, l)
		}
	}
	return []render.Panel{{Title: fmt.Sprintf("Intents (%d)", len(fs.Intents)), Lines: lines}}
}
