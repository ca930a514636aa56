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

func boltKey(id string) string {
	return "bolt:" + id
}

func stageSteps(b model.Bolt) []components.Step {
	return lo.Map(b.Stages, func(s model.Stage, _ int) components.Step {
		state := components.StepPending
		switch s.Status {
		case model.StatusCompleted:
			state = components.StepComplete
		case model.StatusInProgress:
			state = components.StepActive
		}
		return components.Step{Name: s.Name, State: state}
	})
}

func boltLines(b model.Bolt, gated bool, st State) []render.Line {
	key := boltKey(b.ID)
	head := fmt.Sprintf("%s %s %s  %s", st.Icons.Fold(st.expanded(key)), st.Icons.Status(b.Status), b.ID, b.Type)
	if b.Unit != "" {
		head += "  " + b.Unit
	}
	if gated {
		head += " " + st.Icons.Gate
	}
	if b.UnblocksCount > 0 {
		head += fmt.Sprintf("  unblocks %d", b.UnblocksCount)
	}

	path := ""
	if b.Path != "" {
		path = filepath.Join(b.Path, "bolt.md")
	}
	lines := []render.Line{{Text: head, Style: statusStyle(b.Status), Key: key, Path: path}}

	if b.IsBlocked {
		lines = append(lines, render.Line{
			Text:  "    blocked by " + strings.Join(b.BlockedBy, ", "),
			Style: render.StyleError,
		})
	}
	if b.Status == model.StatusInProgress && len(b.Stages) > 0 {
		indicator := components.NewStageIndicator(stageSteps(b))
		indicator.ASCII = st.Icons.ASCII()
		lines = append(lines, render.Line{Text: "    " + indicator.Render(), Styled: true})
	}

	if st.expanded(key) {
		if len(b.Stories) > 0 {
			lines = append(lines, muted("    stories: "+strings.Join(b.Stories, ", ")))
		}
		if len(b.RequiresBolts) > 0 {
			lines = append(lines, muted("    requires: "+strings.Join(b.RequiresBolts, ", ")))
		}
		if len(b.EnablesBolts) > 0 {
			lines = append(lines, muted("    enables: "+strings.Join(b.EnablesBolts, ", ")))
		}
		if ts := textutil.FormatRawTimestamp(b.StartedAt, st.Now); ts != "" {
			lines = append(lines, muted("    started "+ts))
		}
		if ts := textutil.FormatRawTimestamp(b.CompletedAt, st.Now); ts != "" {
			lines = append(lines, muted("    completed "+ts))
		}
		for _, f := range b.Files {
			lines = append(lines, render.Line{
				Text: "    " + st.Icons.File + " " + f,
				Key:  key + "/" + f,
				Path: filepath.Join(b.Path, f),
			})
		}
	}
	return lines
}

func boltPanels(as *model.AIDLCState, st State) []render.Panel {
	gated := gatedSubjects(as.Gates)
	group := func(title, empty string, keep func(model.Bolt) bool) render.Panel {
		var lines []render.Line
		n := 0
		for _, b := range as.Bolts {
			if !keep(b) {
				continue
			}
			n++
			lines = append(lines, boltLines(b, lo.Contains(gated, b.ID), st)...)
		}
		if n == 0 {
			return emptyPanel(title, empty)
		}
		return render.Panel{Title: fmt.Sprintf("%s (%d)", title, n), Lines: lines}
	}

	var panels []render.Panel
	if st.Filter.showActive() {
		panels = append(panels,
			group("Active bolts", "No bolt in progress", func(b model.Bolt) bool {
				return b.Status == model.StatusInProgress
			}),
			group("Queued bolts", "Nothing queued", func(b model.Bolt) bool {
				return b.Status == model.StatusPending || b.Status == model.StatusBlocked || b.Status == model.StatusUnknown
			}),
		)
	}
	if st.Filter.showCompleted() {
		panels = append(panels, group("Completed bolts", "No completed bolts", func(b model.Bolt) bool {
			return b.Status == model.StatusCompleted
		}))
	}
	if st.Filter != FilterAll {
		panels[0].Title += " [" + st.Filter.String() + "]"
	}
	return panels
}

func aidlcIntentPanels(as *model.AIDLCState, st State) []render.Panel {
	if len(as.Intents) == 0 {
		return []render.Panel{emptyPanel("Intents", "No intents yet")}
	}

	var lines []render.Line
	for _, intent := range as.Intents {
		key := "intent:" + intent.ID
		var stories []model.Status
		for _, u := range intent.Units {
			for _, s := range u.Stories {
				stories = append(stories, s.Status)
			}
		}
		counts := model.CountStatuses(stories)
		bar := components.NewMiniProgressBar(counts.Completed, counts.Total, 10)
		bar.ASCII = st.Icons.ASCII()

		lines = append(lines, render.Line{
			Text: fmt.Sprintf("%s %s %s  %s %d/%d stories",
				st.Icons.Fold(st.expanded(key)), st.Icons.Status(intent.Status), intent.Title, bar.Render(), counts.Completed, counts.Total),
			Style: statusStyle(intent.Status),
			Key:   key,
			Path:  intent.FilePath,
		})
		if !st.expanded(key) {
			continue
		}

		for _, unit := range intent.Units {
			unitKey := "unit:" + intent.ID + "/" + unit.ID
			lines = append(lines, render.Line{
				Text:  fmt.Sprintf("    %s %s %s  (%d stories)", st.Icons.Fold(st.expanded(unitKey)), st.Icons.Status(unit.Status), unit.Title, len(unit.Stories)),
				Style: statusStyle(unit.Status),
				Key:   unitKey,
				Path:  unit.FilePath,
			})
			if !st.expanded(unitKey) {
				continue
			}
			for _, story := range unit.Stories {
				text := fmt.Sprintf("        %s %s", st.Icons.Status(story.Status), story.Title)
				if story.Priority != "" {
					text += "  [" + story.Priority + "]"
				}
				lines = append(lines, render.Line{
					Text:  text,
					Style: statusStyle(story.Status),
					Key:   "story:" + intent.ID + "/" + unit.ID + "/" + story.ID,
					Path:  story.FilePath,
				})
			}
		}
	}
	return []render.Panel{{Title: fmt.Sprintf("Intents (%d)", len(as.Intents)), Lines: lines}}
}
