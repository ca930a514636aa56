package view

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/git"
	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/render"
	"github.com/mpjhorner/specdash/internal/render/components"
)

var timeNow = time.Now

// Build produces the frame for the active view. The caller fills the
// orchestrator fields: Status, Updated, Error and Footer. A nil snapshot
// renders the waiting placeholder.
func Build(snap *model.Snapshot, cs *git.ChangeSet, st State) render.Frame {
	if st.Icons.Name == "" {
		st.Icons = Icons("")
	}
	if st.Now.IsZero() {
		st.Now = timeNow()
	}

	f := render.Frame{View: st.View}
	if snap == nil {
		f.Panels = []render.Panel{{
			Title: "Dashboard",
			Lines: []render.Line{muted("Waiting for the first successful parse")},
		}}
		return f
	}

	f.Project = snap.Project.Name
	f.Flow = snap.Flow.DisplayName()
	f.Kind = snap.Flow
	f.TabCounts = tabCounts(snap, cs)
	f.Progress, f.ProgressLabel = progress(snap)
	for _, gate := range snap.ApprovalGates() {
		f.Gates = append(f.Gates, gate.Message)
	}

	switch st.View {
	case components.TabIntents:
		f.Panels = intentPanels(snap, st)
	case components.TabGit:
		f.Panels = gitPanels(cs, st)
	case components.TabHealth:
		f.Panels = healthPanels(snap, st)
	default:
		f.Panels = workPanels(snap, st)
	}

	if st.Preview != nil {
		f.Panels = append(f.Panels, previewPanel(*st.Preview, st.HighlightCode))
	}
	markSelected(f.Panels, st.Selected)
	return f
}

func progress(snap *model.Snapshot) (model.Counts, string) {
	switch {
	case snap.Fire != nil:
		return snap.Progress(), "Work items"
	case snap.AIDLC != nil:
		return snap.Progress(), "Stories"
	case snap.Simple != nil:
		return snap.Progress(), "Tasks"
	default:
		return model.Counts{}, ""
	}
}

// tabCounts badges the views: running work, intents or specs, changed files
// and warnings.
func tabCounts(snap *model.Snapshot, cs *git.ChangeSet) map[components.Tab]int {
	counts := map[components.Tab]int{components.TabHealth: len(snap.Warnings)}
	switch {
	case snap.Fire != nil:
		counts[components.TabWork] = len(snap.Fire.ActiveRuns)
		counts[components.TabIntents] = len(snap.Fire.Intents)
	case snap.AIDLC != nil:
		counts[components.TabWork] = snap.AIDLC.Stats.ActiveBolts
		counts[components.TabIntents] = len(snap.AIDLC.Intents)
	case snap.Simple != nil:
		counts[components.TabWork] = snap.Simple.Stats.Specs.InProgress
		counts[components.TabIntents] = len(snap.Simple.Specs)
	}
	if cs != nil && cs.Available {
		counts[components.TabGit] = cs.Counts.Total
	}
	return counts
}

func workPanels(snap *model.Snapshot, st State) []render.Panel {
	switch {
	case snap.Fire != nil:
		return fireWorkPanels(snap.Fire, st)
	case snap.AIDLC != nil:
		return boltPanels(snap.AIDLC, st)
	case snap.Simple != nil:
		return specPanels(snap.Simple, st)
	}
	return nil
}

func intentPanels(snap *model.Snapshot, st State) []render.Panel {
	switch {
	case snap.Fire != nil:
		return fireIntentPanels(snap.Fire, st)
	case snap.AIDLC != nil:
		return aidlcIntentPanels(snap.AIDLC, st)
	case snap.Simple != nil:
		return simpleDocPanels(snap.Simple, st)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Git

// GitKey is the line key of a changed file
func GitKey(b git.Bucket, rel string) string {
	return "git:" + string(b) + ":" + rel
}

// ParseGitKey splits a GitKey back into bucket and relative path
func ParseGitKey(key string) (git.Bucket, string, bool) {
	for _, b := range git.Buckets() {
		prefix := "git:" + string(b) + ":"
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			return b, key[len(prefix):], true
		}
	}
	return "", "", false
}

var bucketTitles = map[git.Bucket]string{
	git.BucketStaged:     "Staged",
	git.BucketUnstaged:   "Unstaged",
	git.BucketUntracked:  "Untracked",
	git.BucketConflicted: "Conflicted",
}

func gitPanels(cs *git.ChangeSet, st State) []render.Panel {
	if cs == nil || !cs.Available {
		lines := []render.Line{muted("Not a git repository")}
		if cs != nil && cs.Error != "" {
			lines = append(lines, muted(cs.Error))
		}
		return []render.Panel{{Title: "Git", Lines: lines}}
	}

	branch := cs.Branch
	if branch == "" {
		branch = "(detached)"
	}
	summary := fmt.Sprintf("%s %s", st.Icons.Branch, branch)
	if cs.Upstream != "" {
		summary += " -> " + cs.Upstream
	}
	if cs.Ahead > 0 || cs.Behind > 0 {
		summary += fmt.Sprintf("  ahead %d, behind %d", cs.Ahead, cs.Behind)
	}
	repo := []render.Line{
		{Text: summary, Style: render.StyleAccent},
		muted(cs.Root),
	}
	if cs.Clean {
		repo = append(repo, render.Line{Text: "Working tree clean", Style: render.StyleSuccess})
	} else {
		repo = append(repo, render.Line{Text: fmt.Sprintf("%d changed: %d staged, %d unstaged, %d untracked, %d conflicted",
			cs.Counts.Total, cs.Counts.Staged, cs.Counts.Unstaged, cs.Counts.Untracked, cs.Counts.Conflicted)})
	}
	panels := []render.Panel{{Title: "Repository", Lines: repo, MaxRows: len(repo) + 1}}

	for _, b := range git.Buckets() {
		files := cs.Files(b)
		if len(files) == 0 {
			continue
		}
		lines := lo.Map(files, func(fc git.FileChange, _ int) render.Line {
			return render.Line{
				Text: fmt.Sprintf("%s %s", fc.Code, fc.RelativePath),
				Key:  GitKey(b, fc.RelativePath),
				Path: fc.AbsolutePath,
			}
		})
		style := render.StyleNormal
		if b == git.BucketConflicted {
			style = render.StyleError
		}
		for i := range lines {
			lines[i].Style = style
		}
		panels = append(panels, render.Panel{
			Title: fmt.Sprintf("%s (%d)", bucketTitles[b], len(files)),
			Lines: lines,
		})
	}
	return panels
}

// ---------------------------------------------------------------------------
// Health

func healthPanels(snap *model.Snapshot, st State) []render.Panel {
	stats := statLines(snap)

	project := []render.Line{
		{Text: fmt.Sprintf("Flow: %s", snap.Flow.DisplayName())},
		{Text: fmt.Sprintf("Root: %s", snap.Root)},
	}
	if snap.Project.Version != "" {
		project = append(project, render.Line{Text: "Version: " + snap.Project.Version})
	}
	if !snap.Initialized {
		project = append(project, render.Line{Text: "Not initialized", Style: render.StyleWarning})
	}
	keys := lo.Keys(snap.Workspace)
	sort.Strings(keys)
	for _, k := range keys {
		project = append(project, muted(fmt.Sprintf("%s: %s", k, snap.Workspace[k])))
	}

	warnings := lo.Map(snap.Warnings, func(w string, _ int) render.Line {
		return render.Line{Text: st.Icons.Warning + " " + w, Style: render.StyleWarning}
	})
	if len(warnings) == 0 {
		warnings = []render.Line{{Text: "No warnings", Style: render.StyleSuccess}}
	}

	panels := []render.Panel{
		{Title: "Stats", Lines: stats},
		{Title: fmt.Sprintf("Warnings (%d)", len(snap.Warnings)), Lines: warnings},
	}

	if standards := standardsOf(snap); len(standards) > 0 {
		lines := lo.Map(standards, func(s model.Standard, _ int) render.Line {
			return render.Line{
				Text: st.Icons.File + " " + s.Name,
				Key:  "standard:" + s.Name,
				Path: s.Path,
			}
		})
		panels = append(panels, render.Panel{Title: "Standards", Lines: lines})
	}
	return append(panels, render.Panel{Title: "Project", Lines: project})
}

func standardsOf(snap *model.Snapshot) []model.Standard {
	switch {
	case snap.Fire != nil:
		return snap.Fire.Standards
	case snap.AIDLC != nil:
		return snap.AIDLC.Standards
	default:
		return nil
	}
}

func statLines(snap *model.Snapshot) []render.Line {
	var lines []render.Line
	add := func(label string, c model.Counts) {
		lines = append(lines, render.Line{Text: fmt.Sprintf("%-11s %3d total  %3d done  %3d active  %3d pending  %3d blocked  (%d%%)",
			label, c.Total, c.Completed, c.InProgress, c.Pending, c.Blocked, c.ProgressPercent())})
	}

	switch {
	case snap.Fire != nil:
		s := snap.Fire.Stats
		add("Intents", s.Intents)
		add("Work items", s.WorkItems)
		lines = append(lines, render.Line{Text: fmt.Sprintf("Runs        %d active, %d completed", s.ActiveRunsCount, s.CompletedRunsCount)})
	case snap.AIDLC != nil:
		s := snap.AIDLC.Stats
		add("Intents", s.Intents)
		add("Units", s.Units)
		add("Stories", s.Stories)
		add("Bolts", s.Bolts)
		lines = append(lines, render.Line{Text: fmt.Sprintf("Bolts       %d active, %d blocked, %d completed", s.ActiveBolts, s.BlockedBolts, s.CompletedBolts)})
	case snap.Simple != nil:
		s := snap.Simple.Stats
		add("Specs", s.Specs)
		add("Tasks", s.Tasks)
		lines = append(lines, render.Line{Text: fmt.Sprintf("Optional    %d tasks", s.OptionalTasks)})
	}
	return lines
}

// ---------------------------------------------------------------------------
// Shared

func previewPanel(p Preview, highlightCode bool) render.Panel {
	var text []string
	if p.Diff {
		text = render.HighlightDiff(p.Text)
	} else {
		text = render.HighlightMarkdown(p.Text, render.MarkdownOptions{HighlightCode: highlightCode})
	}

	lines := lo.Map(text, func(s string, _ int) render.Line {
		return render.Line{Text: s, Styled: true}
	})
	if len(lines) == 0 {
		lines = []render.Line{muted("(empty)")}
	}
	title := "Preview"
	if p.Title != "" {
		title += ": " + filepath.Base(p.Title)
	}
	return render.Panel{Title: title, Lines: lines}
}

func muted(text string) render.Line {
	return render.Line{Text: text, Style: render.StyleMuted}
}

func statusStyle(s model.Status) render.Style {
	switch s {
	case model.StatusCompleted:
		return render.StyleSuccess
	case model.StatusInProgress:
		return render.StyleAccent
	case model.StatusBlocked:
		return render.StyleError
	case model.StatusUnknown:
		return render.StyleWarning
	default:
		return render.StyleNormal
	}
}

func emptyPanel(title, message string) render.Panel {
	return render.Panel{Title: title, Lines: []render.Line{muted(message)}, MaxRows: 2}
}
