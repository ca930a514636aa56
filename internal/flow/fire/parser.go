// Package fire parses the FIRE workspace layout rooted at .specs-fire/.
//
// state.yaml is authoritative. Entities are discovered from three sources
// (the filesystem, state.yaml and each run's run.md) and every record prefers
// state.yaml fields, then run.md front-matter, then filesystem defaults.
package fire

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/project"
)

const (
	// MarkerDir is the directory that identifies a FIRE workspace
	MarkerDir = ".specs-fire"
	// StateFile is the authoritative state file inside MarkerDir
	StateFile = "state.yaml"
)

// Parser reads a FIRE workspace
type Parser struct {
	root string
	now  func() time.Time
}

// New creates a parser for the workspace at root
func New(root string) *Parser {
	return &Parser{root: root, now: time.Now}
}

// Flow returns model.FlowFire
func (p *Parser) Flow() model.Flow {
	return model.FlowFire
}

// Parse builds a fresh snapshot. It fails only when .specs-fire is missing
// (CodeFireNotFound) or state.yaml exists but cannot be parsed
// (CodeStateParseError); everything else degrades to warnings.
func (p *Parser) Parse(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fireRoot := filepath.Join(p.root, MarkerDir)
	if !fsutil.IsDir(fireRoot) {
		return nil, model.NewError(model.CodeFireNotFound, "No FIRE workspace found").
			WithPath(fireRoot).
			WithHint("Create .specs-fire/ or pass --flow to pick another flow")
	}

	statePath := filepath.Join(fireRoot, StateFile)
	state, found, err := loadState(statePath)
	if err != nil {
		return nil, model.NewError(model.CodeStateParseError, "Failed to parse state.yaml").
			WithPath(statePath).
			WithDetails(err.Error())
	}

	r := &reconciler{}
	if !found {
		state = &stateDoc{Workspace: map[string]string{}}
		r.warn("state.yaml not found; showing files only")
	}

	entities := r.reconcile(state, scan(fireRoot))

	return &model.Snapshot{
		Flow:        model.FlowFire,
		Root:        p.root,
		Initialized: found,
		Project:     project.Merge(project.Resolve(p.root), state.Project),
		Workspace:   state.Workspace,
		Fire:        entities,
		Warnings:    r.warnings,
		GeneratedAt: p.now(),
	}, nil
}

// fsIntent is an intent directory discovered on disk
type fsIntent struct {
	ID       string
	Title    string
	Status   string
	FilePath string
	Items    map[string]fsItem
}

type fsItem struct {
	itemRecord
	FilePath string
}

type fsRun struct {
	record         runRecord
	Path           string
	HasRunFile     bool
	HasPlan        bool
	HasTestReport  bool
	HasWalkthrough bool
	PlanCheckpoint string
}

type fsScan struct {
	Intents   map[string]fsIntent
	Runs      map[string]fsRun
	Standards []model.Standard
}

func scan(fireRoot string) fsScan {
	out := fsScan{
		Intents: map[string]fsIntent{},
		Runs:    map[string]fsRun{},
	}

	intentsDir := filepath.Join(fireRoot, "intents")
	for _, id := range fsutil.ListDirs(intentsDir) {
		dir := filepath.Join(intentsDir, id)
		intent := fsIntent{ID: id, Items: map[string]fsItem{}}

		briefPath := filepath.Join(dir, "brief.md")
		if fm, body, ok := fsutil.ReadFrontMatter(briefPath); ok {
			intent.FilePath = briefPath
			intent.Title = first(fsutil.String(fm, "title", "name"), fsutil.Heading(body))
			intent.Status = fsutil.String(fm, "status")
		}

		itemsDir := filepath.Join(dir, "work-items")
		for _, name := range fsutil.ListFiles(itemsDir, ".md") {
			path := filepath.Join(itemsDir, name)
			fm, body, _ := fsutil.ReadFrontMatter(path)
			rec := readItemRecord(fm)
			rec.ID = first(rec.ID, fsutil.Stem(name))
			rec.IntentID = id
			rec.Title = first(rec.Title, fsutil.Heading(body))
			intent.Items[rec.ID] = fsItem{itemRecord: rec, FilePath: path}
		}
		out.Intents[id] = intent
	}

	runsDir := filepath.Join(fireRoot, "runs")
	for _, id := range fsutil.ListDirs(runsDir) {
		dir := filepath.Join(runsDir, id)
		run := fsRun{
			Path:           dir,
			HasPlan:        fsutil.IsFile(filepath.Join(dir, "plan.md")),
			HasTestReport:  fsutil.IsFile(filepath.Join(dir, "test-report.md")),
			HasWalkthrough: fsutil.IsFile(filepath.Join(dir, "walkthrough.md")),
		}
		if fm, _, ok := fsutil.ReadFrontMatter(filepath.Join(dir, "run.md")); ok {
			run.HasRunFile = true
			run.record = readRunRecord(fm)
		}
		run.record.ID = first(run.record.ID, id)
		if run.HasPlan {
			fm, _, _ := fsutil.ReadFrontMatter(filepath.Join(dir, "plan.md"))
			run.PlanCheckpoint = fsutil.String(fm, "checkpoint_state", "checkpointState", "approval_state")
		}
		out.Runs[id] = run
	}

	for _, rel := range fsutil.Glob(fireRoot, "standards/**/*.md") {
		out.Standards = append(out.Standards, model.Standard{
			Name: fsutil.Stem(filepath.Base(rel)),
			Path: filepath.Join(fireRoot, filepath.FromSlash(rel)),
		})
	}
	return out
}

type reconciler struct {
	warnings []string

	// runItems holds every run entry as declared, before normalization
	runItems []declaredRunItem
}

type declaredRunItem struct {
	RunID string
	runItemRecord
}

func (r *reconciler) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *reconciler) reconcile(state *stateDoc, fs fsScan) *model.FireState {
	runs := r.reconcileRuns(state, fs)
	intents := r.reconcileIntents(state, fs)

	out := &model.FireState{
		Intents:   intents,
		Standards: fs.Standards,
	}
	for _, run := range runs {
		if run.Status == model.RunCompleted {
			out.CompletedRuns = append(out.CompletedRuns, run)
		} else {
			out.ActiveRuns = append(out.ActiveRuns, run)
		}
	}
	for _, intent := range intents {
		for _, item := range intent.WorkItems {
			if item.Status == model.StatusPending {
				out.PendingItems = append(out.PendingItems, item)
			}
		}
	}
	for i := range out.ActiveRuns {
		if gate := ApprovalGate(&out.ActiveRuns[i]); gate != nil {
			out.Gates = append(out.Gates, *gate)
		}
	}
	out.Stats = computeStats(out)
	return out
}

func (r *reconciler) reconcileRuns(state *stateDoc, fs fsScan) []model.Run {
	stateRuns := map[string]runRecord{}
	stateBucket := map[string]model.RunStatus{}
	for _, rec := range state.Active {
		stateRuns[rec.ID] = rec
		stateBucket[rec.ID] = model.RunActive
	}
	for _, rec := range state.Completed {
		stateRuns[rec.ID] = rec
		stateBucket[rec.ID] = model.RunCompleted
	}

	ids := map[string]bool{}
	for id := range fs.Runs {
		ids[id] = true
	}
	for id := range stateRuns {
		ids[id] = true
	}

	var runs []model.Run
	for _, id := range sortedKeys(ids) {
		disk, onDisk := fs.Runs[id]
		rec, inState := stateRuns[id]
		if inState && !onDisk {
			r.warn("Run %s is listed in state.yaml but runs/%s/ is missing", id, id)
		}

		merged := mergeRun(rec, disk.record)
		merged.ID = id

		run := model.Run{
			ID:                  id,
			Scope:               model.NormalizeScope(merged.Scope),
			CurrentItem:         merged.CurrentItem,
			CurrentPhase:        merged.CurrentPhase,
			CheckpointState:     merged.CheckpointState,
			CurrentCheckpoint:   merged.CurrentCheckpoint,
			PlanCheckpointState: disk.PlanCheckpoint,
			StartedAt:           merged.StartedAt,
			CompletedAt:         merged.CompletedAt,
			HasPlan:             disk.HasPlan,
			HasTestReport:       disk.HasTestReport,
			HasWalkthrough:      disk.HasWalkthrough,
			Path:                disk.Path,
		}
		run.Status = resolveRunStatus(stateBucket[id], disk)
		for _, item := range merged.Items {
			r.runItems = append(r.runItems, declaredRunItem{RunID: id, runItemRecord: item})
			run.WorkItems = append(run.WorkItems, model.RunItem{
				ID:              item.ID,
				IntentID:        item.IntentID,
				Mode:            model.NormalizeMode(item.Mode),
				Status:          model.NormalizeStatusOr(item.Status, model.StatusPending),
				CurrentPhase:    item.CurrentPhase,
				CheckpointState: item.CheckpointState,
			})
		}
		runs = append(runs, run)
	}
	return runs
}

// resolveRunStatus applies, in order: the state.yaml bucket, run.md status or
// completed flag, the presence of walkthrough.md, and finally active.
func resolveRunStatus(bucket model.RunStatus, disk fsRun) model.RunStatus {
	if bucket != "" {
		return bucket
	}
	if disk.HasRunFile {
		if s := disk.record.Status; s != "" {
			switch model.NormalizeStatus(s) {
			case model.StatusCompleted:
				return model.RunCompleted
			case model.StatusInProgress, model.StatusPending, model.StatusBlocked:
				return model.RunActive
			}
		}
		if disk.record.Completed {
			return model.RunCompleted
		}
	}
	if disk.HasWalkthrough {
		return model.RunCompleted
	}
	return model.RunActive
}

func (r *reconciler) reconcileIntents(state *stateDoc, fs fsScan) []model.FireIntent {
	stateIntents := map[string]intentRecord{}
	for _, rec := range state.Intents {
		stateIntents[rec.ID] = rec
	}

	// run-declared items, keyed by intent
	runItems := map[string]map[string]runItemRecord{}
	knownIntent := func(itemID string) string {
		for _, rec := range state.Intents {
			for _, item := range rec.Items {
				if item.ID == itemID {
					return rec.ID
				}
			}
		}
		for _, id := range sortedKeys(fs.Intents) {
			if _, ok := fs.Intents[id].Items[itemID]; ok {
				return id
			}
		}
		return ""
	}
	for _, item := range r.runItems {
		intentID := first(item.IntentID, knownIntent(item.ID))
		if intentID == "" {
			r.warn("Run %s references work item %s with no known intent", item.RunID, item.ID)
			continue
		}
		if runItems[intentID] == nil {
			runItems[intentID] = map[string]runItemRecord{}
		}
		if _, dup := runItems[intentID][item.ID]; !dup {
			runItems[intentID][item.ID] = item.runItemRecord
		}
	}

	ids := map[string]bool{}
	for id := range fs.Intents {
		ids[id] = true
	}
	for id := range stateIntents {
		ids[id] = true
	}
	for id := range runItems {
		ids[id] = true
	}

	intents := make([]model.FireIntent, 0, len(ids))
	for _, id := range sortedKeys(ids) {
		disk := fs.Intents[id]
		rec := stateIntents[id]

		intent := model.FireIntent{
			ID:       id,
			Title:    first(rec.Title, disk.Title, id),
			FilePath: disk.FilePath,
		}
		intent.WorkItems = r.reconcileItems(id, rec, disk, runItems[id])

		declared := first(rec.Status, disk.Status)
		if declared != "" {
			intent.Status = model.NormalizeStatus(declared)
		} else {
			children := make([]model.Status, len(intent.WorkItems))
			for i, item := range intent.WorkItems {
				children[i] = item.Status
			}
			intent.Status = model.DeriveStatus(children)
		}
		intents = append(intents, intent)
	}
	return intents
}

func (r *reconciler) reconcileItems(intentID string, rec intentRecord, disk fsIntent, fromRuns map[string]runItemRecord) []model.WorkItem {
	stateItems := map[string]itemRecord{}
	for _, item := range rec.Items {
		stateItems[item.ID] = item
	}

	ids := map[string]bool{}
	for id := range disk.Items {
		ids[id] = true
	}
	for id := range stateItems {
		ids[id] = true
	}
	for id := range fromRuns {
		ids[id] = true
	}

	items := make([]model.WorkItem, 0, len(ids))
	for _, id := range sortedKeys(ids) {
		s, inState := stateItems[id]
		f, onDisk := disk.Items[id]
		run := fromRuns[id]

		if !onDisk {
			if inState {
				r.warn("Work item %s (intent %s) is listed in state.yaml but its file is missing", id, intentID)
			} else {
				r.warn("Work item %s (intent %s) is referenced by a run but has no file", id, intentID)
			}
		}

		items = append(items, model.WorkItem{
			ID:         id,
			IntentID:   intentID,
			Title:      first(s.Title, f.Title, id),
			Status:     model.NormalizeStatusOr(first(s.Status, run.Status, f.Status), model.StatusPending),
			Mode:       model.NormalizeMode(first(s.Mode, run.Mode, f.Mode)),
			Complexity: model.NormalizeComplexity(first(s.Complexity, f.Complexity)),
			FilePath:   f.FilePath,
			Exists:     onDisk,
		})
	}
	return items
}
