// Package simple parses the Simple workspace layout: one directory per feature
// under specs/, each moving through requirements, design and tasks.
package simple

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/project"
)

// MarkerDir is the directory that identifies a Simple workspace
const MarkerDir = "specs"

const (
	RequirementsFile = "requirements.md"
	DesignFile       = "design.md"
	TasksFile        = "tasks.md"
)

// Parser reads a Simple workspace
type Parser struct {
	root string
	now  func() time.Time
}

// New creates a parser for the workspace at root
func New(root string) *Parser {
	return &Parser{root: root, now: time.Now}
}

// Flow returns model.FlowSimple
func (p *Parser) Flow() model.Flow {
	return model.FlowSimple
}

// Parse builds a fresh snapshot. Only a missing specs directory fails
// (CodeSimpleNotFound).
func (p *Parser) Parse(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	specsDir := filepath.Join(p.root, MarkerDir)
	if !fsutil.IsDir(specsDir) {
		return nil, model.NewError(model.CodeSimpleNotFound, "No specs directory found").
			WithPath(specsDir).
			WithHint("Create specs/<feature>/requirements.md or pass --flow to pick another flow")
	}

	var warnings []string
	state := &model.SimpleState{}
	for _, name := range fsutil.ListDirs(specsDir) {
		spec := parseSpec(name, filepath.Join(specsDir, name))
		if spec.HasTasks && len(spec.Tasks) == 0 {
			warnings = append(warnings, fmt.Sprintf("Spec %s has a tasks.md without checklist items", name))
		}
		state.Specs = append(state.Specs, spec)
	}
	state.Stats = computeStats(state.Specs)

	return &model.Snapshot{
		Flow:        model.FlowSimple,
		Root:        p.root,
		Initialized: len(state.Specs) > 0,
		Project:     project.Resolve(p.root),
		Workspace:   map[string]string{},
		Simple:      state,
		Warnings:    warnings,
		GeneratedAt: p.now(),
	}, nil
}

func parseSpec(name, dir string) model.Spec {
	spec := model.Spec{
		Name:            name,
		Path:            dir,
		HasRequirements: fsutil.IsFile(filepath.Join(dir, RequirementsFile)),
		HasDesign:       fsutil.IsFile(filepath.Join(dir, DesignFile)),
	}
	if content, ok := fsutil.ReadFile(filepath.Join(dir, TasksFile)); ok {
		spec.HasTasks = true
		spec.Tasks = ParseTasks(content)
	}
	spec.Counts = CountTasks(spec.Tasks)
	spec.Phase = Phase(spec)
	spec.Status = phaseStatus(spec.Phase, spec.Counts)
	return spec
}

// Phase returns the authoring stage of a spec. Documents are expected in
// order; the first missing one names the phase. With all three present the
// spec is completed once every required task is done.
func Phase(spec model.Spec) model.SpecPhase {
	switch {
	case !spec.HasRequirements:
		return model.PhaseRequirementsPending
	case !spec.HasDesign:
		return model.PhaseDesignPending
	case !spec.HasTasks:
		return model.PhaseTasksPending
	case spec.Counts.Total > 0 && spec.Counts.RequiredCompleted == spec.Counts.Required:
		return model.PhaseCompleted
	default:
		return model.PhaseImplementing
	}
}

func phaseStatus(phase model.SpecPhase, counts model.TaskCounts) model.Status {
	switch phase {
	case model.PhaseCompleted:
		return model.StatusCompleted
	case model.PhaseImplementing:
		if counts.Completed > 0 {
			return model.StatusInProgress
		}
		return model.StatusPending
	default:
		return model.StatusPending
	}
}

func computeStats(specs []model.Spec) model.SimpleStats {
	var stats model.SimpleStats
	var specStatuses, taskStatuses []model.Status
	for _, spec := range specs {
		specStatuses = append(specStatuses, spec.Status)
		stats.OptionalTasks += spec.Counts.Optional
		for _, task := range spec.Tasks {
			if task.Done {
				taskStatuses = append(taskStatuses, model.StatusCompleted)
			} else {
				taskStatuses = append(taskStatuses, model.StatusPending)
			}
		}
	}
	stats.Specs = model.CountStatuses(specStatuses)
	stats.Tasks = model.CountStatuses(taskStatuses)
	stats.ProgressPercent = stats.Tasks.ProgressPercent()
	return stats
}
