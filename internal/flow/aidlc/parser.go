// Package aidlc parses the AI-DLC workspace layout rooted at memory-bank/.
//
// Intents own units, units own stories, and bolts carry work through a
// type-specific stage sequence. Every status comes from front-matter, or is
// derived from children when a container does not declare one.
package aidlc

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/project"
)

// MarkerDir is the directory that identifies an AI-DLC workspace
const MarkerDir = "memory-bank"

// Parser reads an AI-DLC workspace
type Parser struct {
	root string
	now  func() time.Time
}

// New creates a parser for the workspace at root
func New(root string) *Parser {
	return &Parser{root: root, now: time.Now}
}

// Flow returns model.FlowAIDLC
func (p *Parser) Flow() model.Flow {
	return model.FlowAIDLC
}

// Parse builds a fresh snapshot. Only a missing memory-bank directory fails
// (CodeAIDLCNotFound).
func (p *Parser) Parse(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bank := filepath.Join(p.root, MarkerDir)
	if !fsutil.IsDir(bank) {
		return nil, model.NewError(model.CodeAIDLCNotFound, "No AI-DLC memory bank found").
			WithPath(bank).
			WithHint("Create memory-bank/ or pass --flow to pick another flow")
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	state := &model.AIDLCState{
		Intents:   parseIntents(bank),
		Standards: parseStandards(bank),
	}
	state.Bolts = parseBolts(bank, warn)
	warnings = append(warnings, ComputeBlocking(state.Bolts)...)

	for i := range state.Bolts {
		if gate := ApprovalGate(&state.Bolts[i]); gate != nil {
			state.Gates = append(state.Gates, *gate)
		}
	}
	state.Stats = computeStats(state)

	proj := project.Resolve(p.root)
	manifest := filepath.Join(bank, "project.yaml")
	initialized := fsutil.IsFile(manifest)
	if fromBank, ok := project.FromYAMLFile(manifest); ok {
		proj = project.Merge(proj, fromBank)
	}

	return &model.Snapshot{
		Flow:        model.FlowAIDLC,
		Root:        p.root,
		Initialized: initialized || len(state.Intents) > 0 || len(state.Bolts) > 0,
		Project:     proj,
		Workspace:   map[string]string{},
		AIDLC:       state,
		Warnings:    warnings,
		GeneratedAt: p.now(),
	}, nil
}

func parseIntents(bank string) []model.AIDLCIntent {
	intentsDir := filepath.Join(bank, "intents")
	var intents []model.AIDLCIntent

	for _, id := range fsutil.ListDirs(intentsDir) {
		dir := filepath.Join(intentsDir, id)
		reqPath := filepath.Join(dir, "requirements.md")
		fm, body, hasReq := fsutil.ReadFrontMatter(reqPath)

		intent := model.AIDLCIntent{
			ID:              id,
			Title:           lo.CoalesceOrEmpty(fsutil.String(fm, "title", "name"), fsutil.Heading(body), id),
			HasRequirements: hasReq,
			Units:           parseUnits(id, filepath.Join(dir, "units")),
		}
		if hasReq {
			intent.FilePath = reqPath
		}

		if declared := fsutil.String(fm, "status"); declared != "" {
			intent.Status = model.NormalizeStatus(declared)
		} else {
			intent.Status = model.DeriveStatus(lo.Map(intent.Units, func(u model.Unit, _ int) model.Status {
				return u.Status
			}))
		}
		intents = append(intents, intent)
	}
	return intents
}

func parseUnits(intentID, unitsDir string) []model.Unit {
	var units []model.Unit
	for _, id := range fsutil.ListDirs(unitsDir) {
		dir := filepath.Join(unitsDir, id)
		briefPath := filepath.Join(dir, "unit-brief.md")
		fm, body, hasBrief := fsutil.ReadFrontMatter(briefPath)

		unit := model.Unit{
			ID:       id,
			IntentID: intentID,
			Title:    lo.CoalesceOrEmpty(fsutil.String(fm, "title", "name"), fsutil.Heading(body), id),
			Stories:  parseStories(intentID, id, filepath.Join(dir, "stories")),
		}
		if hasBrief {
			unit.FilePath = briefPath
		}

		if declared := fsutil.String(fm, "status"); declared != "" {
			unit.Status = model.NormalizeStatus(declared)
		} else {
			unit.Status = model.DeriveStatus(lo.Map(unit.Stories, func(s model.Story, _ int) model.Status {
				return s.Status
			}))
		}
		units = append(units, unit)
	}
	return units
}

func parseStories(intentID, unitID, storiesDir string) []model.Story {
	var stories []model.Story
	for _, name := range fsutil.ListFiles(storiesDir, ".md") {
		path := filepath.Join(storiesDir, name)
		fm, body, _ := fsutil.ReadFrontMatter(path)
		stories = append(stories, model.Story{
			ID:       lo.CoalesceOrEmpty(fsutil.String(fm, "id"), fsutil.Stem(name)),
			UnitID:   unitID,
			IntentID: intentID,
			Title:    lo.CoalesceOrEmpty(fsutil.String(fm, "title", "name"), fsutil.Heading(body), fsutil.Stem(name)),
			Status:   model.NormalizeStatusOr(fsutil.String(fm, "status"), model.StatusPending),
			Priority: fsutil.String(fm, "priority"),
			FilePath: path,
		})
	}
	return stories
}

func parseBolts(bank string, warn func(string, ...any)) []model.Bolt {
	boltsDir := filepath.Join(bank, "bolts")
	var bolts []model.Bolt

	for _, dirName := range fsutil.ListDirs(boltsDir) {
		dir := filepath.Join(boltsDir, dirName)
		fm, _, ok := fsutil.ReadFrontMatter(filepath.Join(dir, "bolt.md"))
		if !ok {
			warn("Bolt %s has no bolt.md", dirName)
		}

		status := model.NormalizeStatusOr(fsutil.String(fm, "status"), model.StatusPending)
		boltType := NormalizeBoltType(fsutil.String(fm, "type", "bolt_type"))
		current := fsutil.String(fm, "current_stage", "currentStage")

		bolts = append(bolts, model.Bolt{
			ID:            lo.CoalesceOrEmpty(fsutil.String(fm, "id"), dirName),
			Type:          boltType,
			Intent:        fsutil.String(fm, "intent"),
			Unit:          fsutil.String(fm, "unit"),
			Status:        status,
			CurrentStage:  current,
			Stages:        buildStages(fm, boltType, current, status),
			Stories:       fsutil.Strings(fm, "stories"),
			RequiresBolts: fsutil.Strings(fm, "requires_bolts", "requiresBolts"),
			EnablesBolts:  fsutil.Strings(fm, "enables_bolts", "enablesBolts"),
			Files:         fsutil.ListFiles(dir, ""),
			Path:          dir,
			StartedAt:     timestamp(fm, "started", "started_at"),
			CompletedAt:   timestamp(fm, "completed", "completed_at"),
		})
	}
	return bolts
}

func parseStandards(bank string) []model.Standard {
	dir := filepath.Join(bank, "standards")
	return lo.Map(fsutil.ListFiles(dir, ".md"), func(name string, _ int) model.Standard {
		return model.Standard{Name: fsutil.Stem(name), Path: filepath.Join(dir, name)}
	})
}

// timestamp returns the first non-boolean value among keys
func timestamp(fm map[string]any, keys ...string) string {
	for _, key := range keys {
		if _, isBool := fm[key].(bool); isBool {
			continue
		}
		if s := fsutil.String(fm, key); s != "" {
			return s
		}
	}
	return ""
}
