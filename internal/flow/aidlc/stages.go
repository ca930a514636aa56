package aidlc

import (
	"strings"

	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/model"
)

// Bolt types
const (
	SimpleConstructionBolt = "simple-construction-bolt"
	DDDConstructionBolt    = "ddd-construction-bolt"
	SpikeBolt              = "spike-bolt"
)

// stageSequences are the ordered stages for each bolt type
var stageSequences = map[string][]string{
	SimpleConstructionBolt: {"plan", "implement", "test"},
	DDDConstructionBolt:    {"model", "design", "adr", "implement", "test"},
	SpikeBolt:              {"explore", "document"},
}

// signalArtifacts maps bolt type and stage to the file whose presence means the
// stage has produced its output and is waiting for review. Values are
// doublestar patterns matched against the bolt's file names.
var signalArtifacts = map[string]map[string]string{
	SimpleConstructionBolt: {
		"plan":      "implementation-plan.md",
		"implement": "implementation-walkthrough.md",
		"test":      "test-walkthrough.md",
	},
	DDDConstructionBolt: {
		"model":     "ddd-01-domain-model.md",
		"design":    "ddd-02-technical-design.md",
		"adr":       "adr-*.md",
		"implement": "implementation-walkthrough.md",
		"test":      "ddd-03-test-report.md",
	},
	SpikeBolt: {
		"explore":  "spike-exploration.md",
		"document": "spike-report.md",
	},
}

// NormalizeBoltType folds case and separators into the dashed form used by
// the bolt type constants, so "Simple_Construction Bolt" becomes
// "simple-construction-bolt"
func NormalizeBoltType(boltType string) string {
	return strings.ReplaceAll(model.NormalizeToken(boltType), "_", "-")
}

// StageSequence returns the default stage names for a bolt type, or nil when
// the type is unknown
func StageSequence(boltType string) []string {
	return stageSequences[NormalizeBoltType(boltType)]
}

// SignalArtifact returns the pattern of the file that marks stage as reviewable.
// Architecture and adr stages accept any adr-*.md regardless of bolt type.
func SignalArtifact(boltType, stage string) (string, bool) {
	stage = model.NormalizeToken(stage)
	if stage == "adr" || stage == "architecture" {
		return "adr-*.md", true
	}
	pattern, ok := signalArtifacts[NormalizeBoltType(boltType)][stage]
	return pattern, ok
}

// buildStages resolves a bolt's stage list from its front-matter. Stages may be
// declared as plain names or as {name, status} records; undeclared stages fall
// back to the type's default sequence. stages_completed marks names done.
func buildStages(fm map[string]any, boltType, current string, status model.Status) []model.Stage {
	declared := fsutil.Records(fsutil.List(fm, "stages"))
	done := completedStages(fm)

	var stages []model.Stage
	if len(declared) > 0 {
		for _, rec := range declared {
			name := fsutil.String(rec, "name", "id", "stage")
			if name == "" {
				continue
			}
			stages = append(stages, model.Stage{
				Name:   name,
				Status: model.NormalizeStatusOr(fsutil.String(rec, "status"), ""),
			})
		}
	} else {
		for _, name := range StageSequence(boltType) {
			stages = append(stages, model.Stage{Name: name})
		}
	}

	currentToken := model.NormalizeToken(current)
	for i := range stages {
		if stages[i].Status != "" {
			continue
		}
		token := model.NormalizeToken(stages[i].Name)
		switch {
		case lo.Contains(done, token):
			stages[i].Status = model.StatusCompleted
		case status == model.StatusCompleted:
			stages[i].Status = model.StatusCompleted
		case token == currentToken && currentToken != "":
			stages[i].Status = model.StatusInProgress
		default:
			stages[i].Status = model.StatusPending
		}
	}
	return stages
}

func completedStages(fm map[string]any) []string {
	var names []string
	for _, rec := range fsutil.Records(fsutil.List(fm, "stages_completed", "stagesCompleted")) {
		if name := fsutil.String(rec, "name", "id", "stage"); name != "" {
			names = append(names, model.NormalizeToken(name))
		}
	}
	return names
}
