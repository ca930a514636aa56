package aidlc

import (
	"fmt"

	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/model"
)

// ApprovalGate reports whether bolt has finished its current stage's output and
// is waiting for review. The bolt must be in progress with a current stage
// that is not already completed, and the stage's signal artifact must be among
// the bolt's files. A missing artifact means the checkpoint is not reached yet.
func ApprovalGate(bolt *model.Bolt) *model.ApprovalGate {
	if bolt == nil || bolt.Status != model.StatusInProgress || bolt.CurrentStage == "" {
		return nil
	}
	for _, stage := range bolt.Stages {
		if model.NormalizeToken(stage.Name) == model.NormalizeToken(bolt.CurrentStage) &&
			stage.Status == model.StatusCompleted {
			return nil
		}
	}

	pattern, ok := SignalArtifact(bolt.Type, bolt.CurrentStage)
	if !ok || !fsutil.MatchAny(pattern, bolt.Files) {
		return nil
	}

	return &model.ApprovalGate{
		Flow:       model.FlowAIDLC,
		Message:    fmt.Sprintf("Bolt %s is waiting for review of the %s stage", bolt.ID, bolt.CurrentStage),
		Checkpoint: bolt.CurrentStage,
		Source:     pattern,
		Subject:    bolt.ID,
	}
}
