package fire

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/model"
)

// awaitingStates are checkpoint states that mean a human must act
var awaitingStates = []string{
	"awaiting_approval",
	"waiting",
	"pending_approval",
	"approval_needed",
	"approval_required",
	"checkpoint_pending",
}

// approvedStates are checkpoint states that clear a gate
var approvedStates = []string{
	"approved",
	"confirmed",
	"accepted",
	"resumed",
	"done",
	"completed",
	"cleared",
	"none",
	"not_required",
	"skipped",
}

// ApprovalGate reports whether run is paused at its plan checkpoint.
//
// The current work item must be in a confirm or validate mode, in progress,
// and in the plan phase. The checkpoint state is taken from the item, then the
// run, then plan.md. Only an explicit awaiting state gates; a run with no
// checkpoint state at all is never gated, whatever other fields such as a null
// approved_at suggest.
func ApprovalGate(run *model.Run) *model.ApprovalGate {
	if run == nil || run.Status != model.RunActive {
		return nil
	}
	item := run.Current()
	if item == nil {
		return nil
	}
	if !item.Mode.RequiresApproval() || item.Status != model.StatusInProgress {
		return nil
	}
	if model.NormalizeToken(first(item.CurrentPhase, run.CurrentPhase)) != "plan" {
		return nil
	}

	state, source := resolveCheckpoint(run, item)
	token := model.NormalizeToken(state)
	if !lo.Contains(awaitingStates, token) || lo.Contains(approvedStates, token) {
		return nil
	}

	return &model.ApprovalGate{
		Flow:       model.FlowFire,
		Message:    fmt.Sprintf("Run %s is waiting for plan approval of %s (%s mode)", run.ID, item.ID, item.Mode),
		Checkpoint: first(run.CurrentCheckpoint, "plan"),
		Source:     source,
		Subject:    run.ID,
	}
}

func resolveCheckpoint(run *model.Run, item *model.RunItem) (string, string) {
	switch {
	case item.CheckpointState != "":
		return item.CheckpointState, "work-item"
	case run.CheckpointState != "":
		return run.CheckpointState, "run"
	case run.PlanCheckpointState != "":
		return run.PlanCheckpointState, "plan.md"
	default:
		return "", ""
	}
}
