package fire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpjhorner/specdash/internal/model"
)

func gatedRun() model.Run {
	return model.Run{
		ID:          "run-1",
		Status:      model.RunActive,
		CurrentItem: "item-a",
		WorkItems: []model.RunItem{{
			ID:              "item-a",
			Mode:            model.ModeConfirm,
			Status:          model.StatusInProgress,
			CurrentPhase:    "plan",
			CheckpointState: "awaiting_approval",
		}},
	}
}

func TestApprovalGate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.Run)
		gated  bool
		source string
	}{
		{"awaiting on item", func(r *model.Run) {}, true, "work-item"},
		{"validate mode", func(r *model.Run) { r.WorkItems[0].Mode = model.ModeValidate }, true, "work-item"},
		{"autopilot never gates", func(r *model.Run) { r.WorkItems[0].Mode = model.ModeAutopilot }, false, ""},
		{"not in progress", func(r *model.Run) { r.WorkItems[0].Status = model.StatusPending }, false, ""},
		{"not plan phase", func(r *model.Run) { r.WorkItems[0].CurrentPhase = "execute" }, false, ""},
		{"phase from run", func(r *model.Run) {
			r.WorkItems[0].CurrentPhase = ""
			r.CurrentPhase = "Plan"
		}, true, "work-item"},
		{"approved state", func(r *model.Run) { r.WorkItems[0].CheckpointState = "approved" }, false, ""},
		{"unlisted state", func(r *model.Run) { r.WorkItems[0].CheckpointState = "thinking" }, false, ""},
		{"state from run", func(r *model.Run) {
			r.WorkItems[0].CheckpointState = ""
			r.CheckpointState = "waiting"
		}, true, "run"},
		{"state from plan file", func(r *model.Run) {
			r.WorkItems[0].CheckpointState = ""
			r.PlanCheckpointState = "Pending Approval"
		}, true, "plan.md"},
		{"item state wins over run", func(r *model.Run) {
			r.WorkItems[0].CheckpointState = "approved"
			r.CheckpointState = "awaiting_approval"
		}, false, ""},
		{"no checkpoint metadata", func(r *model.Run) { r.WorkItems[0].CheckpointState = "" }, false, ""},
		{"completed run", func(r *model.Run) { r.Status = model.RunCompleted }, false, ""},
		{"no current item", func(r *model.Run) { r.CurrentItem = "other" }, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := gatedRun()
			tt.mutate(&run)
			gate := ApprovalGate(&run)
			if !tt.gated {
				assert.Nil(t, gate)
				return
			}
			require.NotNil(t, gate)
			assert.Equal(t, model.FlowFire, gate.Flow)
			assert.Equal(t, tt.source, gate.Source)
			assert.Equal(t, "plan", gate.Checkpoint)
			assert.Equal(t, "run-1", gate.Subject)
			assert.Contains(t, gate.Message, "item-a")
		})
	}
}

func TestApprovalGateIgnoresNullApprovedAt(t *testing.T) {
	root := workspace(t, map[string]string{
		".specs-fire/state.yaml": `runs:
  active:
    - id: run-1
      current_item: item-a
      approved_at: null
      work_items:
        - id: item-a
          intent: feat
          mode: confirm
          status: in_progress
          current_phase: plan
`,
		".specs-fire/runs/run-1/plan.md":                "---\napproved_at: null\n---\n# Plan\n",
		".specs-fire/intents/feat/work-items/item-a.md": "---\nstatus: in_progress\n---\n",
	})
	snap := parse(t, root)

	assert.Empty(t, snap.Fire.Gates)
	assert.Empty(t, snap.ApprovalGates())
}

func TestApprovalGateNil(t *testing.T) {
	assert.Nil(t, ApprovalGate(nil))
}
