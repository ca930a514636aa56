package fire

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpjhorner/specdash/internal/model"
)

// workspace writes files relative to a temp root and returns the root
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func parse(t *testing.T, root string) *model.Snapshot {
	t.Helper()
	snap, err := New(root).Parse(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.NotNil(t, snap.Fire)
	return snap
}

const scenarioState = `project:
  name: demo
intents:
  - id: auth
    title: Authentication
    work_items:
      - id: login
        status: completed
      - id: logout
        status: pending
runs:
  active:
    - id: run-001
      scope: single
      current_item: logout
      work_items:
        - id: logout
          intent: auth
          mode: confirm
          status: in_progress
          current_phase: execute
`

func scenarioFiles() map[string]string {
	return map[string]string{
		".specs-fire/state.yaml":                        scenarioState,
		".specs-fire/intents/auth/brief.md":             "---\ntitle: Auth brief\n---\n# Auth\n",
		".specs-fire/intents/auth/work-items/login.md":  "---\ntitle: Login\nstatus: completed\n---\n",
		".specs-fire/intents/auth/work-items/logout.md": "---\ntitle: Logout\nstatus: pending\n---\n",
		".specs-fire/runs/run-001/run.md":               "---\nid: run-001\n---\n",
	}
}

func TestParseMissingMarker(t *testing.T) {
	root := t.TempDir()
	snap, err := New(root).Parse(context.Background())

	assert.Nil(t, snap)
	var derr *model.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, model.CodeFireNotFound, derr.Code)
	assert.NotEmpty(t, derr.Hint)
}

func TestParseScenario(t *testing.T) {
	snap := parse(t, workspace(t, scenarioFiles()))
	fire := snap.Fire

	assert.True(t, snap.Initialized)
	assert.Equal(t, "demo", snap.Project.Name)
	assert.Empty(t, snap.Warnings)

	assert.Equal(t, 1, fire.Stats.TotalIntents)
	assert.Equal(t, 2, fire.Stats.TotalWorkItems)
	assert.Equal(t, 1, fire.Stats.CompletedWorkItems)
	assert.Equal(t, 1, fire.Stats.PendingWorkItems)
	assert.Equal(t, 1, fire.Stats.ActiveRunsCount)
	assert.Equal(t, 50, fire.Stats.ProgressPercent)

	require.Len(t, fire.PendingItems, 1)
	assert.Equal(t, "logout", fire.PendingItems[0].ID)

	require.Len(t, fire.Intents, 1)
	assert.Equal(t, "Authentication", fire.Intents[0].Title)
	assert.Equal(t, model.StatusPending, fire.Intents[0].Status)

	require.Len(t, fire.ActiveRuns, 1)
	run := fire.ActiveRuns[0]
	assert.Equal(t, model.RunActive, run.Status)
	require.NotNil(t, run.Current())
	assert.Equal(t, model.StatusInProgress, run.Current().Status)
	assert.Empty(t, fire.Gates)
}

func TestParseMissingStateFile(t *testing.T) {
	files := scenarioFiles()
	delete(files, ".specs-fire/state.yaml")
	snap := parse(t, workspace(t, files))

	assert.False(t, snap.Initialized)
	assert.Len(t, snap.Warnings, 1)
	require.Len(t, snap.Fire.Intents, 1)
	assert.Len(t, snap.Fire.Intents[0].WorkItems, 2)
	assert.Equal(t, "Auth brief", snap.Fire.Intents[0].Title)
}

func TestParseMalformedState(t *testing.T) {
	root := workspace(t, map[string]string{
		".specs-fire/state.yaml": "intents: [unclosed\n",
	})
	_, err := New(root).Parse(context.Background())

	var derr *model.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, model.CodeStateParseError, derr.Code)
	assert.Equal(t, filepath.Join(root, ".specs-fire", "state.yaml"), derr.Path)
	assert.NotEmpty(t, derr.Details)
}

func TestParseItemOnlyInState(t *testing.T) {
	root := workspace(t, map[string]string{
		".specs-fire/state.yaml": "intents:\n  - id: auth\n    work_items:\n      - id: ghost\n        status: in_progress\n",
	})
	snap := parse(t, root)

	require.Len(t, snap.Fire.Intents, 1)
	items := snap.Fire.Intents[0].WorkItems
	require.Len(t, items, 1)
	assert.False(t, items[0].Exists)
	assert.Equal(t, model.StatusInProgress, items[0].Status)
	require.Len(t, snap.Warnings, 1)
	assert.Contains(t, snap.Warnings[0], "ghost")
}

func TestParseRunOnlyInState(t *testing.T) {
	root := workspace(t, map[string]string{
		".specs-fire/state.yaml": "runs:\n  completed:\n    - id: run-009\n",
	})
	snap := parse(t, root)

	require.Len(t, snap.Fire.CompletedRuns, 1)
	assert.Equal(t, "run-009", snap.Fire.CompletedRuns[0].ID)
	require.Len(t, snap.Warnings, 1)
	assert.Contains(t, snap.Warnings[0], "run-009")
}

func TestRunStatusResolution(t *testing.T) {
	root := workspace(t, map[string]string{
		".specs-fire/state.yaml":                "runs:\n  active:\n    - id: run-a\n",
		".specs-fire/runs/run-a/run.md":         "---\nstatus: completed\n---\n",
		".specs-fire/runs/run-a/walkthrough.md": "",
		".specs-fire/runs/run-b/run.md":         "---\nstatus: done\n---\n",
		".specs-fire/runs/run-c/run.md":         "---\ncompleted: 2026-01-02T10:00:00Z\n---\n",
		".specs-fire/runs/run-d/walkthrough.md": "",
		".specs-fire/runs/run-e/plan.md":        "",
		".specs-fire/runs/run-f/run.md":         "---\nstatus: in_progress\n---\n",
		".specs-fire/runs/run-f/walkthrough.md": "",
	})
	snap := parse(t, root)

	status := map[string]model.RunStatus{}
	for _, r := range append(snap.Fire.ActiveRuns, snap.Fire.CompletedRuns...) {
		status[r.ID] = r.Status
	}

	assert.Equal(t, model.RunActive, status["run-a"], "state bucket wins")
	assert.Equal(t, model.RunCompleted, status["run-b"], "run.md status")
	assert.Equal(t, model.RunCompleted, status["run-c"], "run.md completed field")
	assert.Equal(t, model.RunCompleted, status["run-d"], "walkthrough present")
	assert.Equal(t, model.RunActive, status["run-e"], "default")
	assert.Equal(t, model.RunActive, status["run-f"], "run.md status beats walkthrough")
}

func TestRunFieldsFallBackToRunFile(t *testing.T) {
	root := workspace(t, map[string]string{
		".specs-fire/state.yaml":        "runs:\n  active:\n    - id: run-1\n      scope: batch\n",
		".specs-fire/runs/run-1/run.md": `---
scope: wide
current_item: item-a
checkpoint_state: awaiting_approval
started: 2026-01-01T09:00:00Z
work_items:
  - id: item-a
    intent: feat
    mode: validate
    status: in_progress
    current_phase: plan
---
`,
		".specs-fire/runs/run-1/plan.md":                "",
		".specs-fire/intents/feat/work-items/item-a.md": "---\nstatus: in_progress\n---\n",
	})
	snap := parse(t, root)

	require.Len(t, snap.Fire.ActiveRuns, 1)
	run := snap.Fire.ActiveRuns[0]
	assert.Equal(t, model.ScopeBatch, run.Scope, "state wins over run.md")
	assert.Equal(t, "item-a", run.CurrentItem)
	assert.Equal(t, "2026-01-01T09:00:00Z", run.StartedAt)
	assert.True(t, run.HasPlan)
	assert.False(t, run.HasWalkthrough)

	require.Len(t, snap.Fire.Gates, 1)
	assert.Equal(t, "run", snap.Fire.Gates[0].Source)
	assert.Equal(t, "run-1", snap.Fire.Gates[0].Subject)

	item := snap.Fire.Intents[0].WorkItems[0]
	assert.Equal(t, model.ModeValidate, item.Mode, "mode falls back to the run entry")
}

func TestRunReferencedItemWithoutFile(t *testing.T) {
	root := workspace(t, map[string]string{
		".specs-fire/state.yaml":        "runs:\n  active:\n    - id: run-1\n      work_items:\n        - id: orphan\n",
		".specs-fire/runs/run-1/run.md": "",
	})
	snap := parse(t, root)

	assert.Empty(t, snap.Fire.Intents)
	require.Len(t, snap.Warnings, 1)
	assert.Contains(t, snap.Warnings[0], "orphan")
}

func TestIntentStatusDeclaredOrDerived(t *testing.T) {
	root := workspace(t, map[string]string{
		".specs-fire/state.yaml":                "intents:\n  - id: a\n    status: blocked\n",
		".specs-fire/intents/a/work-items/x.md": "---\nstatus: done\n---\n",
		".specs-fire/intents/b/work-items/y.md": "---\nstatus: done\n---\n",
		".specs-fire/intents/b/work-items/z.md": "---\nstatus: wip\n---\n",
		".specs-fire/intents/c/work-items/w.md": "---\nstatus: done\n---\n",
		".specs-fire/intents/d/brief.md":        "# Empty intent\n",
		".specs-fire/intents/e/work-items/v.md": "---\nstatus: mystery\n---\n",
	})
	snap := parse(t, root)

	status := map[string]model.Status{}
	for _, intent := range snap.Fire.Intents {
		status[intent.ID] = intent.Status
	}
	assert.Equal(t, model.StatusBlocked, status["a"])
	assert.Equal(t, model.StatusInProgress, status["b"])
	assert.Equal(t, model.StatusCompleted, status["c"])
	assert.Equal(t, model.StatusPending, status["d"])
	assert.Equal(t, model.StatusPending, status["e"])

	stats := snap.Fire.Stats
	wc := stats.WorkItems
	assert.Equal(t, wc.Total, wc.Completed+wc.InProgress+wc.Pending+wc.Blocked+wc.Unknown)
	assert.Equal(t, 1, stats.UnknownWorkItems)
}

func TestStandardsAndDeterminism(t *testing.T) {
	files := scenarioFiles()
	files[".specs-fire/standards/coding.md"] = "# Coding\n"
	files[".specs-fire/standards/testing/unit.md"] = "# Unit\n"
	root := workspace(t, files)

	a := parse(t, root)
	b := parse(t, root)

	require.Len(t, a.Fire.Standards, 2)
	assert.Equal(t, "coding", a.Fire.Standards[0].Name)
	assert.Equal(t, "unit", a.Fire.Standards[1].Name)

	h1, err := a.Hash()
	require.NoError(t, err)
	h2, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	logout := filepath.Join(root, ".specs-fire", "intents", "auth", "work-items", "logout.md")
	require.NoError(t, os.WriteFile(logout, []byte("---\ntitle: Sign out\nstatus: pending\n---\n"), 0644))
	h3, err := parse(t, root).Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3, "an edited work item changes the hash")
}

func TestWorkItemStatusPrecedence(t *testing.T) {
	runFile := "---\nwork_items:\n  - id: w1\n    intent: feat\n    status: completed\n---\n"
	tests := []struct {
		name  string
		state string
		item  string
		id    string
		want  model.Status
	}{
		{
			name:  "state wins",
			state: "intents:\n  - id: feat\n    work_items:\n      - id: w1\n        status: blocked\nruns:\n  active:\n    - id: run-1\n",
			item:  "---\nstatus: pending\n---\n",
			id:    "w1",
			want:  model.StatusBlocked,
		},
		{
			name:  "run file before the work item file",
			state: "intents:\n  - id: feat\n    work_items:\n      - id: w1\nruns:\n  active:\n    - id: run-1\n",
			item:  "---\nstatus: pending\n---\n",
			id:    "w1",
			want:  model.StatusCompleted,
		},
		{
			name:  "work item file last",
			state: "intents:\n  - id: feat\n    work_items:\n      - id: w2\nruns:\n  active:\n    - id: run-1\n",
			item:  "---\nstatus: in_progress\n---\n",
			id:    "w2",
			want:  model.StatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := workspace(t, map[string]string{
				".specs-fire/state.yaml":                    tt.state,
				".specs-fire/runs/run-1/run.md":             runFile,
				".specs-fire/intents/feat/work-items/w1.md": tt.item,
				".specs-fire/intents/feat/work-items/w2.md": tt.item,
			})
			snap := parse(t, root)

			require.Len(t, snap.Fire.Intents, 1)
			items := map[string]model.WorkItem{}
			for _, item := range snap.Fire.Intents[0].WorkItems {
				items[item.ID] = item
			}
			require.Contains(t, items, tt.id)
			assert.Equal(t, tt.want, items[tt.id].Status)
		})
	}
}

func TestParseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(workspace(t, scenarioFiles())).Parse(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
