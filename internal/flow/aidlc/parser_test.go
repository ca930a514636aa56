package aidlc

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
	require.NotNil(t, snap.AIDLC)
	return snap
}

func boltByID(t *testing.T, snap *model.Snapshot, id string) model.Bolt {
	t.Helper()
	for _, b := range snap.AIDLC.Bolts {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("bolt %s not found", id)
	return model.Bolt{}
}

func TestParseMissingMarker(t *testing.T) {
	_, err := New(t.TempDir()).Parse(context.Background())

	var derr *model.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, model.CodeAIDLCNotFound, derr.Code)
	assert.NotEmpty(t, derr.Hint)
}

func TestParseBlockedBoltScenario(t *testing.T) {
	root := workspace(t, map[string]string{
		"memory-bank/bolts/bolt-a/bolt.md": "---\nid: bolt-a\ntype: simple-construction-bolt\nstatus: pending\nrequires_bolts: [bolt-b]\n---\n",
		"memory-bank/bolts/bolt-b/bolt.md": "---\nid: bolt-b\ntype: simple-construction-bolt\nstatus: in_progress\ncurrent_stage: implement\n---\n",
	})
	snap := parse(t, root)

	a := boltByID(t, snap, "bolt-a")
	assert.Equal(t, model.StatusBlocked, a.Status)
	assert.True(t, a.IsBlocked)
	assert.Equal(t, []string{"bolt-b"}, a.BlockedBy)

	b := boltByID(t, snap, "bolt-b")
	assert.False(t, b.IsBlocked)
	assert.Equal(t, 1, b.UnblocksCount)

	assert.GreaterOrEqual(t, snap.AIDLC.Stats.BlockedBolts, 1)
	assert.Equal(t, 1, snap.AIDLC.Stats.ActiveBolts)
}

func TestCompletingDependencyClearsBlock(t *testing.T) {
	files := map[string]string{
		"memory-bank/bolts/bolt-a/bolt.md": "---\nstatus: pending\nrequires_bolts: [bolt-b]\n---\n",
		"memory-bank/bolts/bolt-b/bolt.md": "---\nstatus: in_progress\n---\n",
	}
	root := workspace(t, files)
	assert.True(t, boltByID(t, parse(t, root), "bolt-a").IsBlocked)

	path := filepath.Join(root, "memory-bank", "bolts", "bolt-b", "bolt.md")
	require.NoError(t, os.WriteFile(path, []byte("---\nstatus: completed\n---\n"), 0644))

	a := boltByID(t, parse(t, root), "bolt-a")
	assert.False(t, a.IsBlocked)
	assert.Empty(t, a.BlockedBy)
	assert.Equal(t, model.StatusPending, a.Status)
}

func TestParseHierarchy(t *testing.T) {
	root := workspace(t, map[string]string{
		"memory-bank/project.yaml":                                     "name: bank-project\n",
		"memory-bank/intents/001-auth/requirements.md":                 "---\ntitle: Auth\n---\n",
		"memory-bank/intents/001-auth/units/api/unit-brief.md":         "# API unit\n",
		"memory-bank/intents/001-auth/units/api/stories/001-login.md":  "---\nstatus: done\npriority: must\n---\n# Login\n",
		"memory-bank/intents/001-auth/units/api/stories/002-logout.md": "---\nstatus: wip\n---\n",
		"memory-bank/intents/001-auth/units/web/stories/001-form.md":   "---\nstatus: completed\n---\n",
		"memory-bank/intents/002-billing/requirements.md":              "---\nstatus: blocked\n---\n# Billing\n",
		"memory-bank/standards/coding-standards.md":                    "# Coding\n",
		"memory-bank/standards/tech-stack.md":                          "# Stack\n",
	})
	snap := parse(t, root)
	state := snap.AIDLC

	assert.Equal(t, "bank-project", snap.Project.Name)
	assert.True(t, snap.Initialized)

	require.Len(t, state.Intents, 2)
	auth := state.Intents[0]
	assert.Equal(t, "Auth", auth.Title)
	assert.True(t, auth.HasRequirements)
	assert.Equal(t, model.StatusInProgress, auth.Status)

	require.Len(t, auth.Units, 2)
	api := auth.Units[0]
	assert.Equal(t, "API unit", api.Title)
	assert.Equal(t, model.StatusInProgress, api.Status)
	require.Len(t, api.Stories, 2)
	assert.Equal(t, "Login", api.Stories[0].Title)
	assert.Equal(t, "must", api.Stories[0].Priority)
	assert.Equal(t, model.StatusCompleted, auth.Units[1].Status)

	billing := state.Intents[1]
	assert.Equal(t, "Billing", billing.Title)
	assert.Equal(t, model.StatusBlocked, billing.Status)

	stories := state.Stats.Stories
	assert.Equal(t, 3, stories.Total)
	assert.Equal(t, 2, stories.Completed)
	assert.Equal(t, stories.Total, stories.Completed+stories.InProgress+stories.Pending+stories.Blocked+stories.Unknown)
	assert.Equal(t, 67, state.Stats.ProgressPercent)

	require.Len(t, state.Standards, 2)
	assert.Equal(t, "coding-standards", state.Standards[0].Name)
}

func TestParseBoltFields(t *testing.T) {
	root := workspace(t, map[string]string{
		"memory-bank/bolts/bolt-1/bolt.md": `---
id: bolt-1
type: ddd-construction-bolt
intent: 001-auth
unit: api
status: in_progress
current_stage: adr
stages_completed: [model, design]
stories: [001-login, 002-logout]
enables_bolts: bolt-2
started: 2026-02-01T10:00:00Z
completed: false
---
`,
		"memory-bank/bolts/bolt-1/adr-001-storage.md": "# ADR\n",
		"memory-bank/bolts/orphan/notes.md":           "",
	})
	snap := parse(t, root)

	b := boltByID(t, snap, "bolt-1")
	assert.Equal(t, DDDConstructionBolt, b.Type)
	assert.Equal(t, []string{"001-login", "002-logout"}, b.Stories)
	assert.Equal(t, []string{"bolt-2"}, b.EnablesBolts)
	assert.Equal(t, "2026-02-01T10:00:00Z", b.StartedAt)
	assert.Empty(t, b.CompletedAt)
	assert.Equal(t, []string{"adr-001-storage.md", "bolt.md"}, b.Files)

	require.Len(t, b.Stages, 5)
	want := []model.Status{
		model.StatusCompleted,
		model.StatusCompleted,
		model.StatusInProgress,
		model.StatusPending,
		model.StatusPending,
	}
	for i, stage := range b.Stages {
		assert.Equal(t, want[i], stage.Status, stage.Name)
	}

	require.Len(t, snap.AIDLC.Gates, 1)
	assert.Equal(t, "adr", snap.AIDLC.Gates[0].Checkpoint)
	assert.Equal(t, "bolt-1", snap.ApprovalGates()[0].Subject)

	orphan := boltByID(t, snap, "orphan")
	assert.Equal(t, model.StatusPending, orphan.Status)
	assert.Contains(t, snap.Warnings, "Bolt orphan has no bolt.md")
}

func TestParseDeclaredStages(t *testing.T) {
	root := workspace(t, map[string]string{
		"memory-bank/bolts/b/bolt.md": `---
type: spike-bolt
status: in_progress
current_stage: document
stages:
  - name: explore
    status: done
  - document
---
`,
	})
	b := boltByID(t, parse(t, root), "b")

	require.Len(t, b.Stages, 2)
	assert.Equal(t, model.Stage{Name: "explore", Status: model.StatusCompleted}, b.Stages[0])
	assert.Equal(t, model.Stage{Name: "document", Status: model.StatusInProgress}, b.Stages[1])
}

func TestParseMissingDependencyWarns(t *testing.T) {
	root := workspace(t, map[string]string{
		"memory-bank/bolts/a/bolt.md": "---\nrequires_bolts:\n  - ghost\n---\n",
	})
	snap := parse(t, root)

	a := boltByID(t, snap, "a")
	assert.True(t, a.IsBlocked)
	assert.Equal(t, model.StatusBlocked, a.Status)
	assert.Contains(t, snap.Warnings, "Bolt a depends on missing bolt ghost")
}

func TestParseApprovalGateByBoltType(t *testing.T) {
	tests := []struct {
		boltType string
		stage    string
		artifact string
		stages   int
	}{
		{"simple-construction-bolt", "plan", "implementation-plan.md", 3},
		{"simple-construction-bolt", "test", "test-walkthrough.md", 3},
		{"ddd-construction-bolt", "design", "ddd-02-technical-design.md", 5},
		{"ddd-construction-bolt", "adr", "adr-003-events.md", 5},
		{"spike-bolt", "explore", "spike-exploration.md", 2},
		{"Simple_Construction Bolt", "implement", "implementation-walkthrough.md", 3},
	}

	for _, tt := range tests {
		t.Run(tt.boltType+"/"+tt.stage, func(t *testing.T) {
			boltMD := "---\nid: b1\ntype: " + tt.boltType + "\nstatus: in_progress\ncurrent_stage: " + tt.stage + "\n---\n"
			without := parse(t, workspace(t, map[string]string{
				"memory-bank/bolts/b1/bolt.md": boltMD,
			}))
			b := boltByID(t, without, "b1")
			assert.Len(t, b.Stages, tt.stages)
			assert.Empty(t, without.AIDLC.Gates, "no gate before the stage output exists")

			with := parse(t, workspace(t, map[string]string{
				"memory-bank/bolts/b1/bolt.md":        boltMD,
				"memory-bank/bolts/b1/" + tt.artifact: "# output\n",
			}))
			require.Len(t, with.AIDLC.Gates, 1)
			gate := with.AIDLC.Gates[0]
			assert.Equal(t, model.FlowAIDLC, gate.Flow)
			assert.Equal(t, tt.stage, gate.Checkpoint)
			assert.Equal(t, "b1", gate.Subject)
		})
	}
}

func TestNormalizeBoltType(t *testing.T) {
	assert.Equal(t, SimpleConstructionBolt, NormalizeBoltType("simple-construction-bolt"))
	assert.Equal(t, DDDConstructionBolt, NormalizeBoltType(" DDD_Construction_Bolt "))
	assert.Equal(t, SpikeBolt, NormalizeBoltType("spike bolt"))
	assert.Equal(t, SimpleConstructionBolt, boltByID(t, parse(t, workspace(t, map[string]string{
		"memory-bank/bolts/x/bolt.md": "---\ntype: simple_construction_bolt\n---\n",
	})), "x").Type)
}
