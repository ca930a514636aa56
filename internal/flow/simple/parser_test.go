package simple

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

func TestParseTasks(t *testing.T) {
	tasks := ParseTasks("# Tasks\n\n- [x] 1. a\n- [ ] 2. b\n- [ ]* 3. c\n")

	require.Len(t, tasks, 3)
	assert.Equal(t, model.Task{ID: "1", Text: "a", Done: true, Line: 3}, tasks[0])
	assert.Equal(t, model.Task{ID: "2", Text: "b", Line: 4}, tasks[1])
	assert.Equal(t, model.Task{ID: "3", Text: "c", Optional: true, Line: 5}, tasks[2])

	counts := CountTasks(tasks)
	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, 1, counts.Completed)
	assert.Equal(t, 1, counts.Optional)
	assert.Equal(t, 2, counts.Required)
	assert.Equal(t, 1, counts.RequiredCompleted)
}

func TestParseTasksVariants(t *testing.T) {
	tests := []struct {
		name string
		line string
		want *model.Task
	}{
		{"star bullet", "* [X] ship it", &model.Task{ID: "line-1", Text: "ship it", Done: true, Line: 1}},
		{"nested", "    - [ ] 1.2 sub task", &model.Task{ID: "1.2", Text: "sub task", Line: 1}},
		{"year is not an id", "- [ ] 2024 roadmap", &model.Task{ID: "line-1", Text: "2024 roadmap", Line: 1}},
		{"crlf", "- [x] done\r", &model.Task{ID: "line-1", Text: "done", Done: true, Line: 1}},
		{"no space after box", "- [ ]text", nil},
		{"plain bullet", "- not a task", nil},
		{"bad mark", "- [-] cancelled", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := ParseTasks(tt.line)
			if tt.want == nil {
				assert.Empty(t, tasks)
				return
			}
			require.Len(t, tasks, 1)
			assert.Equal(t, *tt.want, tasks[0])
		})
	}
}

func TestPhase(t *testing.T) {
	root := workspace(t, map[string]string{
		"specs/a-empty/notes.md":            "",
		"specs/b-req/requirements.md":       "# R",
		"specs/c-design/requirements.md":    "# R",
		"specs/c-design/design.md":          "# D",
		"specs/d-impl/requirements.md":      "# R",
		"specs/d-impl/design.md":            "# D",
		"specs/d-impl/tasks.md":             "- [x] 1. a\n- [ ] 2. b\n",
		"specs/e-done/requirements.md":      "# R",
		"specs/e-done/design.md":            "# D",
		"specs/e-done/tasks.md":             "- [x] 1. a\n- [ ]* 2. optional\n",
		"specs/f-untouched/requirements.md": "# R",
		"specs/f-untouched/design.md":       "# D",
		"specs/f-untouched/tasks.md":        "- [ ] 1. a\n",
	})
	snap, err := New(root).Parse(context.Background())
	require.NoError(t, err)

	phases := map[string]model.SpecPhase{}
	statuses := map[string]model.Status{}
	for _, s := range snap.Simple.Specs {
		phases[s.Name] = s.Phase
		statuses[s.Name] = s.Status
	}

	assert.Equal(t, model.PhaseRequirementsPending, phases["a-empty"])
	assert.Equal(t, model.PhaseDesignPending, phases["b-req"])
	assert.Equal(t, model.PhaseTasksPending, phases["c-design"])
	assert.Equal(t, model.PhaseImplementing, phases["d-impl"])
	assert.Equal(t, model.PhaseCompleted, phases["e-done"])
	assert.Equal(t, model.PhaseImplementing, phases["f-untouched"])

	assert.Equal(t, model.StatusInProgress, statuses["d-impl"])
	assert.Equal(t, model.StatusCompleted, statuses["e-done"])
	assert.Equal(t, model.StatusPending, statuses["f-untouched"])

	stats := snap.Simple.Stats
	assert.Equal(t, 6, stats.Specs.Total)
	assert.Equal(t, 1, stats.Specs.Completed)
	assert.Equal(t, 5, stats.Tasks.Total)
	assert.Equal(t, 2, stats.Tasks.Completed)
	assert.Equal(t, 1, stats.OptionalTasks)
	assert.Equal(t, 40, stats.ProgressPercent)
}

func TestTasksPendingScenario(t *testing.T) {
	root := workspace(t, map[string]string{
		"specs/login/requirements.md": "# Requirements",
		"specs/login/design.md":       "# Design",
	})
	snap, err := New(root).Parse(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Simple.Specs, 1)
	assert.Equal(t, model.PhaseTasksPending, snap.Simple.Specs[0].Phase)
	assert.True(t, snap.Initialized)
	assert.Empty(t, snap.Warnings)
}

func TestEmptyTasksFileWarns(t *testing.T) {
	root := workspace(t, map[string]string{
		"specs/x/requirements.md": "",
		"specs/x/design.md":       "",
		"specs/x/tasks.md":        "# Tasks\n\nnothing yet\n",
	})
	snap, err := New(root).Parse(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.PhaseImplementing, snap.Simple.Specs[0].Phase)
	require.Len(t, snap.Warnings, 1)
	assert.Contains(t, snap.Warnings[0], "x")
}

func TestParseMissingMarker(t *testing.T) {
	_, err := New(t.TempDir()).Parse(context.Background())

	var derr *model.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, model.CodeSimpleNotFound, derr.Code)
}
