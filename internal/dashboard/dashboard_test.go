package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpjhorner/specdash/internal/flow"
	"github.com/mpjhorner/specdash/internal/git"
	"github.com/mpjhorner/specdash/internal/log"
	"github.com/mpjhorner/specdash/internal/model"
)

// fakeParser returns queued results in order, repeating the last one
type fakeParser struct {
	flow    model.Flow
	results []func() (*model.Snapshot, error)
	calls   int
}

func (p *fakeParser) Flow() model.Flow { return p.flow }

func (p *fakeParser) Parse(context.Context) (*model.Snapshot, error) {
	i := p.calls
	if i >= len(p.results) {
		i = len(p.results) - 1
	}
	p.calls++
	return p.results[i]()
}

func snapshot(gates ...model.ApprovalGate) func() (*model.Snapshot, error) {
	return func() (*model.Snapshot, error) {
		return &model.Snapshot{
			Flow:        model.FlowFire,
			Initialized: true,
			Fire:        &model.FireState{Gates: gates},
			GeneratedAt: time.Now(),
		}, nil
	}
}

func failure(err error) func() (*model.Snapshot, error) {
	return func() (*model.Snapshot, error) { return nil, err }
}

func newDashboard(p *fakeParser) *Dashboard {
	return New(".", p).
		WithLogger(log.Discard()).
		WithGitCollector(nil).
		WithAvailableFlows([]model.Flow{model.FlowFire})
}

func TestRefreshDetectsChanges(t *testing.T) {
	p := &fakeParser{flow: model.FlowFire, results: []func() (*model.Snapshot, error){snapshot()}}
	d := newDashboard(p)
	ctx := context.Background()

	first := d.Refresh(ctx)
	assert.True(t, first.Changed)
	assert.Nil(t, first.Err)
	require.NotNil(t, d.Snapshot())
	assert.Equal(t, StateIdle, d.State())
	assert.False(t, d.UpdatedAt().IsZero())

	// A re-parse of identical content differs only in GeneratedAt.
	second := d.Refresh(ctx)
	assert.False(t, second.Changed)
	assert.Equal(t, 2, p.calls)
}

func TestRefreshErrorKeepsSnapshot(t *testing.T) {
	parseErr := model.NewError(model.CodeStateParseError, "Failed to parse state.yaml").WithPath("state.yaml")
	p := &fakeParser{flow: model.FlowFire, results: []func() (*model.Snapshot, error){
		snapshot(), failure(parseErr), failure(parseErr), snapshot(),
	}}
	d := newDashboard(p)
	ctx := context.Background()

	d.Refresh(ctx)
	good := d.Snapshot()

	res := d.Refresh(ctx)
	assert.True(t, res.Changed)
	require.NotNil(t, res.Err)
	assert.Equal(t, model.CodeStateParseError, res.Err.Code)
	assert.Equal(t, "state.yaml", res.Err.Path)
	assert.Equal(t, StateError, d.State())
	assert.Same(t, good, d.Snapshot())

	repeat := d.Refresh(ctx)
	assert.False(t, repeat.Changed, "identical error must not re-render")

	recovered := d.Refresh(ctx)
	assert.True(t, recovered.Changed, "clearing the error is a change")
	assert.Nil(t, d.Err())
	assert.Equal(t, StateIdle, d.State())
}

func TestRefreshNormalizesPlainErrors(t *testing.T) {
	p := &fakeParser{flow: model.FlowFire, results: []func() (*model.Snapshot, error){
		failure(errors.New("boom")),
	}}
	d := newDashboard(p)

	res := d.Refresh(context.Background())
	require.NotNil(t, res.Err)
	assert.Equal(t, model.CodeParseError, res.Err.Code)
	assert.Equal(t, "boom", res.Err.Message)
	assert.Nil(t, d.Snapshot())
}

func TestRefreshRecoversFromPanic(t *testing.T) {
	p := &fakeParser{flow: model.FlowFire, results: []func() (*model.Snapshot, error){
		func() (*model.Snapshot, error) { panic("nil map") },
	}}
	d := newDashboard(p)

	res := d.Refresh(context.Background())
	require.NotNil(t, res.Err)
	assert.Equal(t, model.CodeRefreshFailed, res.Err.Code)
	assert.Contains(t, res.Err.Details, "nil map")
}

func TestRefreshReportsNewGates(t *testing.T) {
	gate := model.ApprovalGate{Flow: model.FlowFire, Subject: "run-001", Checkpoint: "plan", Message: "Run run-001 awaiting approval"}
	p := &fakeParser{flow: model.FlowFire, results: []func() (*model.Snapshot, error){
		snapshot(gate), snapshot(gate), snapshot(),
		snapshot(model.ApprovalGate{Flow: model.FlowFire, Subject: "run-002", Checkpoint: "plan"}),
	}}
	d := newDashboard(p)
	ctx := context.Background()

	assert.Empty(t, d.Refresh(ctx).NewGates, "gates present at startup are not new")
	assert.Empty(t, d.Refresh(ctx).NewGates)
	assert.Empty(t, d.Refresh(ctx).NewGates)

	gates := d.Refresh(ctx).NewGates
	require.Len(t, gates, 1)
	assert.Equal(t, "run-002", gates[0].Subject)
}

func TestRefreshGitChanges(t *testing.T) {
	p := &fakeParser{flow: model.FlowFire, results: []func() (*model.Snapshot, error){snapshot()}}
	branch := "main"
	d := newDashboard(p).WithGitCollector(func(context.Context, string) git.ChangeSet {
		return git.ChangeSet{Available: true, Clean: true, Branch: branch}
	})
	ctx := context.Background()

	assert.True(t, d.Refresh(ctx).Changed)
	require.NotNil(t, d.Changes())
	assert.Equal(t, "main", d.Changes().Branch)
	assert.False(t, d.Refresh(ctx).Changed)

	branch = "feature"
	assert.True(t, d.Refresh(ctx).Changed)
	assert.Equal(t, "feature", d.Changes().Branch)
}

func TestSwitchFlow(t *testing.T) {
	p := &fakeParser{flow: model.FlowFire, results: []func() (*model.Snapshot, error){snapshot()}}
	d := newDashboard(p).WithAvailableFlows([]model.Flow{model.FlowFire, model.FlowSimple})
	d.Refresh(context.Background())

	err := d.SwitchFlow(model.FlowAIDLC)
	var structured *model.Error
	require.True(t, errors.As(err, &structured))
	assert.Equal(t, model.CodeUnsupportedFlow, structured.Code)
	assert.Equal(t, model.FlowFire, d.Flow())

	assert.Equal(t, model.FlowSimple, d.NextFlow())
	require.NoError(t, d.SwitchFlow(model.FlowSimple))
	assert.Equal(t, model.FlowSimple, d.Flow())
	assert.Nil(t, d.Snapshot())
	assert.Equal(t, model.FlowFire, d.NextFlow())

	require.NoError(t, d.SwitchFlow(model.FlowSimple), "switching to the active flow is a no-op")
}

func TestNextFlowSingle(t *testing.T) {
	p := &fakeParser{flow: model.FlowFire, results: []func() (*model.Snapshot, error){snapshot()}}
	d := newDashboard(p)
	assert.Equal(t, model.Flow(""), d.NextFlow())
}

func TestRefreshRealParser(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".specs-fire"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".specs-fire", "state.yaml"), []byte("project:\n  name: demo\n"), 0644))

	p, err := flow.NewParser(model.FlowFire, root)
	require.NoError(t, err)
	d := New(root, p).WithLogger(log.Discard()).WithGitCollector(nil)
	assert.Equal(t, []model.Flow{model.FlowFire}, d.AvailableFlows())

	res := d.Refresh(context.Background())
	require.Nil(t, res.Err)
	assert.Equal(t, "demo", d.Snapshot().Project.Name)
	assert.False(t, d.Refresh(context.Background()).Changed)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "refreshing", StateRefreshing.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "unknown", State(9).String())
}
