package flow

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

func withMarkers(t *testing.T, markers ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, m := range markers {
		require.NoError(t, os.MkdirAll(filepath.Join(root, m), 0755))
	}
	return root
}

func TestDetectPriority(t *testing.T) {
	tests := []struct {
		name      string
		markers   []string
		want      model.Flow
		available []model.Flow
	}{
		{"fire wins", []string{"specs", "memory-bank", ".specs-fire"}, model.FlowFire, model.AllFlows()},
		{"aidlc over simple", []string{"specs", "memory-bank"}, model.FlowAIDLC, []model.Flow{model.FlowAIDLC, model.FlowSimple}},
		{"simple only", []string{"specs"}, model.FlowSimple, []model.Flow{model.FlowSimple}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Detect(withMarkers(t, tt.markers...), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Flow)
			assert.Equal(t, SourceAuto, d.Source)
			assert.True(t, d.Detected)
			assert.Equal(t, tt.available, d.AvailableFlows)
			assert.Empty(t, d.Warning)
		})
	}
}

func TestDetectNoMarkers(t *testing.T) {
	d, err := Detect(t.TempDir(), "")

	require.NoError(t, err)
	assert.False(t, d.Detected)
	assert.Equal(t, model.Flow(""), d.Flow)
	assert.Empty(t, d.AvailableFlows)
	assert.Equal(t, model.FlowFire, d.EffectiveFlow())
}

func TestDetectExplicit(t *testing.T) {
	root := withMarkers(t, ".specs-fire")

	d, err := Detect(root, " Simple ")
	require.NoError(t, err)
	assert.Equal(t, model.FlowSimple, d.Flow)
	assert.Equal(t, SourceFlag, d.Source)
	assert.False(t, d.Detected)
	assert.Contains(t, d.Warning, "specs/")

	d, err = Detect(root, "fire")
	require.NoError(t, err)
	assert.True(t, d.Detected)
	assert.Empty(t, d.Warning)
}

func TestDetectInvalidFlow(t *testing.T) {
	_, err := Detect(t.TempDir(), "kanban")

	var derr *model.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, model.CodeInvalidFlow, derr.Code)
	assert.Equal(t, "Invalid flow", derr.Message)
}

func TestNewParser(t *testing.T) {
	root := t.TempDir()
	for _, f := range model.AllFlows() {
		p, err := NewParser(f, root)
		require.NoError(t, err)
		assert.Equal(t, f, p.Flow())

		_, err = p.Parse(context.Background())
		var derr *model.Error
		require.True(t, errors.As(err, &derr))
		assert.True(t, derr.Code.IsNotFound(), "missing marker for %s", f)
	}

	_, err := NewParser("kanban", root)
	assert.Error(t, err)
}
