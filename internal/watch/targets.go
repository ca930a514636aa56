package watch

import (
	"path/filepath"

	"github.com/mpjhorner/specdash/internal/flow"
	"github.com/mpjhorner/specdash/internal/model"
)

// Target is a path to observe. Recursive targets cover every directory below
// Path; others only see their direct entries. When Names is set, only events
// for those base names count.
type Target struct {
	Path      string
	Recursive bool
	Names     []string
}

// manifests can change the project name shown in the header
var manifests = []string{"package.json", "project.yaml", "pyproject.toml", "Cargo.toml"}

// Targets derives the watch targets for one workspace root. The root itself is
// watched shallowly for marker and manifest changes, so creating a marker
// directory is noticed.
func Targets(root string, f model.Flow) []Target {
	rootNames := append([]string{}, manifests...)
	for _, candidate := range model.AllFlows() {
		rootNames = append(rootNames, flow.Marker(candidate))
	}
	targets := []Target{{Path: root, Names: rootNames}}

	marker := flow.MarkerPath(root, f)
	switch f {
	case model.FlowFire:
		targets = append(targets,
			Target{Path: marker},
			Target{Path: filepath.Join(marker, "intents"), Recursive: true},
			Target{Path: filepath.Join(marker, "runs"), Recursive: true},
			Target{Path: filepath.Join(marker, "standards"), Recursive: true},
		)
	case model.FlowAIDLC:
		targets = append(targets,
			Target{Path: marker},
			Target{Path: filepath.Join(marker, "intents"), Recursive: true},
			Target{Path: filepath.Join(marker, "bolts"), Recursive: true},
			Target{Path: filepath.Join(marker, "standards"), Recursive: true},
		)
	case model.FlowSimple:
		targets = append(targets, Target{Path: marker, Recursive: true})
	}
	return targets
}
