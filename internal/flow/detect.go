// Package flow decides which workspace convention is active and builds the
// matching parser.
package flow

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/model"
)

// Source records how the active flow was chosen
type Source string

const (
	SourceAuto Source = "auto"
	SourceFlag Source = "flag"
)

// Marker returns the marker directory name for a flow
func Marker(f model.Flow) string {
	switch f {
	case model.FlowFire:
		return ".specs-fire"
	case model.FlowAIDLC:
		return "memory-bank"
	case model.FlowSimple:
		return "specs"
	default:
		return ""
	}
}

// MarkerPath returns the absolute marker directory for a flow under root
func MarkerPath(root string, f model.Flow) string {
	return filepath.Join(root, Marker(f))
}

// Detection is the outcome of inspecting a workspace root
type Detection struct {
	Flow           model.Flow
	Source         Source
	Detected       bool
	AvailableFlows []model.Flow
	Warning        string
}

// AvailableFlows returns the flows whose marker directory exists under root,
// in priority order
func AvailableFlows(root string) []model.Flow {
	return lo.Filter(model.AllFlows(), func(f model.Flow, _ int) bool {
		return fsutil.IsDir(MarkerPath(root, f))
	})
}

// ParseFlow validates a user-supplied flow name
func ParseFlow(name string) (model.Flow, error) {
	f := model.Flow(strings.ToLower(strings.TrimSpace(name)))
	if !f.IsValid() {
		return "", model.NewError(model.CodeInvalidFlow, "Invalid flow").
			WithDetails(fmt.Sprintf("%q is not one of fire, aidlc, simple", name))
	}
	return f, nil
}

// Detect picks the active flow for root. An explicit flow wins even when its
// marker is missing, in which case a warning is attached. Without an explicit
// flow the first available flow in priority order is used. Missing markers are
// never an error; only an unknown explicit name is.
func Detect(root, explicit string) (Detection, error) {
	available := AvailableFlows(root)

	if strings.TrimSpace(explicit) != "" {
		f, err := ParseFlow(explicit)
		if err != nil {
			return Detection{AvailableFlows: available}, err
		}
		d := Detection{
			Flow:           f,
			Source:         SourceFlag,
			Detected:       lo.Contains(available, f),
			AvailableFlows: available,
		}
		if !d.Detected {
			d.Warning = fmt.Sprintf("%s flow requested but %s/ was not found", f.DisplayName(), Marker(f))
		}
		return d, nil
	}

	if len(available) == 0 {
		return Detection{Source: SourceAuto, AvailableFlows: available}, nil
	}
	return Detection{
		Flow:           available[0],
		Source:         SourceAuto,
		Detected:       true,
		AvailableFlows: available,
	}, nil
}

// EffectiveFlow returns the detected flow, or the default FIRE flow when no
// marker exists so the dashboard can show its not-found guidance
func (d Detection) EffectiveFlow() model.Flow {
	if d.Flow == "" {
		return model.FlowFire
	}
	return d.Flow
}
