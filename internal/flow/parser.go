package flow

import (
	"context"
	"fmt"

	"github.com/mpjhorner/specdash/internal/flow/aidlc"
	"github.com/mpjhorner/specdash/internal/flow/fire"
	"github.com/mpjhorner/specdash/internal/flow/simple"
	"github.com/mpjhorner/specdash/internal/model"
)

// Parser turns a workspace into a Snapshot
type Parser interface {
	Flow() model.Flow
	Parse(ctx context.Context) (*model.Snapshot, error)
}

// NewParser returns the parser for flow f rooted at root
func NewParser(f model.Flow, root string) (Parser, error) {
	switch f {
	case model.FlowFire:
		return fire.New(root), nil
	case model.FlowAIDLC:
		return aidlc.New(root), nil
	case model.FlowSimple:
		return simple.New(root), nil
	default:
		return nil, model.NewError(model.CodeInvalidFlow, "Invalid flow").
			WithDetails(fmt.Sprintf("no parser for %q", f))
	}
}
