// Package dashboard owns the refresh cycle: it runs the active flow parser and
// the git collector, keeps the last good snapshot, and reports whether
// anything visible changed.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/flow"
	"github.com/mpjhorner/specdash/internal/git"
	"github.com/mpjhorner/specdash/internal/log"
	"github.com/mpjhorner/specdash/internal/model"
)

// State is where the dashboard is in its refresh cycle
type State int

const (
	StateIdle State = iota
	StateRefreshing
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ParserFactory builds the parser for a flow rooted at root
type ParserFactory func(f model.Flow, root string) (flow.Parser, error)

// GitCollector reads the change set of the repository containing path
type GitCollector func(ctx context.Context, path string) git.ChangeSet

// Result describes one refresh
type Result struct {
	// Changed is true when the snapshot, the error or the git change set
	// differs from the previous refresh.
	Changed bool
	Err     *model.Error

	// NewGates are approval gates that were not present before this refresh.
	// The first successful parse reports none.
	NewGates []model.ApprovalGate

	Duration time.Duration
}

// Dashboard holds the state shared between refreshes. It is not safe for
// concurrent use; the TUI drives it from a single goroutine.
type Dashboard struct {
	root      string
	parser    flow.Parser
	newParser ParserFactory
	collect   GitCollector
	logger    *log.Logger
	now       func() time.Time

	available []model.Flow
	state     State

	snapshot     *model.Snapshot
	snapshotHash uint64
	err          *model.Error
	errHash      uint64
	changes      *git.ChangeSet
	changesHash  uint64
	updated      time.Time
}

// New creates a Dashboard for root using p as the active parser
func New(root string, p flow.Parser) *Dashboard {
	return &Dashboard{
		root:      root,
		parser:    p,
		newParser: flow.NewParser,
		collect:   git.Collect,
		logger:    log.Default(),
		now:       time.Now,
		available: flow.AvailableFlows(root),
	}
}

// WithLogger sets the logger
func (d *Dashboard) WithLogger(l *log.Logger) *Dashboard {
	if l != nil {
		d.logger = l
	}
	return d
}

// WithGitCollector replaces the git collector. A nil collector disables git.
func (d *Dashboard) WithGitCollector(fn GitCollector) *Dashboard {
	d.collect = fn
	return d
}

// WithParserFactory replaces the factory used by SwitchFlow
func (d *Dashboard) WithParserFactory(fn ParserFactory) *Dashboard {
	d.newParser = fn
	return d
}

// WithAvailableFlows overrides the flows SwitchFlow accepts
func (d *Dashboard) WithAvailableFlows(flows []model.Flow) *Dashboard {
	d.available = flows
	return d
}

// Root returns the workspace root
func (d *Dashboard) Root() string { return d.root }

// Flow returns the active flow
func (d *Dashboard) Flow() model.Flow { return d.parser.Flow() }

// State returns the refresh state
func (d *Dashboard) State() State { return d.state }

// Snapshot returns the last successful snapshot, or nil before the first one
func (d *Dashboard) Snapshot() *model.Snapshot { return d.snapshot }

// Err returns the error of the last refresh, or nil when it succeeded
func (d *Dashboard) Err() *model.Error { return d.err }

// Changes returns the last collected git change set, or nil when git
// collection is disabled or has not run
func (d *Dashboard) Changes() *git.ChangeSet { return d.changes }

// UpdatedAt returns the time of the last successful refresh
func (d *Dashboard) UpdatedAt() time.Time { return d.updated }

// AvailableFlows returns the flows whose markers were found
func (d *Dashboard) AvailableFlows() []model.Flow { return d.available }

// Status is a copy of what the dashboard knows after a refresh. The TUI keeps
// it so rendering never reads the dashboard while a refresh is running.
type Status struct {
	Flow      model.Flow
	State     State
	Snapshot  *model.Snapshot
	Err       *model.Error
	Changes   *git.ChangeSet
	UpdatedAt time.Time
	Available []model.Flow
}

// Status returns the current state of the dashboard
func (d *Dashboard) Status() Status {
	return Status{
		Flow:      d.Flow(),
		State:     d.state,
		Snapshot:  d.snapshot,
		Err:       d.err,
		Changes:   d.changes,
		UpdatedAt: d.updated,
		Available: d.available,
	}
}

// Refresh parses the workspace and collects git state. A failed parse keeps
// the previous snapshot and records a normalized error; identical repeated
// errors are not reported as changes.
func (d *Dashboard) Refresh(ctx context.Context) Result {
	d.state = StateRefreshing
	start := d.now()

	snap, parseErr := d.parse(ctx)
	gitChanged := d.collectGit(ctx)

	res := Result{Duration: d.now().Sub(start)}
	logger := d.logger.With("flow", d.Flow())

	if parseErr != nil {
		e := model.NormalizeError(parseErr, model.CodeParseError)
		h := e.Hash()
		res.Changed = d.err == nil || h != d.errHash || gitChanged
		res.Err = e
		d.err, d.errHash = e, h
		d.state = StateError

		logger.Warn("refresh failed", "code", e.Code, "error", e.Message, "duration", res.Duration, "changed", res.Changed)
		return res
	}

	h, err := snap.Hash()
	if err != nil {
		// An unhashable snapshot is always treated as new.
		logger.Debug("snapshot hash failed", "error", err)
		h = 0
	}
	snapChanged := d.snapshot == nil || err != nil || h != d.snapshotHash

	if d.snapshot != nil {
		res.NewGates = newGates(d.snapshot.ApprovalGates(), snap.ApprovalGates())
	}
	if snapChanged {
		d.snapshot, d.snapshotHash = snap, h
	}

	res.Changed = snapChanged || gitChanged || d.err != nil
	d.err, d.errHash = nil, 0
	d.state = StateIdle
	d.updated = d.now()

	logger.Info("refresh", "duration", res.Duration, "changed", res.Changed, "warnings", len(snap.Warnings))
	return res
}

// parse runs the parser, converting a panic into REFRESH_FAILED
func (d *Dashboard) parse(ctx context.Context) (snap *model.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = model.NewError(model.CodeRefreshFailed, "Refresh failed").WithDetails(fmt.Sprint(r))
		}
	}()

	snap, err = d.parser.Parse(ctx)
	if err == nil && snap == nil {
		err = model.NewError(model.CodeParseError, "Parser returned no snapshot")
	}
	return snap, err
}

// collectGit refreshes the change set and reports whether it changed
func (d *Dashboard) collectGit(ctx context.Context) bool {
	if d.collect == nil {
		return false
	}

	cs := d.collect(ctx, d.root)
	if !cs.Available {
		d.logger.Debug("git unavailable", "root", d.root, "reason", cs.Error)
	}

	h, err := hashstructure.Hash(cs, hashstructure.FormatV2, nil)
	changed := d.changes == nil || err != nil || h != d.changesHash
	d.changes, d.changesHash = &cs, h
	return changed
}

func gateKey(g model.ApprovalGate) string {
	return strings.Join([]string{string(g.Flow), g.Subject, g.Checkpoint}, "/")
}

func newGates(before, after []model.ApprovalGate) []model.ApprovalGate {
	seen := lo.SliceToMap(before, func(g model.ApprovalGate) (string, bool) {
		return gateKey(g), true
	})
	return lo.Filter(after, func(g model.ApprovalGate, _ int) bool {
		return !seen[gateKey(g)]
	})
}

// SwitchFlow makes f the active flow. Only flows whose marker exists are
// accepted; anything else is UNSUPPORTED_FLOW. Switching clears the previous
// snapshot and error so the next refresh always reports a change.
func (d *Dashboard) SwitchFlow(f model.Flow) error {
	if f == d.Flow() {
		return nil
	}
	if !lo.Contains(d.available, f) {
		return model.NewError(model.CodeUnsupportedFlow, "Unsupported flow").
			WithDetails(fmt.Sprintf("%s is not configured in %s", f.DisplayName(), d.root)).
			WithHint("Available flows: " + flowList(d.available))
	}

	p, err := d.newParser(f, d.root)
	if err != nil {
		return model.NormalizeError(err, model.CodeUnsupportedFlow)
	}

	d.logger.Info("flow switched", "from", d.Flow(), "to", f)
	d.parser = p
	d.snapshot, d.snapshotHash = nil, 0
	d.err, d.errHash = nil, 0
	d.state = StateIdle
	return nil
}

// NextFlow returns the available flow after the active one, wrapping around.
// It returns "" when there is nothing to switch to.
func (d *Dashboard) NextFlow() model.Flow {
	if len(d.available) == 0 {
		return ""
	}
	i := lo.IndexOf(d.available, d.Flow())
	next := d.available[(i+1)%len(d.available)]
	if next == d.Flow() {
		return ""
	}
	return next
}

func flowList(flows []model.Flow) string {
	if len(flows) == 0 {
		return "none"
	}
	return strings.Join(lo.Map(flows, func(f model.Flow, _ int) string { return string(f) }), ", ")
}
