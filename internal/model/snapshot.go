package model

import (
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// Flow identifies one of the three workspace conventions
type Flow string

const (
	FlowFire   Flow = "fire"
	FlowAIDLC  Flow = "aidlc"
	FlowSimple Flow = "simple"
)

// AllFlows returns every flow in detection priority order
func AllFlows() []Flow {
	return []Flow{FlowFire, FlowAIDLC, FlowSimple}
}

// IsValid checks if the flow is one of the known conventions
func (f Flow) IsValid() bool {
	for _, valid := range AllFlows() {
		if f == valid {
			return true
		}
	}
	return false
}

// DisplayName returns the human name of the flow
func (f Flow) DisplayName() string {
	switch f {
	case FlowFire:
		return "FIRE"
	case FlowAIDLC:
		return "AI-DLC"
	case FlowSimple:
		return "Simple"
	default:
		return string(f)
	}
}

// Project describes the workspace's display identity
type Project struct {
	Name        string
	Description string
	Version     string
}

// Snapshot is the complete, freshly computed workspace state produced by one
// parse. It is never mutated after a parser returns it.
type Snapshot struct {
	Flow        Flow
	Root        string
	Initialized bool
	Project     Project
	Workspace   map[string]string

	// Exactly one of these is set, matching Flow.
	Fire   *FireState
	AIDLC  *AIDLCState
	Simple *SimpleState

	Warnings    []string
	GeneratedAt time.Time `hash:"ignore"`
}

// snapshotFields has the fields of Snapshot without its methods, so
// hashstructure walks the fields instead of calling Snapshot.Hash.
type snapshotFields Snapshot

// Hash returns a structural hash of the snapshot that ignores GeneratedAt, so a
// re-parse of unchanged files hashes identically.
func (s *Snapshot) Hash() (uint64, error) {
	return hashstructure.Hash((*snapshotFields)(s), hashstructure.FormatV2, nil)
}

// Progress returns the headline completion counts for the active flow
func (s *Snapshot) Progress() Counts {
	switch {
	case s.Fire != nil:
		return s.Fire.Stats.WorkItems
	case s.AIDLC != nil:
		return s.AIDLC.Stats.Stories
	case s.Simple != nil:
		return s.Simple.Stats.Tasks
	default:
		return Counts{}
	}
}

// ApprovalGates returns the gates computed for the active runs or bolts
func (s *Snapshot) ApprovalGates() []ApprovalGate {
	switch {
	case s.Fire != nil:
		return s.Fire.Gates
	case s.AIDLC != nil:
		return s.AIDLC.Gates
	default:
		return nil
	}
}

// ApprovalGate describes a pause point that needs human confirmation
type ApprovalGate struct {
	Flow       Flow
	Message    string
	Checkpoint string
	Source     string

	// Subject is the run or bolt id the gate belongs to.
	Subject string
}

// ---------------------------------------------------------------------------
// FIRE

// FireState holds the FIRE flow entities
type FireState struct {
	Intents       []FireIntent
	ActiveRuns    []Run
	CompletedRuns []Run
	PendingItems  []WorkItem
	Standards     []Standard
	Gates         []ApprovalGate
	Stats         FireStats
}

// FireIntent is a top-level FIRE feature grouping
type FireIntent struct {
	ID        string
	Title     string
	Status    Status
	FilePath  string
	WorkItems []WorkItem
}

// WorkItem is the smallest trackable FIRE unit
type WorkItem struct {
	ID         string
	IntentID   string
	Title      string
	Status     Status
	Mode       Mode
	Complexity Complexity
	FilePath   string

	// Exists is false when the item is declared but its file is missing.
	Exists bool
}

// RunStatus separates active runs from finished ones
type RunStatus string

const (
	RunActive    RunStatus = "active"
	RunCompleted RunStatus = "completed"
)

// Run is a bounded FIRE execution session
type Run struct {
	ID                  string
	Scope               Scope
	Status              RunStatus
	WorkItems           []RunItem
	CurrentItem         string
	CurrentPhase        string
	CheckpointState     string
	CurrentCheckpoint   string
	PlanCheckpointState string
	StartedAt           string
	CompletedAt         string
	HasPlan             bool
	HasTestReport       bool
	HasWalkthrough      bool
	Path                string
}

// RunItem is one work item's progress inside a run
type RunItem struct {
	ID              string
	IntentID        string
	Mode            Mode
	Status          Status
	CurrentPhase    string
	CheckpointState string
}

// Current returns the run entry for CurrentItem, falling back to the first
// entry that is still in progress.
func (r *Run) Current() *RunItem {
	for i := range r.WorkItems {
		if r.WorkItems[i].ID == r.CurrentItem {
			return &r.WorkItems[i]
		}
	}
	if r.CurrentItem != "" {
		return nil
	}
	for i := range r.WorkItems {
		if r.WorkItems[i].Status == StatusInProgress {
			return &r.WorkItems[i]
		}
	}
	return nil
}

// Standard is a project standards document
type Standard struct {
	Name string
	Path string
}

// FireStats aggregates FIRE counters
type FireStats struct {
	TotalIntents        int
	CompletedIntents    int
	TotalWorkItems      int
	CompletedWorkItems  int
	InProgressWorkItems int
	PendingWorkItems    int
	BlockedWorkItems    int
	UnknownWorkItems    int
	ActiveRunsCount     int
	CompletedRunsCount  int
	ProgressPercent     int
	Intents             Counts
	WorkItems           Counts
}

// ---------------------------------------------------------------------------
// AIDLC

// AIDLCState holds the AI-DLC flow entities
type AIDLCState struct {
	Intents   []AIDLCIntent
	Bolts     []Bolt
	Standards []Standard
	Gates     []ApprovalGate
	Stats     AIDLCStats
}

// AIDLCIntent groups units of work
type AIDLCIntent struct {
	ID              string
	Title           string
	Status          Status
	FilePath        string
	HasRequirements bool
	Units           []Unit
}

// Unit is a deployable slice of an intent
type Unit struct {
	ID       string
	IntentID string
	Title    string
	Status   Status
	FilePath string
	Stories  []Story
}

// Story is the smallest AI-DLC unit of work
type Story struct {
	ID       string
	UnitID   string
	IntentID string
	Title    string
	Status   Status
	Priority string
	FilePath string
}

// Stage is one step of a bolt's type-specific sequence
type Stage struct {
	Name   string
	Status Status
}

// Bolt is a bounded AI-DLC execution session
type Bolt struct {
	ID            string
	Type          string
	Intent        string
	Unit          string
	Status        Status
	CurrentStage  string
	Stages        []Stage
	Stories       []string
	RequiresBolts []string
	EnablesBolts  []string
	IsBlocked     bool
	BlockedBy     []string
	UnblocksCount int
	Files         []string
	Path          string
	StartedAt     string
	CompletedAt   string
}

// StageStatus returns the status recorded for the named stage
func (b *Bolt) StageStatus(name string) (Status, bool) {
	for _, stage := range b.Stages {
		if stage.Name == name {
			return stage.Status, true
		}
	}
	return StatusUnknown, false
}

// AIDLCStats aggregates AI-DLC counters
type AIDLCStats struct {
	Intents         Counts
	Units           Counts
	Stories         Counts
	Bolts           Counts
	ActiveBolts     int
	BlockedBolts    int
	CompletedBolts  int
	ProgressPercent int
}

// ---------------------------------------------------------------------------
// Simple

// SpecPhase is the authoring stage of a Simple-flow spec
type SpecPhase string

const (
	PhaseRequirementsPending SpecPhase = "requirements_pending"
	PhaseDesignPending       SpecPhase = "design_pending"
	PhaseTasksPending        SpecPhase = "tasks_pending"
	PhaseImplementing        SpecPhase = "implementing"
	PhaseCompleted           SpecPhase = "completed"
)

// SimpleState holds the Simple flow entities
type SimpleState struct {
	Specs []Spec
	Stats SimpleStats
}

// Spec is one feature directory under specs/
type Spec struct {
	Name            string
	Path            string
	Phase           SpecPhase
	Status          Status
	HasRequirements bool
	HasDesign       bool
	HasTasks        bool
	Tasks           []Task
	Counts          TaskCounts
}

// Task is one checklist line from tasks.md
type Task struct {
	ID       string
	Text     string
	Done     bool
	Optional bool
	Line     int
}

// TaskCounts summarizes a task list
type TaskCounts struct {
	Total             int
	Completed         int
	Optional          int
	Required          int
	RequiredCompleted int
}

// SimpleStats aggregates Simple counters
type SimpleStats struct {
	Specs           Counts
	Tasks           Counts
	OptionalTasks   int
	ProgressPercent int
}
