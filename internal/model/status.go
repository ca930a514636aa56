package model

import (
	"math"
	"strings"
)

// Status is the normalized lifecycle state shared by every work entity
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
	StatusUnknown    Status = "unknown"
)

// ValidStatuses returns all recognized status values
func ValidStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusCompleted,
		StatusBlocked,
	}
}

// IsValid checks if the status is one of the recognized values
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further work is expected
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

var statusAliases = map[string]Status{
	"pending":     StatusPending,
	"todo":        StatusPending,
	"to_do":       StatusPending,
	"draft":       StatusPending,
	"planned":     StatusPending,
	"not_started": StatusPending,
	"new":         StatusPending,
	"open":        StatusPending,
	"ready":       StatusPending,
	"in_progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"active":      StatusInProgress,
	"wip":         StatusInProgress,
	"started":     StatusInProgress,
	"running":     StatusInProgress,
	"doing":       StatusInProgress,
	"completed":   StatusCompleted,
	"complete":    StatusCompleted,
	"done":        StatusCompleted,
	"finished":    StatusCompleted,
	"closed":      StatusCompleted,
	"blocked":     StatusBlocked,
	"on_hold":     StatusBlocked,
	"waiting":     StatusBlocked,
}

// NormalizeToken lowercases a free-form value and folds whitespace and dashes
// into single underscores.
func NormalizeToken(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range value {
		if r == ' ' || r == '-' || r == '\t' || r == '_' {
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			lastUnderscore = true
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	return strings.TrimSuffix(b.String(), "_")
}

// NormalizeStatus maps a free-form status string onto the fixed set.
// Empty and unrecognized values map to StatusUnknown.
func NormalizeStatus(value string) Status {
	if status, ok := statusAliases[NormalizeToken(value)]; ok {
		return status
	}
	return StatusUnknown
}

// NormalizeStatusOr behaves like NormalizeStatus but substitutes fallback for
// an empty input.
func NormalizeStatusOr(value string, fallback Status) Status {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return NormalizeStatus(value)
}

// DeriveStatus computes a container status from its children.
//
// Precedence: no recognized children -> pending; any in_progress -> in_progress;
// all completed -> completed; any blocked -> blocked; otherwise pending.
func DeriveStatus(children []Status) Status {
	recognized := make([]Status, 0, len(children))
	for _, s := range children {
		if s.IsValid() {
			recognized = append(recognized, s)
		}
	}
	if len(recognized) == 0 {
		return StatusPending
	}

	allCompleted := true
	anyBlocked := false
	for _, s := range recognized {
		if s == StatusInProgress {
			return StatusInProgress
		}
		if s != StatusCompleted {
			allCompleted = false
		}
		if s == StatusBlocked {
			anyBlocked = true
		}
	}
	if allCompleted {
		return StatusCompleted
	}
	if anyBlocked {
		return StatusBlocked
	}
	return StatusPending
}

// Mode is the human-involvement level for a FIRE work item or run entry
type Mode string

const (
	ModeConfirm   Mode = "confirm"
	ModeValidate  Mode = "validate"
	ModeAutopilot Mode = "autopilot"
)

// NormalizeMode maps free-form mode strings, defaulting to confirm
func NormalizeMode(value string) Mode {
	switch NormalizeToken(value) {
	case "validate", "validation":
		return ModeValidate
	case "autopilot", "auto", "autonomous":
		return ModeAutopilot
	default:
		return ModeConfirm
	}
}

// RequiresApproval reports whether the mode pauses for a human checkpoint
func (m Mode) RequiresApproval() bool {
	return m == ModeConfirm || m == ModeValidate
}

// Scope is the breadth of a FIRE run
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeBatch  Scope = "batch"
	ScopeWide   Scope = "wide"
)

// NormalizeScope maps free-form scope strings, defaulting to single
func NormalizeScope(value string) Scope {
	switch NormalizeToken(value) {
	case "batch", "multi", "multiple":
		return ScopeBatch
	case "wide", "all", "full":
		return ScopeWide
	default:
		return ScopeSingle
	}
}

// Complexity is the estimated size of a work item
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// NormalizeComplexity maps free-form complexity strings, defaulting to medium
func NormalizeComplexity(value string) Complexity {
	switch NormalizeToken(value) {
	case "low", "small", "simple", "s":
		return ComplexityLow
	case "high", "large", "complex", "l":
		return ComplexityHigh
	default:
		return ComplexityMedium
	}
}

// Counts holds per-status tallies for one entity type. The five buckets always
// sum to Total.
type Counts struct {
	Total      int
	Completed  int
	InProgress int
	Pending    int
	Blocked    int
	Unknown    int
}

// CountStatuses tallies statuses into buckets
func CountStatuses(statuses []Status) Counts {
	c := Counts{Total: len(statuses)}
	for _, s := range statuses {
		c.Add(s)
	}
	return c
}

// Add records one status without touching Total
func (c *Counts) Add(s Status) {
	switch s {
	case StatusCompleted:
		c.Completed++
	case StatusInProgress:
		c.InProgress++
	case StatusPending:
		c.Pending++
	case StatusBlocked:
		c.Blocked++
	default:
		c.Unknown++
	}
}

// ProgressPercent returns round(completed/total*100), 0 when total is 0
func (c Counts) ProgressPercent() int {
	return Percent(c.Completed, c.Total)
}

// Percent returns round(part/total*100), 0 when total is 0
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
