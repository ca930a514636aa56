package fire

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mpjhorner/specdash/internal/fsutil"
	"github.com/mpjhorner/specdash/internal/model"
)

// itemRecord is one work item as declared by a single source. Empty fields
// mean the source did not say.
type itemRecord struct {
	ID         string
	IntentID   string
	Title      string
	Status     string
	Mode       string
	Complexity string
}

type intentRecord struct {
	ID     string
	Title  string
	Status string
	Items  []itemRecord
}

type runItemRecord struct {
	ID              string
	IntentID        string
	Mode            string
	Status          string
	CurrentPhase    string
	CheckpointState string
}

type runRecord struct {
	ID                string
	Scope             string
	Status            string
	Completed         bool
	Items             []runItemRecord
	CurrentItem       string
	CurrentPhase      string
	CheckpointState   string
	CurrentCheckpoint string
	StartedAt         string
	CompletedAt       string
}

// stateDoc is the normalized view of state.yaml
type stateDoc struct {
	Project   model.Project
	Workspace map[string]string
	Intents   []intentRecord
	Active    []runRecord
	Completed []runRecord
}

// loadState reads and normalizes state.yaml. The bool result is false when the
// file does not exist; an error means the file exists but is not valid YAML.
func loadState(path string) (*stateDoc, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, nil
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, true, err
	}
	return normalizeState(raw), true, nil
}

func normalizeState(raw map[string]any) *stateDoc {
	doc := &stateDoc{Workspace: map[string]string{}}

	switch p := raw["project"].(type) {
	case map[string]any:
		doc.Project = model.Project{
			Name:        fsutil.String(p, "name"),
			Description: fsutil.String(p, "description"),
			Version:     fsutil.String(p, "version"),
		}
	case string:
		doc.Project.Name = strings.TrimSpace(p)
	}

	for key, value := range fsutil.Map(raw, "workspace") {
		if s := fsutil.String(map[string]any{key: value}, key); s != "" {
			doc.Workspace[key] = s
		}
	}

	for _, rec := range fsutil.Records(fsutil.List(raw, "intents")) {
		intent := intentRecord{
			ID:     fsutil.String(rec, "id", "name"),
			Title:  fsutil.String(rec, "title", "name"),
			Status: fsutil.String(rec, "status"),
		}
		if intent.ID == "" {
			continue
		}
		for _, item := range fsutil.Records(fsutil.List(rec, "work_items", "workItems", "items")) {
			r := readItemRecord(item)
			if r.ID == "" {
				continue
			}
			r.IntentID = intent.ID
			intent.Items = append(intent.Items, r)
		}
		doc.Intents = append(doc.Intents, intent)
	}

	runs := fsutil.Map(raw, "runs")
	for _, rec := range fsutil.Records(fsutil.List(runs, "active")) {
		if r := readRunRecord(rec); r.ID != "" {
			doc.Active = append(doc.Active, r)
		}
	}
	for _, rec := range fsutil.Records(fsutil.List(runs, "completed")) {
		if r := readRunRecord(rec); r.ID != "" {
			doc.Completed = append(doc.Completed, r)
		}
	}
	return doc
}

func readItemRecord(m map[string]any) itemRecord {
	return itemRecord{
		ID:         fsutil.String(m, "id"),
		IntentID:   fsutil.String(m, "intent", "intent_id", "intentId"),
		Title:      fsutil.String(m, "title", "name"),
		Status:     fsutil.String(m, "status"),
		Mode:       fsutil.String(m, "mode"),
		Complexity: fsutil.String(m, "complexity"),
	}
}

func readRunRecord(m map[string]any) runRecord {
	r := runRecord{
		ID:                fsutil.String(m, "id", "run_id", "runId"),
		Scope:             fsutil.String(m, "scope"),
		Status:            fsutil.String(m, "status"),
		CurrentItem:       fsutil.String(m, "current_item", "currentItem", "current_work_item"),
		CurrentPhase:      fsutil.String(m, "current_phase", "currentPhase", "phase"),
		CheckpointState:   fsutil.String(m, "checkpoint_state", "checkpointState"),
		CurrentCheckpoint: fsutil.String(m, "current_checkpoint", "currentCheckpoint", "checkpoint"),
		StartedAt:         timestamp(m, "started_at", "startedAt", "started"),
		CompletedAt:       timestamp(m, "completed_at", "completedAt", "completed"),
	}
	if done, ok := fsutil.Bool(m, "completed"); ok {
		r.Completed = done
	} else if r.CompletedAt != "" {
		r.Completed = true
	}

	for _, item := range fsutil.Records(fsutil.List(m, "work_items", "workItems", "items")) {
		ri := runItemRecord{
			ID:              fsutil.String(item, "id"),
			IntentID:        fsutil.String(item, "intent", "intent_id", "intentId"),
			Mode:            fsutil.String(item, "mode"),
			Status:          fsutil.String(item, "status"),
			CurrentPhase:    fsutil.String(item, "current_phase", "currentPhase", "phase"),
			CheckpointState: fsutil.String(item, "checkpoint_state", "checkpointState"),
		}
		if ri.ID != "" {
			r.Items = append(r.Items, ri)
		}
	}
	return r
}

// timestamp reads a time-like field, ignoring boolean flags that share the key
func timestamp(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch m[key].(type) {
		case nil, bool:
			continue
		}
		if s := fsutil.String(m, key); s != "" {
			return s
		}
	}
	return ""
}

// mergeRun layers fallback under primary: every empty field of primary is
// filled from fallback, and run items are merged by id.
func mergeRun(primary, fallback runRecord) runRecord {
	out := primary
	out.ID = first(primary.ID, fallback.ID)
	out.Scope = first(primary.Scope, fallback.Scope)
	out.Status = first(primary.Status, fallback.Status)
	out.Completed = primary.Completed || fallback.Completed
	out.CurrentItem = first(primary.CurrentItem, fallback.CurrentItem)
	out.CurrentPhase = first(primary.CurrentPhase, fallback.CurrentPhase)
	out.CheckpointState = first(primary.CheckpointState, fallback.CheckpointState)
	out.CurrentCheckpoint = first(primary.CurrentCheckpoint, fallback.CurrentCheckpoint)
	out.StartedAt = first(primary.StartedAt, fallback.StartedAt)
	out.CompletedAt = first(primary.CompletedAt, fallback.CompletedAt)
	out.Items = mergeRunItems(primary.Items, fallback.Items)
	return out
}

func mergeRunItems(primary, fallback []runItemRecord) []runItemRecord {
	byID := make(map[string]runItemRecord, len(fallback))
	for _, item := range fallback {
		byID[item.ID] = item
	}

	seen := make(map[string]bool, len(primary))
	out := make([]runItemRecord, 0, len(primary)+len(fallback))
	for _, p := range primary {
		f := byID[p.ID]
		out = append(out, runItemRecord{
			ID:              p.ID,
			IntentID:        first(p.IntentID, f.IntentID),
			Mode:            first(p.Mode, f.Mode),
			Status:          first(p.Status, f.Status),
			CurrentPhase:    first(p.CurrentPhase, f.CurrentPhase),
			CheckpointState: first(p.CheckpointState, f.CheckpointState),
		})
		seen[p.ID] = true
	}
	for _, f := range fallback {
		if !seen[f.ID] {
			out = append(out, f)
		}
	}
	return out
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
