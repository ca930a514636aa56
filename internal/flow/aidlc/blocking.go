package aidlc

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/mpjhorner/specdash/internal/model"
)

// ComputeBlocking fills IsBlocked, BlockedBy and UnblocksCount on every bolt
// and returns a warning for each dependency on a bolt that does not exist.
//
// The first pass records every required bolt that is missing or not completed
// and promotes pending bolts with blockers to blocked. The second pass counts,
// for each bolt, the other unfinished bolts that require it, using the
// statuses settled by the first pass. Blocking is one hop only.
func ComputeBlocking(bolts []model.Bolt) []string {
	var warnings []string

	index := make(map[string]int, len(bolts))
	for i, b := range bolts {
		index[b.ID] = i
	}

	for i := range bolts {
		b := &bolts[i]
		b.BlockedBy = nil
		for _, dep := range b.RequiresBolts {
			j, ok := index[dep]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("Bolt %s depends on missing bolt %s", b.ID, dep))
				b.BlockedBy = append(b.BlockedBy, dep)
				continue
			}
			if bolts[j].Status != model.StatusCompleted {
				b.BlockedBy = append(b.BlockedBy, dep)
			}
		}
		b.BlockedBy = lo.Uniq(b.BlockedBy)
		b.IsBlocked = len(b.BlockedBy) > 0
		if b.IsBlocked && b.Status == model.StatusPending {
			b.Status = model.StatusBlocked
		}
	}

	for i := range bolts {
		id := bolts[i].ID
		bolts[i].UnblocksCount = lo.CountBy(bolts, func(other model.Bolt) bool {
			return other.ID != id &&
				other.Status != model.StatusCompleted &&
				lo.Contains(other.RequiresBolts, id)
		})
	}
	return warnings
}
