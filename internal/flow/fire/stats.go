package fire

import (
	"github.com/mpjhorner/specdash/internal/model"
)

func computeStats(s *model.FireState) model.FireStats {
	var intents, items []model.Status
	for _, intent := range s.Intents {
		intents = append(intents, intent.Status)
		for _, item := range intent.WorkItems {
			items = append(items, item.Status)
		}
	}

	ic := model.CountStatuses(intents)
	wc := model.CountStatuses(items)

	return model.FireStats{
		TotalIntents:        ic.Total,
		CompletedIntents:    ic.Completed,
		TotalWorkItems:      wc.Total,
		CompletedWorkItems:  wc.Completed,
		InProgressWorkItems: wc.InProgress,
		PendingWorkItems:    wc.Pending,
		BlockedWorkItems:    wc.Blocked,
		UnknownWorkItems:    wc.Unknown,
		ActiveRunsCount:     len(s.ActiveRuns),
		CompletedRunsCount:  len(s.CompletedRuns),
		ProgressPercent:     wc.ProgressPercent(),
		Intents:             ic,
		WorkItems:           wc,
	}
}
