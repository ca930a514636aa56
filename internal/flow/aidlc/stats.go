package aidlc

import (
	"github.com/mpjhorner/specdash/internal/model"
)

func computeStats(s *model.AIDLCState) model.AIDLCStats {
	var stats model.AIDLCStats

	var intents, units, stories, bolts []model.Status
	for _, intent := range s.Intents {
		intents = append(intents, intent.Status)
		for _, unit := range intent.Units {
			units = append(units, unit.Status)
			for _, story := range unit.Stories {
				stories = append(stories, story.Status)
			}
		}
	}
	for _, bolt := range s.Bolts {
		bolts = append(bolts, bolt.Status)
		switch {
		case bolt.Status == model.StatusCompleted:
			stats.CompletedBolts++
		case bolt.IsBlocked || bolt.Status == model.StatusBlocked:
			stats.BlockedBolts++
		case bolt.Status == model.StatusInProgress:
			stats.ActiveBolts++
		}
	}

	stats.Intents = model.CountStatuses(intents)
	stats.Units = model.CountStatuses(units)
	stats.Stories = model.CountStatuses(stories)
	stats.Bolts = model.CountStatuses(bolts)
	stats.ProgressPercent = stats.Stories.ProgressPercent()
	return stats
}
