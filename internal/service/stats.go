package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/logger"
	"github.com/orablu/space-adoption/internal/model"
)

// StatsService derives the campaign summary from the current store
// contents on every call.
type StatsService struct {
	stats StatsStore
}

func NewStatsService(stats StatsStore) *StatsService {
	return &StatsService{stats: stats}
}

// GetStats returns the summary.  Every status of the vocabulary is present
// in StatusCounts, with zero when no adoption has it.
func (s *StatsService) GetStats(ctx context.Context) (model.Stats, error) {
	t, err := s.stats.Totals(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("op", "stats"))
		return model.Stats{}, storeError("failed to compute stats", err)
	}
	counts := make(map[model.AdoptionStatus]int64, len(model.AdoptionStatuses))
	for _, st := range model.AdoptionStatuses {
		counts[st] = t.ByStatus[st]
	}
	return model.Stats{
		TotalSpaces:         t.TotalSpaces,
		AdoptedSpaces:       t.AdoptedSpaces,
		AvailableSpaces:     t.TotalSpaces - t.AdoptedSpaces,
		TotalRaised:         t.TotalRaised,
		TotalGoal:           t.TotalGoal,
		ProgressPercentage:  Progress(t.TotalRaised, t.TotalGoal),
		TotalAdoptions:      t.TotalAdoptions,
		VolunteersAvailable: t.Volunteers,
		StatusCounts:        counts,
	}, nil
}

// Progress is 100*raised/goal, and 0 when goal is 0.
func Progress(raised, goal int64) float64 {
	if goal == 0 {
		return 0
	}
	return 100 * float64(raised) / float64(goal)
}
