package repository

import (
	"context"
	"database/sql"

	"github.com/orablu/space-adoption/internal/model"
)

// StatsRepo reads campaign aggregates.  Nothing is cached: every call
// aggregates the current table contents.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a new StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Totals returns the space and adoption aggregates.  Status buckets that
// have no adoption are absent from ByStatus.
func (r *StatsRepo) Totals(ctx context.Context) (model.Totals, error) {
	t := model.Totals{ByStatus: map[model.AdoptionStatus]int64{}}

	const spacesQ = `SELECT COUNT(*),
	                        COALESCE(SUM(CASE WHEN adopted = 1 THEN 1 ELSE 0 END), 0),
	                        COALESCE(SUM(CASE WHEN adopted = 1 THEN cost ELSE 0 END), 0),
	                        COALESCE(SUM(cost), 0)
	                 FROM spaces`
	if err := r.db.QueryRowContext(ctx, spacesQ).Scan(&t.TotalSpaces, &t.AdoptedSpaces, &t.TotalRaised, &t.TotalGoal); err != nil {
		return t, err
	}

	const adoptionsQ = `SELECT status, COUNT(*), COALESCE(SUM(CASE WHEN wants_to_help = 1 THEN 1 ELSE 0 END), 0)
	                    FROM adoptions GROUP BY status`
	rows, err := r.db.QueryContext(ctx, adoptionsQ)
	if err != nil {
		return t, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count, volunteers int64
		if err := rows.Scan(&status, &count, &volunteers); err != nil {
			return t, err
		}
		t.ByStatus[model.AdoptionStatus(status)] = count
		t.TotalAdoptions += count
		t.Volunteers += volunteers
	}
	return t, rows.Err()
}
