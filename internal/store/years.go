package store

import (
	"context"
	"fmt"
)

// LeaveYearStat counts leaves starting and ending in a calendar year.
type LeaveYearStat struct {
	Year    string `json:"year" db:"y"`
	Started int    `json:"started" db:"started"`
	Ended   int    `json:"ended" db:"ended"`
}

// ListLeaveYears returns per-year start/end counts, latest year first.
func (s *Store) ListLeaveYears(ctx context.Context) ([]LeaveYearStat, error) {
	out := []LeaveYearStat{}
	err := s.db.SelectContext(ctx, &out, `
		WITH ym AS (
			SELECT SUBSTR(start_date, 1, 4) AS y FROM study_leaves
			UNION
			SELECT SUBSTR(end_date, 1, 4) AS y FROM study_leaves
		)
		SELECT
			ym.y,
			(SELECT COUNT(1) FROM study_leaves WHERE SUBSTR(start_date, 1, 4) = ym.y) AS started,
			(SELECT COUNT(1) FROM study_leaves WHERE SUBSTR(end_date, 1, 4) = ym.y) AS ended
		FROM ym
		ORDER BY ym.y DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query leave years failed: %w", err)
	}
	return out, nil
}
