package report

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/suphotsudsee/study-leave-web/internal/model"
)

// UnspecifiedOffice labels leaves stored without an office.
const UnspecifiedOffice = "ไม่ระบุสังกัด"

// LeaveCounts splits leaves by program length; two years or more is full time.
type LeaveCounts struct {
	Total    int `json:"total"`
	FullTime int `json:"full_time"`
	PartTime int `json:"part_time"`
}

// BudgetSavings is reserved for salary savings; nothing feeds it yet.
type BudgetSavings struct {
	Total float64 `json:"total"`
}

// DeptStat counts leaves per office.
type DeptStat struct {
	Office string `json:"office"`
	Total  int    `json:"total"`
	Active int    `json:"active"`
}

// ProgramYearStats describes program lengths.
type ProgramYearStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Summary is the reports page payload.
type Summary struct {
	BudgetSavings BudgetSavings    `json:"budget_savings"`
	LeaveCounts   LeaveCounts      `json:"leave_counts"`
	StatusCounts  map[Status]int   `json:"status_counts"`
	DueReinstates int              `json:"due_reinstates"`
	DeptStats     []DeptStat       `json:"dept_stats"`
	ProgramYears  ProgramYearStats `json:"program_years"`
}

// BuildSummary aggregates every leave.
func BuildSummary(leaves []model.LeaveRecord, today time.Time, dueWindowDays int) (Summary, error) {
	s := Summary{
		StatusCounts: map[Status]int{
			StatusActive:    0,
			StatusPending:   0,
			StatusCompleted: 0,
		},
		DeptStats: []DeptStat{},
	}

	years := make(stats.Float64Data, 0, len(leaves))
	depts := map[string]*DeptStat{}
	for _, l := range leaves {
		s.LeaveCounts.Total++
		if l.ProgramYears >= 2 {
			s.LeaveCounts.FullTime++
		} else {
			s.LeaveCounts.PartTime++
		}
		years = append(years, float64(l.ProgramYears))

		status := LeaveStatus(l.StartDate, l.EndDate, today)
		s.StatusCounts[status]++
		if DueForReinstatement(l.EndDate, today, dueWindowDays) {
			s.DueReinstates++
		}

		office := l.PositionOffice
		if office == "" {
			office = UnspecifiedOffice
		}
		ds, ok := depts[office]
		if !ok {
			ds = &DeptStat{Office: office}
			depts[office] = ds
		}
		ds.Total++
		if status == StatusActive {
			ds.Active++
		}
	}

	for _, ds := range depts {
		s.DeptStats = append(s.DeptStats, *ds)
	}
	sort.Slice(s.DeptStats, func(i, j int) bool {
		if s.DeptStats[i].Total != s.DeptStats[j].Total {
			return s.DeptStats[i].Total > s.DeptStats[j].Total
		}
		return s.DeptStats[i].Office < s.DeptStats[j].Office
	})

	if len(years) == 0 {
		return s, nil
	}
	var err error
	if s.ProgramYears.Mean, err = stats.Mean(years); err != nil {
		return s, err
	}
	if s.ProgramYears.Median, err = stats.Median(years); err != nil {
		return s, err
	}
	if s.ProgramYears.Max, err = stats.Max(years); err != nil {
		return s, err
	}
	s.ProgramYears.Mean, _ = stats.Round(s.ProgramYears.Mean, 2)
	return s, nil
}
