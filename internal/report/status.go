package report

import (
	"strconv"
	"time"

	"github.com/suphotsudsee/study-leave-web/internal/model"
	"github.com/suphotsudsee/study-leave-web/internal/parser"
)

// Status is the state of a leave relative to a given day.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// FilterAll disables status filtering.
const FilterAll = "all"

// DefaultDueWindowDays is how far ahead a leave end counts as due for reinstatement.
const DefaultDueWindowDays = 90

// ParseFilter accepts all/active/pending/completed and maps anything else to all.
func ParseFilter(s string) string {
	switch Status(s) {
	case StatusActive, StatusPending, StatusCompleted:
		return s
	}
	return FilterAll
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func parseDay(iso string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(parser.ISODate, iso, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LeaveStatus is pending before start, completed after end and active otherwise.
// Unparseable dates count as active.
func LeaveStatus(startDate, endDate string, today time.Time) Status {
	today = Day(today)
	if start, ok := parseDay(startDate, today.Location()); ok && today.Before(start) {
		return StatusPending
	}
	if end, ok := parseDay(endDate, today.Location()); ok && today.After(end) {
		return StatusCompleted
	}
	return StatusActive
}

// DueForReinstatement reports whether endDate falls within [today, today+windowDays].
func DueForReinstatement(endDate string, today time.Time, windowDays int) bool {
	today = Day(today)
	end, ok := parseDay(endDate, today.Location())
	if !ok {
		return false
	}
	limit := today.AddDate(0, 0, windowDays)
	return !end.Before(today) && !end.After(limit)
}

// Matches reports whether a leave passes the status filter.
func Matches(rec model.LeaveRecord, filter string, today time.Time) bool {
	return filter == FilterAll || filter == "" || string(LeaveStatus(rec.StartDate, rec.EndDate, today)) == filter
}

// LeaveView is a stored leave with the derived fields the list screen shows.
type LeaveView struct {
	model.LeaveRecord
	Position string `json:"position"`
	Level    string `json:"level"`
	Type     string `json:"type"`
	Status   Status `json:"status"`
}

// Views derives list rows for the leaves passing filter.
func Views(leaves []model.LeaveRecord, filter string, today time.Time) []LeaveView {
	out := make([]LeaveView, 0, len(leaves))
	for _, l := range leaves {
		if !Matches(l, filter, today) {
			continue
		}
		out = append(out, LeaveView{
			LeaveRecord: l,
			Position:    l.PositionLevel,
			Level:       l.Program,
			Type:        programType(l.ProgramYears),
			Status:      LeaveStatus(l.StartDate, l.EndDate, today),
		})
	}
	return out
}

func programType(years int) string {
	return strconv.Itoa(years) + " ปี"
}
