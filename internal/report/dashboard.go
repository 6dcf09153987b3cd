package report

import (
	"sort"
	"time"

	"github.com/suphotsudsee/study-leave-web/internal/model"
	"github.com/suphotsudsee/study-leave-web/internal/parser"
)

const (
	topPositionCount  = 4
	recentImportCount = 5
)

// PositionCount is one row of the top positions list.
type PositionCount struct {
	Position string `json:"position"`
	Count    int    `json:"count"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	TotalLeaves      int                     `json:"total_leaves"`
	SuspensionActive int                     `json:"suspension_active"`
	DueToReinstate   int                     `json:"due_to_reinstate"`
	SuspensionAmount float64                 `json:"suspension_amount"`
	TopPositions     []PositionCount         `json:"top_positions"`
	OtherPositions   int                     `json:"other_positions"`
	CategoryCounts   map[parser.Category]int `json:"category_counts"`
	RecentImports    []model.ImportLog       `json:"recent_imports"`
}

// BuildDashboard aggregates the leaves passing filter. imports are expected
// newest first.
func BuildDashboard(leaves []model.LeaveRecord, imports []model.ImportLog, filter string, today time.Time, dueWindowDays int) Dashboard {
	d := Dashboard{
		TopPositions:   []PositionCount{},
		CategoryCounts: make(map[parser.Category]int, len(parser.Categories)),
		RecentImports:  []model.ImportLog{},
	}
	for _, c := range parser.Categories {
		d.CategoryCounts[c] = 0
	}

	counts := map[string]int{}
	for _, l := range leaves {
		if !Matches(l, filter, today) {
			continue
		}
		d.TotalLeaves++
		if DueForReinstatement(l.EndDate, today, dueWindowDays) {
			d.DueToReinstate++
		}
		title := displayTitle(l)
		counts[title]++
		d.CategoryCounts[parser.Classify(title)]++
	}

	d.TopPositions = topPositions(counts, topPositionCount)
	topTotal := 0
	for _, p := range d.TopPositions {
		topTotal += p.Count
	}
	if d.TotalLeaves > topTotal {
		d.OtherPositions = d.TotalLeaves - topTotal
	}

	if len(imports) > recentImportCount {
		imports = imports[:recentImportCount]
	}
	d.RecentImports = append(d.RecentImports, imports...)
	return d
}

func displayTitle(l model.LeaveRecord) string {
	if l.PositionTitle != "" {
		return parser.CollapseSpaces(l.PositionTitle)
	}
	return parser.PositionTitle(l.PositionLevel)
}

// topPositions orders by count, then by name for a stable result.
func topPositions(counts map[string]int, n int) []PositionCount {
	out := make([]PositionCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PositionCount{Position: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Position < out[j].Position
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
