package importer

import (
	"context"
	"fmt"
	"log"

	"github.com/suphotsudsee/study-leave-web/internal/model"
	"github.com/suphotsudsee/study-leave-web/internal/parser"
)

// BackfillStore is what BackfillPositions needs from persistence.
type BackfillStore interface {
	ListLeaves(ctx context.Context) ([]model.LeaveRecord, error)
	UpdatePositionParts(ctx context.Context, updates []model.PositionUpdate) error
}

// BackfillPositions splits position_level into title, hospital and office for
// records stored without them (manual entries, older imports). Records that
// already have a title are left alone. It returns the number of records updated.
func BackfillPositions(ctx context.Context, st BackfillStore) (int, error) {
	leaves, err := st.ListLeaves(ctx)
	if err != nil {
		return 0, fmt.Errorf("backfill positions: %w", err)
	}

	var updates []model.PositionUpdate
	for _, l := range leaves {
		if l.PositionTitle != "" || l.PositionLevel == "" {
			continue
		}
		pos := parser.SplitPosition(l.PositionLevel)
		if pos.Title == "" {
			continue
		}
		updates = append(updates, model.PositionUpdate{
			ID:       l.ID,
			Title:    pos.Title,
			Hospital: pos.Hospital,
			Office:   pos.Office,
		})
	}
	if len(updates) == 0 {
		return 0, nil
	}

	if err := st.UpdatePositionParts(ctx, updates); err != nil {
		return 0, fmt.Errorf("backfill positions: %w", err)
	}
	log.Printf("[import] backfilled position parts for %d records", len(updates))
	return len(updates), nil
}
