package importer

import (
	"context"
	"testing"

	"github.com/suphotsudsee/study-leave-web/internal/model"
)

func TestBackfillPositions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newSQLiteStore(t)

	manual := model.LeaveDraft{
		CID: "1", FullName: "ก", PositionLevel: "นักวิชาการสาธารณสุข รพ.สต.บ้านใหม่ สสจ.เชียงใหม่",
		ProgramYears: 1, StartDate: "2024-01-01", EndDate: "2024-12-31",
	}
	split := model.LeaveDraft{
		CID: "2", FullName: "ข", PositionLevel: "เภสัชกร รพ.ลำพูน", PositionTitle: "เภสัชกร",
		ProgramYears: 1, StartDate: "2024-01-01", EndDate: "2024-12-31",
	}
	if err := st.InsertLeaves(ctx, []model.LeaveDraft{manual, split}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := BackfillPositions(ctx, st)
	if err != nil || n != 1 {
		t.Fatalf("backfill = %d, %v", n, err)
	}

	leaves, err := st.ListLeaves(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, l := range leaves {
		if l.CID != "1" {
			if l.PositionHospital != "" {
				t.Fatalf("record with a title must not change: %+v", l)
			}
			continue
		}
		if l.PositionTitle != "นักวิชาการสาธารณสุข" || l.PositionHospital != "รพ.สต.บ้านใหม่" || l.PositionOffice != "สสจ.เชียงใหม่" {
			t.Fatalf("backfilled = %+v", l.LeaveDraft)
		}
	}

	n, err = BackfillPositions(ctx, st)
	if err != nil || n != 0 {
		t.Fatalf("second backfill = %d, %v", n, err)
	}
}
