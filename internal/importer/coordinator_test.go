package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/suphotsudsee/study-leave-web/internal/model"
	"github.com/suphotsudsee/study-leave-web/internal/parser"
	"github.com/suphotsudsee/study-leave-web/internal/store"
)

// writeWorkbook saves one worksheet per entry of sheets, in order.
func writeWorkbook(t *testing.T, sheets []string, data map[string][][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, name := range sheets {
		if i == 0 && name != "Sheet1" {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if i > 0 {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("new sheet: %v", err)
			}
		}
		for r, row := range data[name] {
			cells := make([]interface{}, len(row))
			for c, v := range row {
				cells[c] = v
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(name, cell, &cells); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func newSQLiteStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "studyleave.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

var twoSheetRoster = map[string][][]string{
	"2566": {
		{"บัญชีรายชื่อข้าราชการลาศึกษาต่อ ปีงบประมาณ 2566"},
		rosterHeader,
		{"1", "1100000000001", "นางสาวสมหญิง ใจดี", "พยาบาลวิชาชีพ รพ.สต.บ้านใหม่ สสจ.เชียงใหม่", "พยาบาลศาสตร์", "2", "1/6/2566", "31/5/2568", "ชม 0032/1", "", ""},
		{"2", "1100000000002", "นายสมชาย ใจงาม", "นายแพทย์ โรงพยาบาลลำพูน", "อายุรศาสตร์", "3", "1 ก.ค. 2566", "30 มิ.ย. 2569", "ชม 0032/2", "", ""},
		{"3", "", "", "", "", "", "", "", "", "", ""},
	},
	"2567": {
		{"cid", "ชื่อ-สกุล", "ชื่อตำแหน่ง", "โรงพยาบาล", "สำนักงาน", "ตั้งแต่", "ถึง", "เลขที่คำสั่ง"},
		{"1100000000001", "นางสาวสมหญิง ใจดี", "พยาบาลวิชาชีพ", "รพ.สต.บ้านใหม่", "สสจ.เชียงใหม่", "01/06/2566", "31/05/2568", "ชม 0032/1"},
		{"1100000000003", "นางสมศรี มีสุข", "เภสัชกร", "รพ.ลำพูน", "", "2567-10-01", "2568-09-30", "ชม 0040/1"},
	},
	"หมายเหตุ": {
		{"ข้อมูล ณ วันที่ 1 ตุลาคม 2567"},
	},
}

func TestImport_IdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"2566", "2567", "หมายเหตุ"}, twoSheetRoster)
	st := newSQLiteStore(t)
	c := NewCoordinator(st, DefaultOptions())
	ctx := context.Background()

	first, err := c.Import(ctx, ImportOptions{FilePath: path, OriginalFilename: "roster.xlsx"})
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if first.Inserted != 3 || first.DuplicateCount != 1 {
		t.Fatalf("first = %+v", first.Diagnostics)
	}
	if first.ImportLogID == 0 {
		t.Fatalf("import log not written")
	}
	used := 0
	for _, s := range first.Sheets {
		if s.Used {
			used++
		}
	}
	if used != 2 || len(first.Sheets) != 3 {
		t.Fatalf("sheets = %+v", first.Sheets)
	}

	second, err := c.Import(ctx, ImportOptions{FilePath: path})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if second.Inserted != 0 || second.DuplicateCount != first.Inserted+first.DuplicateCount {
		t.Fatalf("second = %+v", second.Diagnostics)
	}
	for _, d := range second.Duplicates {
		if d.Source != SourceExisting {
			t.Fatalf("expected existing duplicates only, got %+v", d)
		}
	}

	leaves, err := st.ListLeaves(ctx)
	if err != nil {
		t.Fatalf("list leaves: %v", err)
	}
	if len(leaves) != 3 {
		t.Fatalf("leaves = %d", len(leaves))
	}

	logs, err := st.ListImportLogs(ctx, 10)
	if err != nil || len(logs) != 2 {
		t.Fatalf("logs = %v, %v", logs, err)
	}
	sheets, err := st.ListImportSheets(ctx, first.ImportLogID)
	if err != nil || len(sheets) != 3 {
		t.Fatalf("import sheets = %v, %v", sheets, err)
	}
}

func TestImport_MissingColumns(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"a", "b"}, map[string][][]string{
		"a": {{"ชื่อ-สกุล", "ตำแหน่ง"}, {"ก", "นายแพทย์"}},
		"b": {{"ชื่อ-สกุล", "ตำแหน่ง", "ตั้งแต่", "ถึง"}, {"ก", "นายแพทย์", "1/6/2566", "31/5/2567"}},
	})
	st := newSQLiteStore(t)

	_, err := NewCoordinator(st, Options{}).Import(context.Background(), ImportOptions{FilePath: path})
	var mc *MissingColumnsError
	if !errors.As(err, &mc) {
		t.Fatalf("err = %v, want MissingColumnsError", err)
	}
	if mc.Sheet != "b" || !reflect.DeepEqual(mc.Missing, []string{parser.FieldCID}) {
		t.Fatalf("missing = %+v", mc)
	}
	if !reflect.DeepEqual(mc.Expected, parser.ExpectedHeaders) {
		t.Fatalf("expected headers = %v", mc.Expected)
	}

	leaves, _ := st.ListLeaves(context.Background())
	if len(leaves) != 0 {
		t.Fatalf("nothing should be stored, got %d", len(leaves))
	}
}

func TestImport_DataStartNotFound(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"only"}, map[string][][]string{
		"only": {rosterHeader},
	})
	_, err := NewCoordinator(newSQLiteStore(t), Options{}).Import(context.Background(), ImportOptions{FilePath: path})
	var ds *DataStartNotFoundError
	if !errors.As(err, &ds) || ds.Sheet != "only" {
		t.Fatalf("err = %v, want DataStartNotFoundError", err)
	}
}

func TestImport_EmptyWorkbook(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"Sheet1"}, nil)
	_, err := NewCoordinator(newSQLiteStore(t), Options{}).Import(context.Background(), ImportOptions{FilePath: path})
	if !errors.Is(err, ErrEmptyWorkbook) {
		t.Fatalf("err = %v, want ErrEmptyWorkbook", err)
	}
}

func TestImport_ArchiveError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fake.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewCoordinator(newSQLiteStore(t), Options{}).Import(context.Background(), ImportOptions{FilePath: path})
	var ae *ArchiveError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want ArchiveError", err)
	}
}

// fakeStore records calls and fails on demand.
type fakeStore struct {
	keys       []model.DedupKey
	inserted   []model.LeaveDraft
	logs       []model.ImportLog
	failInsert bool
	failLog    bool
}

func (f *fakeStore) ListDedupKeys(context.Context) ([]model.DedupKey, error) {
	return f.keys, nil
}

func (f *fakeStore) InsertLeaves(_ context.Context, drafts []model.LeaveDraft) error {
	if f.failInsert {
		return errors.New("disk full")
	}
	f.inserted = append(f.inserted, drafts...)
	return nil
}

func (f *fakeStore) CreateImportLog(_ context.Context, entry *model.ImportLog) error {
	if f.failLog {
		return errors.New("log table locked")
	}
	entry.ID = int64(len(f.logs) + 1)
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeStore) InsertImportSheets(context.Context, int64, []model.ImportSheet) error {
	return nil
}

func TestImport_CommitFailureReportsDatabaseError(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"2566"}, twoSheetRoster)
	fs := &fakeStore{failInsert: true}

	result, err := NewCoordinator(fs, Options{}).Import(context.Background(), ImportOptions{FilePath: path})
	var dbErr *DatabaseError
	if !errors.As(err, &dbErr) {
		t.Fatalf("err = %v, want DatabaseError", err)
	}
	if result != nil {
		t.Fatalf("diagnostics must be discarded on commit failure, got %+v", result)
	}
	if len(fs.logs) != 0 {
		t.Fatalf("no import log expected, got %d", len(fs.logs))
	}
}

func TestImport_AtomicOnRealStore(t *testing.T) {
	t.Parallel()

	// the last draft fails the program_years check after earlier rows were written
	path := writeWorkbook(t, []string{"2566"}, twoSheetRoster)
	st := newSQLiteStore(t)
	c := NewCoordinator(corruptingStore{st}, Options{})

	if _, err := c.Import(context.Background(), ImportOptions{FilePath: path}); err == nil {
		t.Fatalf("expected commit failure")
	}
	leaves, err := st.ListLeaves(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(leaves) != 0 {
		t.Fatalf("partial commit: %d rows", len(leaves))
	}
}

type corruptingStore struct {
	*store.Store
}

func (c corruptingStore) InsertLeaves(ctx context.Context, drafts []model.LeaveDraft) error {
	bad := append([]model.LeaveDraft(nil), drafts...)
	bad[len(bad)-1].ProgramYears = 0
	return c.Store.InsertLeaves(ctx, bad)
}

func TestImport_ImportLogIsBestEffort(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"2566"}, twoSheetRoster)
	fs := &fakeStore{failLog: true}

	result, err := NewCoordinator(fs, Options{}).Import(context.Background(), ImportOptions{FilePath: path})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Inserted != 2 || len(fs.inserted) != 2 || result.ImportLogID != 0 {
		t.Fatalf("result = %+v inserted = %d", result.Diagnostics, len(fs.inserted))
	}
}

func TestImportStream_EndsWithDone(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"2566"}, twoSheetRoster)
	fs := &fakeStore{}

	var types []string
	var last ProgressEvent
	for evt := range NewCoordinator(fs, Options{}).ImportStream(context.Background(), ImportOptions{FilePath: path}) {
		types = append(types, evt.Type)
		last = evt
	}
	if len(types) < 2 || types[0] != "start" || last.Type != "done" {
		t.Fatalf("events = %v", types)
	}
	result, ok := last.Data.(*Result)
	if !ok || result.Inserted != 2 {
		t.Fatalf("done data = %#v", last.Data)
	}
}

func TestImportStream_EndsWithError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.xlsx")
	var last ProgressEvent
	for evt := range NewCoordinator(&fakeStore{}, Options{}).ImportStream(context.Background(), ImportOptions{FilePath: path}) {
		last = evt
	}
	var ae *ArchiveError
	if last.Type != "error" || !errors.As(last.Err, &ae) {
		t.Fatalf("last = %+v", last)
	}
}

func TestImport_DryRunCommitsNothing(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"2566", "2567", "หมายเหตุ"}, twoSheetRoster)
	st := newSQLiteStore(t)
	ctx := context.Background()

	res, err := NewCoordinator(st, DefaultOptions()).Import(ctx, ImportOptions{FilePath: path, DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if res.Inserted != 3 || res.DuplicateCount != 1 || res.ImportLogID != 0 {
		t.Fatalf("dry run = %+v", res)
	}

	leaves, _ := st.ListLeaves(ctx)
	logs, _ := st.ListImportLogs(ctx, 0)
	if len(leaves) != 0 || len(logs) != 0 {
		t.Fatalf("dry run wrote %d leaves and %d logs", len(leaves), len(logs))
	}
}

func TestInspect_ReportsEverySheet(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"2566", "2567", "หมายเหตุ"}, twoSheetRoster)
	reports, err := NewCoordinator(nil, Options{}).Inspect(context.Background(), path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("reports = %+v", reports)
	}
	if !reports[0].Used || reports[0].DataStart != 3 {
		t.Fatalf("2566 = %+v", reports[0])
	}
	if !reports[1].Used || reports[1].DataStart != 2 {
		t.Fatalf("2567 = %+v", reports[1])
	}
	if reports[2].Used || len(reports[2].Missing) == 0 {
		t.Fatalf("notes sheet = %+v", reports[2])
	}
}

func TestInspect_KeepsReportsOnFailure(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, []string{"a"}, map[string][][]string{
		"a": {{"ชื่อ-สกุล", "ตำแหน่ง"}, {"ก", "นายแพทย์"}},
	})
	reports, err := NewCoordinator(nil, Options{}).Inspect(context.Background(), path)
	var mc *MissingColumnsError
	if !errors.As(err, &mc) {
		t.Fatalf("err = %v, want MissingColumnsError", err)
	}
	if len(reports) != 1 || reports[0].Name != "a" || reports[0].Rows != 2 {
		t.Fatalf("reports = %+v", reports)
	}
}
