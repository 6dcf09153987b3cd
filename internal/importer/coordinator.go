package importer

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/suphotsudsee/study-leave-web/internal/model"
	"github.com/suphotsudsee/study-leave-web/internal/parser"
	"github.com/suphotsudsee/study-leave-web/internal/store"
	"github.com/suphotsudsee/study-leave-web/internal/xlsx"
)

// LeaveStore is the persistence side of an import.
type LeaveStore interface {
	ListDedupKeys(ctx context.Context) ([]model.DedupKey, error)
	InsertLeaves(ctx context.Context, drafts []model.LeaveDraft) error
	CreateImportLog(ctx context.Context, entry *model.ImportLog) error
	InsertImportSheets(ctx context.Context, importLogID int64, sheets []model.ImportSheet) error
}

// Coordinator runs spreadsheet imports against a LeaveStore.
type Coordinator struct {
	store LeaveStore
	opts  Options
}

// NewCoordinator creates a coordinator; zero option fields take their defaults.
func NewCoordinator(store LeaveStore, opts Options) *Coordinator {
	return &Coordinator{
		store: store,
		opts:  opts.withDefaults(),
	}
}

// ImportOptions describes one uploaded file.
type ImportOptions struct {
	FilePath         string
	OriginalFilename string // shown in the import log, defaults to the base name of FilePath
	StoredPath       string // defaults to FilePath
	DryRun           bool   // reconcile against the store but commit nothing
}

// SheetReport is the header resolution outcome for one worksheet.
type SheetReport struct {
	Name      string           `json:"name"`
	Rows      int              `json:"rows"`
	Headers   parser.HeaderMap `json:"headers"`
	Missing   []string         `json:"missing"`
	DataStart int              `json:"data_start"` // 1-based, 0 when not found
	Used      bool             `json:"used"`
	Error     string           `json:"error,omitempty"`
}

// Result is a committed import.
type Result struct {
	Diagnostics
	Filename    string        `json:"filename"`
	ImportLogID int64         `json:"import_log_id,omitempty"`
	Sheets      []SheetReport `json:"sheets"`
	Duration    string        `json:"duration"`
}

// ProgressEvent is one step of a streamed import.
type ProgressEvent struct {
	Type      string      `json:"type"` // start/sheet/commit/done/error
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Err       error       `json:"-"`
}

type sheetRows struct {
	name  string
	rows  [][]string
	hm    parser.HeaderMap
	start int
}

// Import reads the workbook at opts.FilePath, reconciles every qualifying
// worksheet and commits the accepted drafts in one transaction.
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) (*Result, error) {
	return c.run(ctx, opts, nil)
}

// ImportStream runs Import in a goroutine and reports progress on the
// returned channel. The last event is either "done" or "error"; the channel is
// closed afterwards.
func (c *Coordinator) ImportStream(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		result, err := c.run(ctx, opts, progressChan)
		final := ProgressEvent{Type: "done", Message: "import finished", Data: result, Timestamp: time.Now()}
		if err != nil {
			final = ProgressEvent{Type: "error", Message: err.Error(), Err: err, Timestamp: time.Now()}
		}
		// terminal events are never dropped
		select {
		case progressChan <- final:
		case <-ctx.Done():
		}
	}()

	return progressChan
}

func (c *Coordinator) run(ctx context.Context, opts ImportOptions, progressChan chan ProgressEvent) (*Result, error) {
	startTime := time.Now()
	filename := opts.OriginalFilename
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "start",
		Message:   "reading workbook",
		Data:      map[string]string{"filename": filename},
		Timestamp: time.Now(),
	})

	sheets, reports, err := c.loadSheets(ctx, opts.FilePath, progressChan)
	if err != nil {
		return nil, err
	}

	existing, err := c.store.ListDedupKeys(ctx)
	if err != nil {
		return nil, &DatabaseError{Op: "load existing keys", Err: err}
	}

	rec := NewReconciler(existing, c.opts)
	for _, s := range sheets {
		rec.AddSheet(s.name, s.rows, s.hm, s.start)
	}
	drafts := rec.Drafts()

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "commit",
		Message:   fmt.Sprintf("committing %d records", len(drafts)),
		Data:      map[string]int{"records": len(drafts)},
		Timestamp: time.Now(),
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.DryRun {
		return &Result{
			Diagnostics: rec.Diagnostics(),
			Filename:    filename,
			Sheets:      reports,
			Duration:    time.Since(startTime).Round(time.Millisecond).String(),
		}, nil
	}
	if err := c.store.InsertLeaves(ctx, drafts); err != nil {
		return nil, &DatabaseError{Op: "insert leaves", Err: err}
	}

	result := &Result{
		Diagnostics: rec.Diagnostics(),
		Filename:    filename,
		Sheets:      reports,
		Duration:    time.Since(startTime).Round(time.Millisecond).String(),
	}

	stored := opts.StoredPath
	if stored == "" {
		stored = opts.FilePath
	}
	entry := &model.ImportLog{
		OriginalName:   filename,
		StoredPath:     stored,
		Inserted:       result.Inserted,
		Skipped:        result.Skipped,
		DuplicateCount: result.DuplicateCount,
	}
	if err := c.store.CreateImportLog(ctx, entry); err != nil {
		log.Printf("[import] failed to write import log for %s: %v", filename, err)
	} else {
		result.ImportLogID = entry.ID
		if err := c.store.InsertImportSheets(ctx, entry.ID, sheetRecords(reports)); err != nil {
			log.Printf("[import] failed to record sheets for %s: %v", filename, err)
		}
	}

	log.Printf("[import] %s: inserted=%d skipped=%d duplicates=%d (%s)",
		filename, result.Inserted, result.Skipped, result.DuplicateCount, result.Duration)
	return result, nil
}

// Inspect reports how each worksheet of path would be read without touching
// the store. The reports are returned alongside the error the import would fail with.
func (c *Coordinator) Inspect(ctx context.Context, path string) ([]SheetReport, error) {
	_, reports, err := c.loadSheets(ctx, path, nil)
	return reports, err
}

// loadSheets decodes every worksheet and keeps the ones that can be reconciled.
func (c *Coordinator) loadSheets(ctx context.Context, path string, progressChan chan ProgressEvent) ([]sheetRows, []SheetReport, error) {
	archive, err := xlsx.Open(path)
	if err != nil {
		return nil, nil, &ArchiveError{Path: path, Err: err}
	}
	defer archive.Close()

	var (
		qualifying []sheetRows
		reports    []SheetReport
		anyRows    bool
		best       SheetReport
		haveBest   bool
		noDataIn   string
	)

	for _, sheet := range archive.Sheets() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		report := SheetReport{Name: sheet.Name, Missing: []string{}}
		rows, err := archive.Rows(sheet)
		if err != nil {
			log.Printf("[import] skipping sheet %s: %v", sheet.Name, err)
			report.Error = err.Error()
			reports = append(reports, report)
			continue
		}
		report.Rows = len(rows)
		if len(rows) == 0 {
			reports = append(reports, report)
			continue
		}
		anyRows = true

		hm := parser.Resolve(rows, c.opts.HeaderScanRows)
		report.Headers = hm
		report.Missing = hm.Missing()
		if len(report.Missing) == 0 {
			if start, ok := parser.FindDataStart(rows, hm, c.opts.DataStartScanRows); ok {
				report.DataStart = start + 1
				report.Used = true
				qualifying = append(qualifying, sheetRows{name: sheet.Name, rows: rows, hm: hm, start: start})
			} else if noDataIn == "" {
				noDataIn = sheet.Name
			}
		}
		reports = append(reports, report)
		if !haveBest || len(report.Missing) < len(best.Missing) {
			best, haveBest = report, true
		}

		c.sendProgress(progressChan, ProgressEvent{
			Type:      "sheet",
			Message:   fmt.Sprintf("sheet %s: %d rows", sheet.Name, len(rows)),
			Data:      report,
			Timestamp: time.Now(),
		})
	}

	if !anyRows {
		return nil, reports, ErrEmptyWorkbook
	}
	if len(qualifying) == 0 {
		if noDataIn != "" {
			return nil, reports, &DataStartNotFoundError{Sheet: noDataIn}
		}
		return nil, reports, &MissingColumnsError{
			Sheet:    best.Name,
			Missing:  best.Missing,
			Expected: parser.ExpectedHeaders,
		}
	}
	return qualifying, reports, nil
}

func sheetRecords(reports []SheetReport) []model.ImportSheet {
	out := make([]model.ImportSheet, 0, len(reports))
	for _, r := range reports {
		headers := r.Headers
		if headers == nil {
			headers = parser.HeaderMap{}
		}
		out = append(out, model.ImportSheet{
			SheetName:    r.Name,
			TotalRows:    r.Rows,
			DataStart:    r.DataStart,
			Used:         r.Used,
			MissingJSON:  store.BuildJSON(r.Missing),
			HeadersJSON:  store.BuildJSON(headers),
			ErrorMessage: r.Error,
		})
	}
	return out
}

// sendProgress drops the event when nobody is keeping up with the channel.
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- event:
	default:
	}
}
