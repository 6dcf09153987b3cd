package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/suphotsudsee/study-leave-web/internal/model"
	"github.com/suphotsudsee/study-leave-web/internal/parser"
	"github.com/suphotsudsee/study-leave-web/internal/report"
)

// Sheet names.
const (
	LeavesSheet   = "study_leaves"
	TemplateSheet = "template"
)

// exportColumns use labels the importer recognises, so an export can be
// edited and uploaded again.
var exportColumns = []struct {
	header string
	width  float64
	value  func(v report.LeaveView) interface{}
}{
	{"ลำดับ", 7, nil},
	{"cid", 16, func(v report.LeaveView) interface{} { return v.CID }},
	{"ชื่อ-สกุล", 28, func(v report.LeaveView) interface{} { return v.FullName }},
	{"ตำแหน่ง/ส่วนราชการตาม จ.18", 40, func(v report.LeaveView) interface{} { return v.PositionLevel }},
	{"ชื่อตำแหน่ง", 24, func(v report.LeaveView) interface{} { return v.PositionTitle }},
	{"หน่วยบริการ", 24, func(v report.LeaveView) interface{} { return v.PositionHospital }},
	{"สังกัด", 24, func(v report.LeaveView) interface{} { return v.PositionOffice }},
	{"ตำแหน่งเลขที่", 12, func(v report.LeaveView) interface{} { return v.PositionNo }},
	{"สถานที่ปฏิบัติงานจริง", 24, func(v report.LeaveView) interface{} { return v.Workplace }},
	{"หลักสูตร", 24, func(v report.LeaveView) interface{} { return v.Program }},
	{"หลักสูตร(ปี)", 10, func(v report.LeaveView) interface{} { return v.ProgramYears }},
	{"สถานที่ศึกษา", 24, func(v report.LeaveView) interface{} { return v.Institute }},
	{"ตั้งแต่ (ว.ด.ป.)", 14, func(v report.LeaveView) interface{} { return v.StartDate }},
	{"ถึง (ว.ด.ป.)", 14, func(v report.LeaveView) interface{} { return v.EndDate }},
	{"หมายเหตุ", 20, func(v report.LeaveView) interface{} {
		if v.Note == nil {
			return ""
		}
		return *v.Note
	}},
	{"เลขที่คำสั่ง", 16, func(v report.LeaveView) interface{} { return v.OrderNo }},
	{"สถานะ", 12, func(v report.LeaveView) interface{} { return string(v.Status) }},
}

// LeaveSource lists the leaves to export.
type LeaveSource interface {
	ListLeaves(ctx context.Context) ([]model.LeaveRecord, error)
}

// Exporter writes stored leaves to a workbook.
type Exporter struct {
	store LeaveSource
}

// NewExporter creates an exporter.
func NewExporter(store LeaveSource) *Exporter {
	return &Exporter{store: store}
}

// ExportOptions filters and reports an export.
type ExportOptions struct {
	Status   string    // all/active/pending/completed
	Today    time.Time // defaults to now
	Progress func(ProgressEvent)
}

// Export builds a workbook with one row per leave. The caller closes the file.
func (e *Exporter) Export(ctx context.Context, opts ExportOptions) (*excelize.File, error) {
	if opts.Today.IsZero() {
		opts.Today = time.Now()
	}
	reportProgress(opts.Progress, 0, "loading")

	leaves, err := e.store.ListLeaves(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leaves: %w", err)
	}
	views := report.Views(leaves, report.ParseFilter(opts.Status), opts.Today)
	reportProgress(opts.Progress, 30, "writing")

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", LeavesSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeHeader(f, LeavesSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, v := range views {
		row := make([]interface{}, len(exportColumns))
		row[0] = i + 1
		for c, col := range exportColumns {
			if col.value != nil {
				row[c] = col.value(v)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(LeavesSheet, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
		if len(views) > 0 && i%200 == 0 {
			reportProgress(opts.Progress, 30+70*i/len(views), "writing")
		}
	}

	reportProgress(opts.Progress, 100, "done")
	f.SetActiveSheet(0)
	return f, nil
}

// NewTemplate returns a blank import workbook holding the expected headers.
func NewTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	headers := make([]interface{}, len(parser.ExpectedHeaders))
	for i, h := range parser.ExpectedHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &headers); err != nil {
		_ = f.Close()
		return nil, err
	}
	style, err := headerStyle(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(TemplateSheet, "A1", last, style); err != nil {
		_ = f.Close()
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(TemplateSheet, "A", lastCol, 20); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeHeader(f *excelize.File, sheet string) error {
	headers := make([]interface{}, len(exportColumns))
	for i, col := range exportColumns {
		headers[i] = col.header
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, col.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
}
