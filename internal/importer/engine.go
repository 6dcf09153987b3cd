package importer

import (
	"github.com/suphotsudsee/study-leave-web/internal/model"
	"github.com/suphotsudsee/study-leave-web/internal/parser"
)

// Skip reasons.
const (
	ReasonMissingIdentity = "missing cid and full_name"
	ReasonInvalidDates    = "invalid start/end date"
	ReasonDuplicate       = "duplicate"
)

// Duplicate sources: which key set matched first.
const (
	SourceExisting = "existing"
	SourceFile     = "file"
)

// Options bounds header scanning and diagnostic list sizes.
type Options struct {
	HeaderScanRows       int
	DataStartScanRows    int
	MaxSkippedRows       int
	MaxDuplicateExamples int
}

// DefaultOptions returns the limits used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		HeaderScanRows:       parser.DefaultHeaderScanRows,
		DataStartScanRows:    parser.DefaultDataStartScanRows,
		MaxSkippedRows:       200,
		MaxDuplicateExamples: 20,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HeaderScanRows <= 0 {
		o.HeaderScanRows = d.HeaderScanRows
	}
	if o.DataStartScanRows <= 0 {
		o.DataStartScanRows = d.DataStartScanRows
	}
	if o.MaxSkippedRows <= 0 {
		o.MaxSkippedRows = d.MaxSkippedRows
	}
	if o.MaxDuplicateExamples <= 0 {
		o.MaxDuplicateExamples = d.MaxDuplicateExamples
	}
	return o
}

// SkippedRow explains why a row was not imported.
type SkippedRow struct {
	Row          int    `json:"row"`
	Sheet        string `json:"sheet,omitempty"`
	Reason       string `json:"reason"`
	CID          string `json:"cid,omitempty"`
	FullName     string `json:"full_name,omitempty"`
	OrderNo      string `json:"order_no,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	ApprovalYear string `json:"approval_year,omitempty"`
	Source       string `json:"source,omitempty"`
}

// DuplicateRow is a row whose dedup key was already present.
type DuplicateRow struct {
	Row       int    `json:"row"`
	Sheet     string `json:"sheet,omitempty"`
	CID       string `json:"cid"`
	FullName  string `json:"full_name"`
	OrderNo   string `json:"order_no"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Source    string `json:"source"`
}

// Diagnostics summarises one import. The lists are capped; the counters are not.
type Diagnostics struct {
	Inserted       int            `json:"inserted"`
	Skipped        int            `json:"skipped"`
	DuplicateCount int            `json:"duplicate_count"`
	Duplicates     []DuplicateRow `json:"duplicates"`
	SkippedRows    []SkippedRow   `json:"skipped_rows"`
}

type keySet map[model.DedupKey]struct{}

// Reconciler turns decoded rows into drafts for one import. Worksheets added
// to the same Reconciler share the in-batch duplicate check.
type Reconciler struct {
	opts     Options
	existing keySet
	seen     keySet
	drafts   []model.LeaveDraft
	diag     Diagnostics
}

// NewReconciler snapshots the keys of records that already exist.
func NewReconciler(existing []model.DedupKey, opts Options) *Reconciler {
	set := make(keySet, len(existing))
	for _, k := range existing {
		set[k.Normalize()] = struct{}{}
	}
	return &Reconciler{
		opts:     opts.withDefaults(),
		existing: set,
		seen:     keySet{},
		drafts:   []model.LeaveDraft{},
		diag: Diagnostics{
			Duplicates:  []DuplicateRow{},
			SkippedRows: []SkippedRow{},
		},
	}
}

// Reconcile processes a single worksheet against existing keys.
func Reconcile(rows [][]string, m parser.HeaderMap, dataStart int, existing []model.DedupKey) ([]model.LeaveDraft, Diagnostics) {
	r := NewReconciler(existing, DefaultOptions())
	r.AddSheet("", rows, m, dataStart)
	return r.Drafts(), r.Diagnostics()
}

// AddSheet reconciles rows[dataStart:]. Row numbers in diagnostics are 1-based
// positions in rows.
func (r *Reconciler) AddSheet(sheet string, rows [][]string, m parser.HeaderMap, dataStart int) {
	if dataStart < 0 {
		dataStart = 0
	}
	for i := dataStart; i < len(rows); i++ {
		r.reconcileRow(sheet, i+1, rows[i], m)
	}
}

// Drafts returns the accepted records in row order.
func (r *Reconciler) Drafts() []model.LeaveDraft {
	return r.drafts
}

// Diagnostics returns the counters and capped lists gathered so far.
func (r *Reconciler) Diagnostics() Diagnostics {
	return r.diag
}

func (r *Reconciler) reconcileRow(sheet string, rowNum int, row []string, m parser.HeaderMap) {
	cid := m.Value(row, parser.FieldCID)
	fullName := m.Value(row, parser.FieldFullName)
	if cid == "" && fullName == "" {
		r.skip(SkippedRow{Row: rowNum, Sheet: sheet, Reason: ReasonMissingIdentity})
		return
	}

	startRaw := m.Value(row, parser.FieldStartDate)
	endRaw := m.Value(row, parser.FieldEndDate)
	approvalRaw := m.Value(row, parser.FieldApprovalYear)
	startDate, startOK := parser.ParseDate(startRaw)
	endDate, endOK := parser.ParseDate(endRaw)

	if parser.LooksLikeDate(approvalRaw) {
		if approval, ok := parser.ParseDate(approvalRaw); ok {
			// ISO strings compare in calendar order
			if !endOK || (startOK && endDate <= startDate && approval >= startDate) {
				endDate, endOK = approval, true
			}
		}
	}
	if !startOK || !endOK {
		r.skip(SkippedRow{
			Row:          rowNum,
			Sheet:        sheet,
			Reason:       ReasonInvalidDates,
			CID:          cid,
			FullName:     fullName,
			StartDate:    startRaw,
			EndDate:      endRaw,
			ApprovalYear: approvalRaw,
		})
		return
	}

	pos, levelRaw := resolvePosition(row, m)
	level := pos.Join()
	if level == "" {
		level = levelRaw
	}

	draft := model.LeaveDraft{
		CID:              cid,
		FullName:         fullName,
		PositionLevel:    level,
		PositionTitle:    pos.Title,
		PositionHospital: pos.Hospital,
		PositionOffice:   pos.Office,
		PositionNo:       m.Value(row, parser.FieldPositionNo),
		Workplace:        m.Value(row, parser.FieldWorkplace),
		Program:          m.Value(row, parser.FieldProgram),
		ProgramYears:     parser.ParseProgramYears(m.Value(row, parser.FieldProgramYears)),
		Institute:        m.Value(row, parser.FieldInstitute),
		StartDate:        startDate,
		EndDate:          endDate,
		OrderNo:          m.Value(row, parser.FieldOrderNo),
	}
	if note := m.Value(row, parser.FieldNote); note != "" {
		draft.Note = &note
	}

	key := draft.Key()
	source := ""
	if _, ok := r.existing[key]; ok {
		source = SourceExisting
	} else if _, ok := r.seen[key]; ok {
		source = SourceFile
	}
	if source != "" {
		r.duplicate(sheet, rowNum, draft, source)
		return
	}

	r.seen[key] = struct{}{}
	r.drafts = append(r.drafts, draft)
	r.diag.Inserted++
}

// resolvePosition prefers separate title/hospital/office columns and falls
// back to splitting the combined position text.
func resolvePosition(row []string, m parser.HeaderMap) (parser.Position, string) {
	levelRaw := m.Value(row, parser.FieldPositionLevel)
	if m.Has(parser.FieldPositionTitle) {
		pos := parser.Position{
			Title:    parser.CollapseSpaces(m.Value(row, parser.FieldPositionTitle)),
			Hospital: parser.CollapseSpaces(m.Value(row, parser.FieldPositionHospital)),
			Office:   parser.CollapseSpaces(m.Value(row, parser.FieldPositionOffice)),
		}
		if pos.Join() != "" || levelRaw == "" {
			return pos, levelRaw
		}
	}
	return parser.SplitPosition(levelRaw), levelRaw
}

func (r *Reconciler) skip(entry SkippedRow) {
	r.diag.Skipped++
	if len(r.diag.SkippedRows) < r.opts.MaxSkippedRows {
		r.diag.SkippedRows = append(r.diag.SkippedRows, entry)
	}
}

func (r *Reconciler) duplicate(sheet string, rowNum int, d model.LeaveDraft, source string) {
	r.diag.DuplicateCount++
	if len(r.diag.Duplicates) < r.opts.MaxDuplicateExamples {
		r.diag.Duplicates = append(r.diag.Duplicates, DuplicateRow{
			Row:       rowNum,
			Sheet:     sheet,
			CID:       d.CID,
			FullName:  d.FullName,
			OrderNo:   d.OrderNo,
			StartDate: d.StartDate,
			EndDate:   d.EndDate,
			Source:    source,
		})
	}
	r.skip(SkippedRow{
		Row:       rowNum,
		Sheet:     sheet,
		Reason:    ReasonDuplicate,
		CID:       d.CID,
		FullName:  d.FullName,
		OrderNo:   d.OrderNo,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Source:    source,
	})
}
