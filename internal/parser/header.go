package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Canonical field names.
const (
	FieldCID              = "cid"
	FieldFullName         = "full_name"
	FieldPositionLevel    = "position_level"
	FieldPositionTitle    = "position_title"
	FieldPositionHospital = "position_hospital"
	FieldPositionOffice   = "position_office"
	FieldPositionNo       = "position_no"
	FieldWorkplace        = "workplace"
	FieldProgram          = "program"
	FieldProgramYears     = "program_years"
	FieldInstitute        = "institute"
	FieldStartDate        = "start_date"
	FieldEndDate          = "end_date"
	FieldNote             = "note"
	FieldOrderNo          = "order_no"
	FieldApprovalYear     = "approval_year"
)

const (
	// DefaultHeaderScanRows is how many leading rows are searched for header labels.
	DefaultHeaderScanRows = 30
	// DefaultDataStartScanRows is how many leading rows are searched for the first record.
	DefaultDataStartScanRows = 40
)

// RequiredFields must all be mapped for a worksheet to be importable.
// position_level is also satisfied by a position_title column.
var RequiredFields = []string{
	FieldCID,
	FieldFullName,
	FieldPositionLevel,
	FieldStartDate,
	FieldEndDate,
}

// ExpectedHeaders is the header row users are asked to provide when columns are missing.
var ExpectedHeaders = []string{
	"cid",
	"ชื่อ-สกุล",
	"ตำแหน่ง/ส่วนราชการตาม จ.18",
	"ตำแหน่งเลขที่",
	"สถานที่ปฏิบัติงานจริง",
	"หลักสูตร",
	"หลักสูตร(ปี)",
	"สถานที่ศึกษา",
	"ตั้งแต่ (ว.ด.ป.)",
	"ถึง (ว.ด.ป.)",
	"หมายเหตุ",
	"เลขที่คำสั่ง",
}

// NormalizeHeader reduces header text to a matching key: whitespace and
// punctuation removed, letters, numbers and combining marks kept, casefolded.
func NormalizeHeader(text string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	return cases.Fold().String(b.String())
}

// LookupField returns the canonical field registered for a header label.
func LookupField(label string) (string, bool) {
	key := NormalizeHeader(label)
	if key == "" {
		return "", false
	}
	f, ok := synonyms[key]
	return f, ok
}

// HeaderMap maps canonical field names to zero-based column indexes.
type HeaderMap map[string]int

// Has reports whether the field was found in the header rows.
func (m HeaderMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// Cell returns the trimmed cell for field. ok is false when the field is not
// mapped or the row is shorter than the mapped column.
func (m HeaderMap) Cell(row []string, field string) (string, bool) {
	idx, ok := m[field]
	if !ok || idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

// Value is Cell without the presence flag.
func (m HeaderMap) Value(row []string, field string) string {
	v, _ := m.Cell(row, field)
	return v
}

// Missing lists required fields that are not mapped, in RequiredFields order.
func (m HeaderMap) Missing() []string {
	missing := []string{}
	for _, f := range RequiredFields {
		if f == FieldPositionLevel && (m.Has(FieldPositionLevel) || m.Has(FieldPositionTitle)) {
			continue
		}
		if !m.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Resolve scans up to maxScanRows rows and maps every recognised header cell.
// The first column seen for a field wins.
func Resolve(rows [][]string, maxScanRows int) HeaderMap {
	m := HeaderMap{}
	for i := 0; i < len(rows) && i < maxScanRows; i++ {
		for col, cell := range rows[i] {
			field, ok := LookupField(cell)
			if !ok || m.Has(field) {
				continue
			}
			m[field] = col
		}
	}
	return m
}

// FindDataStart returns the first row within limit whose name and position
// cells are both filled. Rows whose name cell is itself a header label are
// treated as header rows.
func FindDataStart(rows [][]string, m HeaderMap, limit int) (int, bool) {
	for i := 0; i < len(rows) && i < limit; i++ {
		name := m.Value(rows[i], FieldFullName)
		if name == "" {
			continue
		}
		if _, isHeader := LookupField(name); isHeader {
			continue
		}
		if m.Value(rows[i], FieldPositionLevel) != "" || m.Value(rows[i], FieldPositionTitle) != "" {
			return i, true
		}
	}
	return -1, false
}
