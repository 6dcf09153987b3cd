package parser

import (
	"reflect"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
	}{
		{" ชื่อ - สกุล ", "ชื่อ-สกุล"},
		{"Full_Name", "fullname"},
		{"หลักสูตร(ปี)", "หลักสูตร ปี"},
		{"ตำแหน่ง/ส่วนราชการ\nตาม จ.18", "ตำแหน่งส่วนราชการตามจ18"},
		{"ตั้งแต่ (ว.ด.ป.)", "ตั้งแต่วดป"},
	}
	for _, tt := range tests {
		if NormalizeHeader(tt.a) != NormalizeHeader(tt.b) {
			t.Fatalf("NormalizeHeader(%q)=%q differs from NormalizeHeader(%q)=%q",
				tt.a, NormalizeHeader(tt.a), tt.b, NormalizeHeader(tt.b))
		}
	}
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"", "  ", "CID", "ชื่อ-สกุล", "ตำแหน่ง/ส่วนราชการ ตาม ว.๑๘", "İstanbul", "Straße",
		"หลักสูตร (ปี)", "เริ่มต้น ว.ด้.ป.", "  Mixed Case_Header-42 ",
	}
	for _, in := range inputs {
		once := NormalizeHeader(in)
		if twice := NormalizeHeader(once); twice != once {
			t.Fatalf("not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestSynonymTable_FirstRegisteredWins(t *testing.T) {
	t.Parallel()

	got := buildSynonyms([]synonymGroup{
		{FieldNote, []string{"หมายเหตุ"}},
		{FieldProgram, []string{"หมาย เหตุ", "หลักสูตร"}},
	})
	if got[NormalizeHeader("หมายเหตุ")] != FieldNote {
		t.Fatalf("expected first registration to win, got %q", got[NormalizeHeader("หมายเหตุ")])
	}
	if got[NormalizeHeader("หลักสูตร")] != FieldProgram {
		t.Fatalf("expected program mapping")
	}
}

func TestResolve_FirstColumnWinsAndScanLimit(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"บัญชีรายชื่อผู้ลาศึกษาต่อ ปีงบประมาณ 2567"},
		{"ลำดับ", "cid", "ชื่อ-สกุล", "ชื่อ - สกุล", "ตำแหน่ง"},
		{"1", "3500100000001", "นางสาวทดสอบ ใจดี", "", "พยาบาลวิชาชีพ"},
	}
	m := Resolve(rows, DefaultHeaderScanRows)
	if m[FieldCID] != 1 || m[FieldFullName] != 2 || m[FieldPositionLevel] != 4 {
		t.Fatalf("unexpected map: %v", m)
	}

	var late [][]string
	for i := 0; i < 30; i++ {
		late = append(late, []string{"x"})
	}
	late = append(late, []string{"cid"})
	if m := Resolve(late, 30); m.Has(FieldCID) {
		t.Fatalf("header beyond scan limit must be ignored")
	}
	if m := Resolve(late, 31); !m.Has(FieldCID) {
		t.Fatalf("header within scan limit must be found")
	}
}

func TestResolve_PositionAcrossHeaderGenerations(t *testing.T) {
	t.Parallel()

	base := []string{"เลขประจำตัวประชาชน", "ชื่อ-สกุล", "ตั้งแต่ (ว.ด.ป.)", "ถึง (ว.ด.ป.)"}
	tests := []struct {
		name    string
		headers []string
		field   string
	}{
		{"early", []string{"ตำแหน่ง/ส่วนราชการ\nตาม จ.18"}, FieldPositionLevel},
		{"early thai digits", []string{"ตำแหน่ง/ส่วนราชการ ตาม ว.๑๘"}, FieldPositionLevel},
		{"mid", []string{"ตำแหน่ง/สังกัด"}, FieldPositionLevel},
		{"late", []string{"ชื่อตำแหน่ง", "โรงพยาบาล", "สังกัด"}, FieldPositionTitle},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			header := append(append([]string{}, base...), tt.headers...)
			m := Resolve([][]string{header}, DefaultHeaderScanRows)
			if !m.Has(tt.field) {
				t.Fatalf("expected %s mapped, got %v", tt.field, m)
			}
			if missing := m.Missing(); len(missing) != 0 {
				t.Fatalf("expected nothing missing, got %v", missing)
			}
		})
	}
}

func TestResolve_LateLayoutMapsHospitalAndOffice(t *testing.T) {
	t.Parallel()

	m := Resolve([][]string{{"cid", "ชื่อตำแหน่ง", "โรงพยาบาล", "สังกัด", "ปีที่อนุมัติ"}}, DefaultHeaderScanRows)
	want := HeaderMap{
		FieldCID:              0,
		FieldPositionTitle:    1,
		FieldPositionHospital: 2,
		FieldPositionOffice:   3,
		FieldApprovalYear:     4,
	}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestHeaderMap_Missing(t *testing.T) {
	t.Parallel()

	m := Resolve([][]string{{"ชื่อ-สกุล", "ตำแหน่ง", "ตั้งแต่", "ถึง"}}, DefaultHeaderScanRows)
	if got := m.Missing(); !reflect.DeepEqual(got, []string{FieldCID}) {
		t.Fatalf("unexpected missing: %v", got)
	}

	if got := (HeaderMap{}).Missing(); !reflect.DeepEqual(got, RequiredFields) {
		t.Fatalf("empty map should miss every required field, got %v", got)
	}
}

func TestHeaderMap_Cell(t *testing.T) {
	t.Parallel()

	m := HeaderMap{FieldCID: 0, FieldNote: 5}
	row := []string{"  123  ", "x"}
	if v, ok := m.Cell(row, FieldCID); !ok || v != "123" {
		t.Fatalf("unexpected cell: %q %v", v, ok)
	}
	if _, ok := m.Cell(row, FieldNote); ok {
		t.Fatalf("short row should report absent cell")
	}
	if _, ok := m.Cell(row, FieldOrderNo); ok {
		t.Fatalf("unmapped field should report absent cell")
	}
}

func TestFindDataStart(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"บัญชีรายชื่อข้าราชการลาศึกษาต่อ"},
		{"cid", "ชื่อ-สกุล", "ตำแหน่ง"},
		{"", "", "(ระบุตำแหน่ง)"},
		{"3500100000001", "นายทดสอบ ระบบ", "นายแพทย์ชำนาญการ"},
	}
	m := Resolve(rows, DefaultHeaderScanRows)

	start, ok := FindDataStart(rows, m, DefaultDataStartScanRows)
	if !ok || start != 3 {
		t.Fatalf("expected data start 3, got %d %v", start, ok)
	}

	if _, ok := FindDataStart(rows, m, 3); ok {
		t.Fatalf("data row beyond limit must not be found")
	}
}

func TestFindDataStart_PositionTitleColumn(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"cid", "ชื่อ-สกุล", "ชื่อตำแหน่ง"},
		{"1", "นางทดสอบ", "พยาบาลวิชาชีพ"},
	}
	m := Resolve(rows, DefaultHeaderScanRows)
	if start, ok := FindDataStart(rows, m, DefaultDataStartScanRows); !ok || start != 1 {
		t.Fatalf("expected data start 1, got %d %v", start, ok)
	}
}
