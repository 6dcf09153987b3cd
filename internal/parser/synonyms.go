package parser

// synonymGroup lists header labels, as they appear in rosters, for one field.
type synonymGroup struct {
	field  string
	labels []string
}

// synonymTable covers every roster layout seen so far: the early combined
// "ตำแหน่ง/ส่วนราชการ ตาม ว.18" column, the mid "ตำแหน่ง/สังกัด" column and the
// late layout with separate title, hospital and office columns.
// Labels are normalized at init; when two labels normalize to the same key
// the one registered first wins.
var synonymTable = []synonymGroup{
	{FieldCID, []string{
		"cid",
		"เลขประจำตัวประชาชน",
		"เลขประจำตัวประชาชน 13 หลัก",
		"เลขบัตรประชาชน",
		"เลขที่บัตรประชาชน",
		"รหัสประจำตัวประชาชน",
		"citizen id",
		"national id",
	}},
	{FieldFullName, []string{
		"full_name",
		"ชื่อสกุล",
		"ชื่อ-สกุล",
		"ชื่อ-นามสกุล",
		"ชื่อ - นามสกุล",
		"ชื่อผู้ลาศึกษา",
		"name",
	}},
	{FieldPositionLevel, []string{
		"position_level",
		// early
		"ตำแหน่ง/ส่วนราชการตาม ว.18",
		"ตำแหน่ง/ส่วนราชการตาม ว.๑๘",
		"ตำแหน่ง/ส่วนราชการตาม จ.18",
		"ตำแหน่ง/ส่วนราชการตาม จ.๑๘",
		"ตำแหน่ง/ส่วนราชการ",
		// mid
		"ตำแหน่ง/สังกัด",
		"ตำแหน่งและสังกัด",
		"ตำแหน่ง/ระดับ",
		"ตำแหน่งและระดับ",
		"ตำแหน่ง",
		"position",
	}},
	{FieldPositionTitle, []string{
		"position_title",
		"ชื่อตำแหน่ง",
		"ตำแหน่งในสายงาน",
		"ตำแหน่งสายงาน",
	}},
	{FieldPositionHospital, []string{
		"position_hospital",
		"โรงพยาบาล",
		"รพ./รพ.สต.",
		"หน่วยบริการ",
		"สถานบริการ",
		"hospital",
	}},
	{FieldPositionOffice, []string{
		"position_office",
		"สำนักงาน",
		"สังกัด",
		"สำนักงานสาธารณสุข",
		"office",
	}},
	{FieldPositionNo, []string{
		"position_no",
		"ตำแหน่งเลขที่",
		"เลขที่ตำแหน่ง",
	}},
	{FieldWorkplace, []string{
		"workplace",
		"สถานที่ปฏิบัติงานจริง",
		"สถานที่ปฏิบัติงาน",
		"ที่ปฏิบัติงาน",
	}},
	{FieldProgram, []string{
		"program",
		"หลักสูตร",
		"หลักสูตร/สาขา",
		"สาขาวิชา",
		"สาขา",
	}},
	{FieldProgramYears, []string{
		"program_years",
		"หลักสูตร(ปี)",
		"หลักสูตรปี",
		"ระยะเวลาหลักสูตร",
		"ระยะเวลา (ปี)",
		"ระยะเวลาศึกษา",
		"จำนวนปี",
	}},
	{FieldInstitute, []string{
		"institute",
		"สถานที่ศึกษา",
		"สถาบันการศึกษา",
		"สถาบันที่ศึกษา",
		"สถาบัน",
		"มหาวิทยาลัย",
	}},
	{FieldStartDate, []string{
		"start_date",
		"เริ่มต้นวด้ป",
		"เริ่มต้น (ว.ด.ป.)",
		"ตั้งแต่ (ว.ด.ป.)",
		"ตั้งแต่",
		"วันเริ่มต้น",
		"วันที่เริ่มต้น",
		"วันเริ่มลาศึกษา",
		"วันที่เริ่มลา",
	}},
	{FieldEndDate, []string{
		"end_date",
		"สิ้นสุดวด้ป",
		"สิ้นสุด (ว.ด.ป.)",
		"ถึง (ว.ด.ป.)",
		"ถึง",
		"วันสิ้นสุด",
		"วันที่สิ้นสุด",
		"วันสิ้นสุดการลา",
		"ครบกำหนดลาศึกษา",
	}},
	{FieldNote, []string{
		"note",
		"หมายเหตุ",
		"โควตา",
		"โควต้า",
	}},
	{FieldOrderNo, []string{
		"order_no",
		"เลขที่คำสั่ง",
		"คำสั่งเลขที่",
		"คำสั่งที่",
		"เลขคำสั่ง",
	}},
	{FieldApprovalYear, []string{
		"approval_year",
		"ปีที่อนุมัติ",
		"ปีอนุมัติ",
		"ปีงบประมาณที่อนุมัติ",
		"ปีที่จบ",
		"ปีที่สำเร็จการศึกษา",
	}},
}

var synonyms = buildSynonyms(synonymTable)

func buildSynonyms(groups []synonymGroup) map[string]string {
	out := make(map[string]string)
	for _, g := range groups {
		for _, label := range g.labels {
			key := NormalizeHeader(label)
			if key == "" {
				continue
			}
			if _, exists := out[key]; exists {
				continue
			}
			out[key] = g.field
		}
	}
	return out
}
