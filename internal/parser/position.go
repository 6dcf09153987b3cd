package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// UnspecifiedPosition is shown when a record has no position text.
const UnspecifiedPosition = "ไม่ระบุตำแหน่ง"

// Position is a position string split into its three parts.
type Position struct {
	Title    string `json:"title"`
	Hospital string `json:"hospital"`
	Office   string `json:"office"`
	// Anchored is true when an office or hospital keyword located the split.
	Anchored bool `json:"-"`
}

// Join reassembles the non-empty parts with single spaces.
func (p Position) Join() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.Hospital, p.Office} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Provincial and district health office designators.
var officeAnchors = []string{
	"สสจ",
	"สสอ",
	"สำนักงานสาธารณสุข",
	"สนง.สาธารณสุข",
	"สนง.สสจ",
	"สนง.สสอ",
}

// Hospital designators, including sub-district health-promoting hospitals.
var hospitalAnchors = []string{
	"รพ.",
	"รพสต.",
	"รพช.",
	"รพท.",
	"รพศ.",
	"โรงพยาบาล",
	"สถานีอนามัย",
	"ศูนย์สุขภาพชุมชน",
}

// SplitPosition splits free text such as
// "นักวิชาการสาธารณสุข รพ.สต.บ้านใหม่ สสจ.เชียงใหม่" into title, hospital and
// office. The split is best effort: without anchors the last two tokens are
// assumed to be hospital and office.
func SplitPosition(raw string) Position {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Position{}
	}

	officeAt, hospitalAt := -1, -1
	for i, tok := range tokens {
		if officeAt < 0 && hasAnyPrefix(tok, officeAnchors) {
			officeAt = i
		}
		if hospitalAt < 0 && hasAnyPrefix(tok, hospitalAnchors) {
			hospitalAt = i
		}
	}
	join := func(ts []string) string { return strings.Join(ts, " ") }

	switch {
	case officeAt >= 0 && hospitalAt >= 0 && hospitalAt < officeAt:
		return Position{
			Title:    join(tokens[:hospitalAt]),
			Hospital: join(tokens[hospitalAt:officeAt]),
			Office:   join(tokens[officeAt:]),
			Anchored: true,
		}
	case officeAt >= 0:
		return Position{
			Title:    join(tokens[:officeAt]),
			Office:   join(tokens[officeAt:]),
			Anchored: true,
		}
	case hospitalAt >= 0:
		return Position{
			Title:    join(tokens[:hospitalAt]),
			Hospital: join(tokens[hospitalAt:]),
			Anchored: true,
		}
	}

	n := len(tokens)
	switch {
	case n >= 3:
		return Position{Title: join(tokens[:n-2]), Hospital: tokens[n-2], Office: tokens[n-1]}
	case n == 2:
		return Position{Title: tokens[0], Hospital: tokens[1]}
	default:
		return Position{Title: tokens[0]}
	}
}

var lineBreak = regexp.MustCompile(`\r?\n+`)

// PositionTitle returns the display title of a stored position: the first
// line, cut before any hospital or office part.
func PositionTitle(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UnspecifiedPosition
	}
	first := strings.TrimSpace(lineBreak.Split(raw, 2)[0])
	if first == "" {
		first = raw
	}
	first = strings.Join(strings.Fields(first), " ")
	if p := SplitPosition(first); p.Anchored && p.Title != "" {
		return p.Title
	}
	return first
}

// Category is a coarse professional group derived from a position title.
type Category string

const (
	CategoryDentist    Category = "dentist"
	CategoryPharmacist Category = "pharmacist"
	CategoryNurse      Category = "nurse"
	CategoryDoctor     Category = "doctor"
	CategoryOther      Category = "other"
)

// Categories lists every category in classification order.
var Categories = []Category{CategoryDentist, CategoryPharmacist, CategoryNurse, CategoryDoctor, CategoryOther}

type categoryKeywords struct {
	category Category
	keywords []string
}

// ทันตแพทย์ contains แพทย์, so dentist is tested before doctor.
var categoryTable = []categoryKeywords{
	{CategoryDentist, []string{"ทันตแพทย์", "dentist", "dental surgeon"}},
	{CategoryPharmacist, []string{"เภสัชกร", "pharmacist"}},
	{CategoryNurse, []string{"พยาบาล", "nurse"}},
	{CategoryDoctor, []string{"นายแพทย์", "แพทย์หญิง", "แพทย์", "doctor", "physician", "medical officer"}},
}

// Classify maps a position title to a coarse professional category.
func Classify(title string) Category {
	key := compactFold(title)
	if key == "" {
		return CategoryOther
	}
	for _, group := range categoryTable {
		if ContainsAny(key, foldedKeywords[group.category]) {
			return group.category
		}
	}
	return CategoryOther
}

var foldedKeywords = func() map[Category][]string {
	out := make(map[Category][]string, len(categoryTable))
	for _, g := range categoryTable {
		for _, kw := range g.keywords {
			out[g.category] = append(out[g.category], compactFold(kw))
		}
	}
	return out
}()

func compactFold(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), ""))
}
