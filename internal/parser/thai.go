package parser

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var thaiDigits = strings.NewReplacer(
	"๐", "0", "๑", "1", "๒", "2", "๓", "3", "๔", "4",
	"๕", "5", "๖", "6", "๗", "7", "๘", "8", "๙", "9",
)

// TranslateThaiDigits replaces Thai digit glyphs with ASCII digits.
func TranslateThaiDigits(s string) string {
	return thaiDigits.Replace(s)
}

// containsThaiScript reports whether s has a Thai letter or mark. Thai digits
// are not counted.
func containsThaiScript(s string) bool {
	for _, r := range s {
		if r >= 0x0E00 && r <= 0x0E7F && (r < 0x0E50 || r > 0x0E59) {
			return true
		}
	}
	return false
}

var thaiMonthNames = [12][2]string{
	{"มกราคม", "ม.ค."},
	{"กุมภาพันธ์", "ก.พ."},
	{"มีนาคม", "มี.ค."},
	{"เมษายน", "เม.ย."},
	{"พฤษภาคม", "พ.ค."},
	{"มิถุนายน", "มิ.ย."},
	{"กรกฎาคม", "ก.ค."},
	{"สิงหาคม", "ส.ค."},
	{"กันยายน", "ก.ย."},
	{"ตุลาคม", "ต.ค."},
	{"พฤศจิกายน", "พ.ย."},
	{"ธันวาคม", "ธ.ค."},
}

type monthPattern struct {
	text  string
	month int
}

// monthPatterns holds every month spelling after "." has become "/",
// longest first so full names and dotted forms win over shorter ones.
var monthPatterns = buildMonthPatterns()

func buildMonthPatterns() []monthPattern {
	var out []monthPattern
	for i, names := range thaiMonthNames {
		m := i + 1
		abbr := strings.ReplaceAll(names[1], ".", "/")
		out = append(out,
			monthPattern{names[0], m},
			monthPattern{abbr, m},
			monthPattern{strings.TrimSuffix(abbr, "/"), m},
			monthPattern{strings.ReplaceAll(abbr, "/", ""), m},
		)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].text) > utf8.RuneCountInString(out[j].text)
	})
	return out
}

// eraMarkers are removed before month matching ("." already turned into "/").
var eraMarkers = []string{"พ/ศ/", "พ/ศ", "ค/ศ/", "ค/ศ"}

func replaceThaiMonths(s string) string {
	for _, p := range monthPatterns {
		if strings.Contains(s, p.text) {
			s = strings.ReplaceAll(s, p.text, " "+strconv.Itoa(p.month)+" ")
		}
	}
	return s
}

func stripEraMarkers(s string) string {
	for _, m := range eraMarkers {
		s = strings.ReplaceAll(s, m, " ")
	}
	return s
}
