package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	// ISODate is the layout dates are stored in.
	ISODate = "2006-01-02"

	buddhistEraOffset = 543
	buddhistEraFloor  = 2400

	// serials below this are treated as plain numbers by LooksLikeDate
	minSerialCandidate = 20000
)

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var (
	numericValue = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	timeSuffix   = regexp.MustCompile(`\s+\d{1,2}:\d{2}(:\d{2})?$`)
	spaceRun     = regexp.MustCompile(`\s+`)
	slashRun     = regexp.MustCompile(`/{2,}`)
	spacedDash   = regexp.MustCompile(`\s*-\s*`)

	dmySlash = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	dmyDash  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	ymd      = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	dmyShort = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2})$`)
)

// ParseDate converts a roster date cell to YYYY-MM-DD. ok is false when the
// value is empty or cannot be read as a date.
func ParseDate(raw string) (string, bool) {
	t, ok := ParseDateTime(raw)
	if !ok {
		return "", false
	}
	return t.Format(ISODate), true
}

// ParseDateTime accepts spreadsheet serials, d/m/Y and d-m-Y text with Thai
// or ASCII digits, Thai month names, and Buddhist-era years.
func ParseDateTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(TranslateThaiDigits(raw))
	if s == "" {
		return time.Time{}, false
	}
	if numericValue.MatchString(s) {
		return fromSerial(s)
	}

	spaced, slashed := normalizeDateText(s)
	if slashed == "" {
		return time.Time{}, false
	}

	if t, ok := parseDMY(dmySlash, slashed); ok {
		return t, true
	}
	if t, ok := parseDMY(dmyDash, slashed); ok {
		return t, true
	}
	return parsePermissive(spaced, slashed)
}

// ExcelSerialToDate converts a day count from 1899-12-30.
func ExcelSerialToDate(serial int) time.Time {
	return excelEpoch.AddDate(0, 0, serial)
}

// AdjustBuddhistYear maps Buddhist-era years (>= 2400) to the Gregorian calendar.
func AdjustBuddhistYear(t time.Time) time.Time {
	if t.Year() < buddhistEraFloor {
		return t
	}
	return time.Date(t.Year()-buddhistEraOffset, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LooksLikeDate reports whether a loosely typed cell is worth trying as a
// date. Bare numbers below 20000 without separators or Thai text are years
// or counts, not serials.
func LooksLikeDate(raw string) bool {
	s := strings.TrimSpace(TranslateThaiDigits(raw))
	if s == "" {
		return false
	}
	if strings.ContainsAny(s, "/-.\\ ") || containsThaiScript(s) {
		return true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f < minSerialCandidate {
		return false
	}
	return true
}

func fromSerial(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < -1e6 || f > 1e7 {
		return time.Time{}, false
	}
	days := int(f)
	if f < 0 && float64(days) != f {
		days--
	}
	return AdjustBuddhistYear(ExcelSerialToDate(days)), true
}

// normalizeDateText returns the cleaned text with single spaces and the same
// text with every space run turned into "/".
func normalizeDateText(s string) (spaced, slashed string) {
	s = timeSuffix.ReplaceAllString(s, "")
	s = strings.NewReplacer(".", "/", "\\", "/").Replace(s)
	s = spaceRun.ReplaceAllString(s, " ")
	s = stripEraMarkers(s)
	s = replaceThaiMonths(s)
	s = spacedDash.ReplaceAllString(s, "-")
	spaced = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))

	slashed = spaceRun.ReplaceAllString(spaced, "/")
	slashed = slashRun.ReplaceAllString(slashed, "/")
	slashed = strings.Trim(slashed, "/")
	return spaced, slashed
}

func parseDMY(re *regexp.Regexp, s string) (time.Time, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	d, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	return makeDate(y, mo, d)
}

func parsePermissive(spaced, slashed string) (time.Time, bool) {
	if m := ymd.FindStringSubmatch(slashed); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		return makeDate(y, mo, d)
	}
	// two-digit years on Thai rosters are Buddhist-era (66 = 2566)
	if m := dmyShort.FindStringSubmatch(slashed); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		return makeDate(2500+y, mo, d)
	}
	for _, candidate := range []string{spaced, slashed} {
		if t, ok := tryDateparse(candidate); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func tryDateparse(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()
	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return AdjustBuddhistYear(day), true
}

// makeDate applies the Buddhist-era correction before validating the day so
// 29/02/2567 is checked against 2024.
func makeDate(y, m, d int) (time.Time, bool) {
	if y >= buddhistEraFloor {
		y -= buddhistEraOffset
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}
