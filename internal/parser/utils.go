package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var nonDigit = regexp.MustCompile(`[^0-9]`)

// ContainsAny reports whether text contains any of the keywords.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(text string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// CollapseSpaces trims s and joins its whitespace-separated words with one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseProgramYears keeps only the digits of a duration cell ("2 ปี" -> 2).
// Blank, zero or unreadable values become 1.
func ParseProgramYears(raw string) int {
	digits := nonDigit.ReplaceAllString(TranslateThaiDigits(raw), "")
	if len(digits) > 4 {
		digits = digits[:4]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
