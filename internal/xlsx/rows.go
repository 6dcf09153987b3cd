package xlsx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// DecodeRows parses worksheet XML into rows of cell text.
//
// Cells are placed at the column their reference names, and gaps up to the
// last populated column are filled with "". Rows without any non-empty cell
// are dropped.
func DecodeRows(data []byte, shared []string) ([][]string, error) {
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return [][]string{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	rows := make([][]string, 0, len(ws.SheetData.Rows))
	for _, r := range ws.SheetData.Rows {
		if row := decodeRow(r, shared); row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func decodeRow(r rowXML, shared []string) []string {
	cells := make(map[int]string, len(r.Cells))
	maxIdx := -1
	next := 0

	for _, c := range r.Cells {
		idx := next
		if c.R != "" {
			if i, ok := ColumnIndex(c.R); ok {
				idx = i
			}
		}
		next = idx + 1

		v := cellValue(c, shared)
		if v == "" {
			continue
		}
		cells[idx] = v
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	if maxIdx < 0 {
		return nil
	}
	row := make([]string, maxIdx+1)
	for i, v := range cells {
		row[i] = v
	}
	return row
}

func cellValue(c cellXML, shared []string) string {
	switch c.T {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.V))
		if err != nil || i < 0 || i >= len(shared) {
			return ""
		}
		return shared[i]
	case "inlineStr":
		if c.Is != nil {
			return c.Is.text()
		}
		return c.V
	default:
		return c.V
	}
}

// ColumnIndex converts the letters of a cell reference such as "AB12" into a
// zero-based column index (A=0, Z=25, AA=26).
func ColumnIndex(ref string) (int, bool) {
	n := 0
	found := false
	for _, r := range strings.ToUpper(ref) {
		if r < 'A' || r > 'Z' {
			continue
		}
		n = n*26 + int(r-'A'+1)
		found = true
	}
	if !found {
		return 0, false
	}
	return n - 1, true
}
