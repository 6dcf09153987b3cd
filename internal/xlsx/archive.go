// Package xlsx reads worksheet cell text out of an xlsx package.
//
// Only the parts needed to recover cell strings are read: the shared-string
// table, the workbook sheet list and the worksheet parts themselves.
package xlsx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidFormat indicates the package is not a readable xlsx file.
var ErrInvalidFormat = errors.New("invalid xlsx format")

var worksheetPart = regexp.MustCompile(`^xl/worksheets/[^/]+\.xml$`)

// Sheet is one worksheet part of the package.
type Sheet struct {
	Name string `json:"name"` // display name from workbook.xml, or the part base name
	Part string `json:"part"` // e.g. xl/worksheets/sheet1.xml
}

// Archive is an opened xlsx package.
type Archive struct {
	zr     *zip.Reader
	closer io.Closer
	shared []string
	sheets []Sheet
}

// Open opens the xlsx file at path. The caller must Close the archive.
func Open(filePath string) (*Archive, error) {
	rc, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	a, err := newArchive(&rc.Reader, rc)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	return a, nil
}

// OpenBytes opens an xlsx package held in memory.
func OpenBytes(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open package: %w", err)
	}
	return newArchive(zr, nil)
}

func newArchive(zr *zip.Reader, closer io.Closer) (*Archive, error) {
	a := &Archive{zr: zr, closer: closer}

	shared, err := a.loadSharedStrings()
	if err != nil {
		return nil, err
	}
	a.shared = shared

	var parts []string
	for _, f := range zr.File {
		if worksheetPart.MatchString(f.Name) {
			parts = append(parts, f.Name)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no worksheet parts", ErrInvalidFormat)
	}
	sort.SliceStable(parts, func(i, j int) bool { return NaturalLess(parts[i], parts[j]) })

	names := a.sheetNames()
	for _, p := range parts {
		name, ok := names[p]
		if !ok {
			name = strings.TrimSuffix(path.Base(p), ".xml")
		}
		a.sheets = append(a.sheets, Sheet{Name: name, Part: p})
	}
	return a, nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// SharedStrings returns the shared-string table in index order.
func (a *Archive) SharedStrings() []string {
	return a.shared
}

// Sheets returns the worksheet parts in natural order of their part names.
func (a *Archive) Sheets() []Sheet {
	return a.sheets
}

// Rows decodes one worksheet. A malformed worksheet yields an empty row list
// together with the decode error so a single bad sheet can be skipped.
func (a *Archive) Rows(s Sheet) ([][]string, error) {
	data, err := a.readPart(s.Part)
	if err != nil {
		return [][]string{}, err
	}
	if data == nil {
		return [][]string{}, fmt.Errorf("%w: missing part %s", ErrInvalidFormat, s.Part)
	}
	rows, err := DecodeRows(data, a.shared)
	if err != nil {
		return [][]string{}, fmt.Errorf("sheet %q: %w", s.Name, err)
	}
	return rows, nil
}

func (a *Archive) loadSharedStrings() ([]string, error) {
	data, err := a.readPart("xl/sharedStrings.xml")
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil, fmt.Errorf("%w: sharedStrings: %v", ErrInvalidFormat, err)
	}
	out := make([]string, len(sst.Items))
	for i, si := range sst.Items {
		out[i] = si.text()
	}
	return out, nil
}

// sheetNames maps worksheet part names to the names shown in the workbook.
// Missing or unreadable workbook metadata yields an empty map.
func (a *Archive) sheetNames() map[string]string {
	names := map[string]string{}

	wbData, _ := a.readPart("xl/workbook.xml")
	relData, _ := a.readPart("xl/_rels/workbook.xml.rels")
	if wbData == nil || relData == nil {
		return names
	}

	var wb workbookXML
	if err := xml.Unmarshal(wbData, &wb); err != nil {
		return names
	}
	var rels relationshipsXML
	if err := xml.Unmarshal(relData, &rels); err != nil {
		return names
	}

	targets := make(map[string]string, len(rels.Relationship))
	for _, rel := range rels.Relationship {
		targets[rel.ID] = resolveTarget(rel.Target)
	}
	for _, s := range wb.Sheets.Sheet {
		if p, ok := targets[s.RID]; ok && s.Name != "" {
			names[p] = s.Name
		}
	}
	return names
}

// resolveTarget turns a workbook relationship target into a package part name.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	for strings.HasPrefix(target, "../") {
		target = strings.TrimPrefix(target, "../")
	}
	if strings.HasPrefix(target, "xl/") {
		return target
	}
	return "xl/" + target
}

// readPart returns nil, nil when the part does not exist.
func (a *Archive) readPart(name string) ([]byte, error) {
	for _, f := range a.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", name, err)
		}
		return data, nil
	}
	return nil, nil
}
