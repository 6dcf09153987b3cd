package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyWorkbook indicates no worksheet produced any row.
var ErrEmptyWorkbook = errors.New("excel file is empty")

// ArchiveError indicates the uploaded file could not be opened as a spreadsheet package.
type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("unable to read excel file: %v", e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// MissingColumnsError reports the required fields the best worksheet lacks.
type MissingColumnsError struct {
	Sheet    string
	Missing  []string
	Expected []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns in sheet %q: %s", e.Sheet, strings.Join(e.Missing, ", "))
}

// DataStartNotFoundError indicates the headers were found but no record row follows them.
type DataStartNotFoundError struct {
	Sheet string
}

func (e *DataStartNotFoundError) Error() string {
	return fmt.Sprintf("unable to find data rows in sheet %q", e.Sheet)
}

// DatabaseError wraps a persistence failure; nothing from the import was committed.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error (%s): %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}
