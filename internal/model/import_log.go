package model

import "time"

// ImportLog is the audit entry written after each spreadsheet import.
type ImportLog struct {
	ID             int64     `json:"id" db:"id"`
	OriginalName   string    `json:"original_name" db:"original_name"`
	StoredPath     string    `json:"stored_path" db:"stored_path"`
	Inserted       int       `json:"inserted" db:"inserted"`
	Skipped        int       `json:"skipped" db:"skipped"`
	DuplicateCount int       `json:"duplicate_count" db:"duplicate_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ImportSheet is the per-worksheet outcome stored alongside an ImportLog.
type ImportSheet struct {
	ID           int64  `json:"id" db:"id"`
	ImportLogID  int64  `json:"import_log_id" db:"import_log_id"`
	SheetName    string `json:"sheet_name" db:"sheet_name"`
	TotalRows    int    `json:"total_rows" db:"total_rows"`
	DataStart    int    `json:"data_start" db:"data_start"`
	Used         bool   `json:"used" db:"used"`
	MissingJSON  string `json:"missing_json" db:"missing_json"`
	HeadersJSON  string `json:"headers_json" db:"headers_json"`
	ErrorMessage string `json:"error_message" db:"error_message"`
}
