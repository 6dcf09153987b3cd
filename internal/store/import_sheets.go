package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/suphotsudsee/study-leave-web/internal/model"
)

// InsertImportSheets records the per-worksheet outcome of an import.
func (s *Store) InsertImportSheets(ctx context.Context, importLogID int64, sheets []model.ImportSheet) error {
	if len(sheets) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, sh := range sheets {
		sh.ImportLogID = importLogID
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO import_sheets (
				import_log_id, sheet_name, total_rows, data_start, used,
				missing_json, headers_json, error_message
			) VALUES (
				:import_log_id, :sheet_name, :total_rows, :data_start, :used,
				:missing_json, :headers_json, :error_message
			)
		`, sh); err != nil {
			return fmt.Errorf("failed to insert import sheet %s: %w", sh.SheetName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListImportSheets returns the worksheets recorded for one import.
func (s *Store) ListImportSheets(ctx context.Context, importLogID int64) ([]model.ImportSheet, error) {
	sheets := []model.ImportSheet{}
	query := s.db.Rebind(`
		SELECT id, import_log_id, sheet_name, total_rows, data_start, used,
			missing_json, headers_json, error_message
		FROM import_sheets WHERE import_log_id = ? ORDER BY id
	`)
	if err := s.db.SelectContext(ctx, &sheets, query, importLogID); err != nil {
		return nil, fmt.Errorf("failed to list import sheets: %w", err)
	}
	return sheets, nil
}

// BuildJSON serialises v for a *_json column.
func BuildJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
