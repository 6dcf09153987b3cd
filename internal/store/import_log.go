package store

import (
	"context"
	"fmt"
	"time"

	"github.com/suphotsudsee/study-leave-web/internal/model"
)

// DefaultImportLogLimit caps ListImportLogs when no limit is given.
const DefaultImportLogLimit = 50

// CreateImportLog writes an audit entry and fills in its id and timestamp.
func (s *Store) CreateImportLog(ctx context.Context, entry *model.ImportLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	stmt, err := s.db.PrepareNamedContext(ctx, `
		INSERT INTO import_logs (original_name, stored_path, inserted, skipped, duplicate_count, created_at)
		VALUES (:original_name, :stored_path, :inserted, :skipped, :duplicate_count, :created_at)
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare import log: %w", err)
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, &entry.ID, entry); err != nil {
		return fmt.Errorf("failed to create import log: %w", err)
	}
	return nil
}

// ListImportLogs returns the most recent import logs first.
func (s *Store) ListImportLogs(ctx context.Context, limit int) ([]model.ImportLog, error) {
	if limit <= 0 {
		limit = DefaultImportLogLimit
	}
	logs := []model.ImportLog{}
	query := s.db.Rebind(`
		SELECT id, original_name, stored_path, inserted, skipped, duplicate_count, created_at
		FROM import_logs ORDER BY id DESC LIMIT ?
	`)
	if err := s.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	return logs, nil
}
