package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Setting names.
const (
	SettingDueWindowDays = "due_window_days"
)

// GetSetting returns a stored setting or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`SELECT value FROM settings WHERE name = ?`), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, nil
}

// GetSettingInt returns a setting parsed as an integer, or def when it is unset.
func (s *Store) GetSettingInt(ctx context.Context, name string, def int) (int, error) {
	value, err := s.GetSetting(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def, fmt.Errorf("setting %s is not an integer: %w", name, err)
	}
	return n, nil
}

// SetSetting inserts or replaces a setting.
func (s *Store) SetSetting(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO settings (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`), name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return nil
}

// AllSettings returns every stored setting.
func (s *Store) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		settings[name] = value
	}
	return settings, rows.Err()
}
