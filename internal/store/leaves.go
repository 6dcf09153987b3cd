package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/suphotsudsee/study-leave-web/internal/model"
)

const leaveColumns = `cid, full_name, position_level, position_title, position_hospital, position_office,
	position_no, workplace, program, program_years, institute, start_date, end_date, note, order_no`

const insertLeaveSQL = `
	INSERT INTO study_leaves (
		cid, full_name, position_level, position_title, position_hospital, position_office,
		position_no, workplace, program, program_years, institute, start_date, end_date, note, order_no,
		created_at, updated_at
	) VALUES (
		:cid, :full_name, :position_level, :position_title, :position_hospital, :position_office,
		:position_no, :workplace, :program, :program_years, :institute, :start_date, :end_date, :note, :order_no,
		:created_at, :updated_at
	) RETURNING id`

// ListDedupKeys returns the dedup key of every stored leave.
func (s *Store) ListDedupKeys(ctx context.Context) ([]model.DedupKey, error) {
	keys := []model.DedupKey{}
	if err := s.db.SelectContext(ctx, &keys, `SELECT cid, order_no, start_date, end_date FROM study_leaves`); err != nil {
		return nil, fmt.Errorf("failed to list dedup keys: %w", err)
	}
	return keys, nil
}

// InsertLeaves stores all drafts in a single transaction. Either every draft
// is stored or none is.
func (s *Store) InsertLeaves(ctx context.Context, drafts []model.LeaveDraft) error {
	if len(drafts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, insertLeaveSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, d := range drafts {
		var id int64
		rec := model.LeaveRecord{LeaveDraft: d, CreatedAt: now, UpdatedAt: now}
		if err := stmt.GetContext(ctx, &id, rec); err != nil {
			return fmt.Errorf("failed to insert record %d (cid %s): %w", i+1, d.CID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListLeaves returns every leave, latest start date first.
func (s *Store) ListLeaves(ctx context.Context) ([]model.LeaveRecord, error) {
	leaves := []model.LeaveRecord{}
	query := `SELECT id, ` + leaveColumns + `, created_at, updated_at
		FROM study_leaves ORDER BY start_date DESC, id DESC`
	if err := s.db.SelectContext(ctx, &leaves, query); err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}
	return leaves, nil
}

// GetLeave returns one leave or ErrNotFound.
func (s *Store) GetLeave(ctx context.Context, id int64) (*model.LeaveRecord, error) {
	var rec model.LeaveRecord
	query := s.db.Rebind(`SELECT id, ` + leaveColumns + `, created_at, updated_at FROM study_leaves WHERE id = ?`)
	if err := s.db.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get leave %d: %w", id, err)
	}
	return &rec, nil
}

// CreateLeave stores a single leave and returns its id.
func (s *Store) CreateLeave(ctx context.Context, d model.LeaveDraft) (int64, error) {
	stmt, err := s.db.PrepareNamedContext(ctx, insertLeaveSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var id int64
	if err := stmt.GetContext(ctx, &id, model.LeaveRecord{LeaveDraft: d, CreatedAt: now, UpdatedAt: now}); err != nil {
		return 0, fmt.Errorf("failed to create leave: %w", err)
	}
	return id, nil
}

// UpdateLeave overwrites every field of an existing leave.
func (s *Store) UpdateLeave(ctx context.Context, id int64, d model.LeaveDraft) error {
	rec := model.LeaveRecord{ID: id, LeaveDraft: d, UpdatedAt: time.Now().UTC()}
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE study_leaves SET
			cid = :cid,
			full_name = :full_name,
			position_level = :position_level,
			position_title = :position_title,
			position_hospital = :position_hospital,
			position_office = :position_office,
			position_no = :position_no,
			workplace = :workplace,
			program = :program,
			program_years = :program_years,
			institute = :institute,
			start_date = :start_date,
			end_date = :end_date,
			note = :note,
			order_no = :order_no,
			updated_at = :updated_at
		WHERE id = :id
	`, rec)
	if err != nil {
		return fmt.Errorf("failed to update leave %d: %w", id, err)
	}
	return expectAffected(res)
}

// DeleteLeave removes one leave.
func (s *Store) DeleteLeave(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM study_leaves WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete leave %d: %w", id, err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePositionParts writes split position fields for several leaves in one transaction.
func (s *Store) UpdatePositionParts(ctx context.Context, updates []model.PositionUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE study_leaves SET
				position_title = :position_title,
				position_hospital = :position_hospital,
				position_office = :position_office
			WHERE id = :id
		`, u); err != nil {
			return fmt.Errorf("failed to update position of leave %d: %w", u.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
