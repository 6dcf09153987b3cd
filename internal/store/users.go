package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/suphotsudsee/study-leave-web/internal/model"
)

const userColumns = `user_id, username, password, full_name, email, role, status, created_at`

// ListUsers returns all accounts ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns one account or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

// CreateUser inserts u and fills in its id. The password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	stmt, err := s.db.PrepareNamedContext(ctx, `
		INSERT INTO users (username, password, full_name, email, role, status, created_at)
		VALUES (:username, :password, :full_name, :email, :role, :status, :created_at)
		RETURNING user_id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare user insert: %w", err)
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, &u.ID, u); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser saves u. An empty Password keeps the stored hash.
func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users SET username = :username, full_name = :full_name, email = :email,
			role = :role, status = :status
		WHERE user_id = :user_id`
	if u.Password != "" {
		query = `
		UPDATE users SET username = :username, password = :password, full_name = :full_name,
			email = :email, role = :role, status = :status
		WHERE user_id = :user_id`
	}
	res, err := s.db.NamedExecContext(ctx, query, u)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", u.ID, err)
	}
	return expectAffected(res)
}

// DeleteUser removes one account.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM users WHERE user_id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return expectAffected(res)
}
