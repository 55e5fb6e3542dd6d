package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/repository"
)

const userColumns = `id, name, email, role, status, joined_at, suspended_reason, suspended_at`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, name, email, role, status, joined_at, suspended_reason, suspended_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, u.ID, u.Name, u.Email, u.Role, u.Status, u.JoinedAt,
		nullString(u.SuspendedReason), nullTime(u.SuspendedAt))
	return err
}

func (r *userRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
	}
	return u, err
}

// Update guards on the previous status so a concurrent moderator's change is
// never overwritten.
func (r *userRepository) Update(ctx context.Context, u *domain.User, from domain.UserStatus) error {
	query := `UPDATE users SET name = $1, email = $2, role = $3, status = $4, suspended_reason = $5, suspended_at = $6
	          WHERE id = $7 AND status = $8`
	logger.DatabaseCall("update_user", query, "userID", u.ID, "from", from)
	result, err := conn(ctx, r.db).ExecContext(ctx, query, u.Name, u.Email, u.Role, u.Status,
		nullString(u.SuspendedReason), nullTime(u.SuspendedAt), u.ID, from)
	if err != nil {
		logger.DatabaseResult("update_user", 0, err)
		return err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("update_user", rows, err)
	if err != nil {
		return err
	}
	if rows == 0 {
		return missingOrMoved(ctx, r.db, "users", "user", u.ID)
	}
	return nil
}

// List filters by status and role in SQL; the free-text query is matched in Go
// so both stores share domain.UserFilter semantics.
func (r *userRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	var (
		where []string
		args  []any
	)
	if s, ok := filter.Status.Get(); ok {
		args = append(args, s)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if role, ok := filter.Role.Get(); ok {
		args = append(args, role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if filter.Matches(u) {
			users = append(users, *u)
		}
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u           domain.User
		reason      sql.NullString
		suspendedAt sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.JoinedAt, &reason, &suspendedAt); err != nil {
		return nil, err
	}
	u.JoinedAt = u.JoinedAt.UTC()
	u.SuspendedReason = optionalString(reason)
	u.SuspendedAt = optionalTime(suspendedAt)
	return &u, nil
}
