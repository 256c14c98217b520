package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolcms/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
}

// pgErrUniqueViolation is SQLSTATE 23505.
const pgErrUniqueViolation = "23505"

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.AdminUser, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, username, password_hash, created_at
  FROM admin_users
 WHERE username = $1
 LIMIT 1
`, username)

	var user users.AdminUser
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("get admin user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*users.AdminUser, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO admin_users (username, password_hash)
VALUES ($1, $2)
RETURNING id, username, password_hash, created_at
`, username, passwordHash)

	var user users.AdminUser
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create admin user: %w", err)
	}
	return &user, nil
}
