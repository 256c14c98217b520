// Package users manages operator accounts. Accounts are provisioned
// out-of-band (seed command, bootstrap env vars); the API only ever reads
// them during login.
package users

import (
	"context"
	"errors"
	"time"

	"github.com/schoolcms/server/internal/auth"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username is already taken")
)

// AdminUser is an operator identity. PasswordHash never leaves this package
// except to the storage layer.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*AdminUser, error)
	Create(ctx context.Context, username, passwordHash string) (*AdminUser, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate verifies a username/password pair. Unknown usernames and wrong
// passwords both return ErrInvalidCredentials so callers cannot probe for
// valid usernames.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*AdminUser, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Provision creates an operator account with a freshly hashed password.
// It is idempotent on username: an existing account is returned unchanged.
func (s *Service) Provision(ctx context.Context, username, password string) (*AdminUser, error) {
	existing, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, username, hash)
}
