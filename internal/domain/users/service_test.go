package users

import (
	"context"
	"testing"

	"github.com/schoolcms/server/internal/auth"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	getFn    func(ctx context.Context, username string) (*AdminUser, error)
	createFn func(ctx context.Context, username, passwordHash string) (*AdminUser, error)
}

func (s stubRepo) GetByUsername(ctx context.Context, username string) (*AdminUser, error) {
	return s.getFn(ctx, username)
}

func (s stubRepo) Create(ctx context.Context, username, passwordHash string) (*AdminUser, error) {
	return s.createFn(ctx, username, passwordHash)
}

func TestAuthenticateSuccess(t *testing.T) {
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)

	svc := NewService(stubRepo{
		getFn: func(_ context.Context, username string) (*AdminUser, error) {
			require.Equal(t, "admin", username)
			return &AdminUser{ID: 1, Username: "admin", PasswordHash: hash}, nil
		},
	})

	user, err := svc.Authenticate(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)

	svc := NewService(stubRepo{
		getFn: func(_ context.Context, _ string) (*AdminUser, error) {
			return &AdminUser{ID: 1, Username: "admin", PasswordHash: hash}, nil
		},
	})

	_, err = svc.Authenticate(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := NewService(stubRepo{
		getFn: func(_ context.Context, _ string) (*AdminUser, error) {
			return nil, ErrUserNotFound
		},
	})

	_, err := svc.Authenticate(context.Background(), "ghost", "admin123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProvisionIsIdempotentOnUsername(t *testing.T) {
	existing := &AdminUser{ID: 1, Username: "admin", PasswordHash: "hash"}
	svc := NewService(stubRepo{
		getFn: func(_ context.Context, _ string) (*AdminUser, error) {
			return existing, nil
		},
		createFn: func(_ context.Context, _, _ string) (*AdminUser, error) {
			t.Fatal("unexpected create")
			return nil, nil
		},
	})

	user, err := svc.Provision(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.Same(t, existing, user)
}

func TestProvisionHashesPassword(t *testing.T) {
	svc := NewService(stubRepo{
		getFn: func(_ context.Context, _ string) (*AdminUser, error) {
			return nil, ErrUserNotFound
		},
		createFn: func(_ context.Context, username, passwordHash string) (*AdminUser, error) {
			require.Equal(t, "admin", username)
			require.NotEqual(t, "admin123", passwordHash)
			require.True(t, auth.CheckPassword(passwordHash, "admin123"))
			return &AdminUser{ID: 1, Username: username, PasswordHash: passwordHash}, nil
		},
	})

	_, err := svc.Provision(context.Background(), "admin", "admin123")
	require.NoError(t, err)
}
