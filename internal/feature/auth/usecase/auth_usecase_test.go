package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stock_stream/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
type mockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *entity.User) error
	FindByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

// mockJWTGenerator is a mock implementation of the JWTGenerator interface.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

func newTestUsecase(repo UserRepository, gen JWTGenerator) *authUsecase {
	uc := NewAuthUsecase(repo, gen)
	uc.cost = bcrypt.MinCost
	return uc
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("successful signup hashes password and normalizes email", func(t *testing.T) {
		t.Parallel()
		var stored *entity.User
		repo := &mockUserRepository{CreateFunc: func(_ context.Context, u *entity.User) error {
			stored = u
			return nil
		}}

		err := newTestUsecase(repo, &mockJWTGenerator{}).Signup(ctx, "  Test@Example.com ", "password123")

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "test@example.com", stored.Email)
		assert.NotEqual(t, "password123", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
	})

	t.Run("short password is rejected before the store", func(t *testing.T) {
		t.Parallel()
		called := false
		repo := &mockUserRepository{CreateFunc: func(context.Context, *entity.User) error {
			called = true
			return nil
		}}

		err := newTestUsecase(repo, &mockJWTGenerator{}).Signup(ctx, "a@b.co", "short")

		assert.ErrorIs(t, err, ErrWeakPassword)
		assert.False(t, called)
	})

	t.Run("repository error is returned", func(t *testing.T) {
		t.Parallel()
		repo := &mockUserRepository{CreateFunc: func(context.Context, *entity.User) error {
			return ErrEmailAlreadyExists
		}}

		err := newTestUsecase(repo, &mockJWTGenerator{}).Signup(ctx, "a@b.co", "password123")

		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	testUser := &entity.User{ID: 1, Email: "test@example.com", PasswordHash: string(hashed)}
	found := &mockUserRepository{FindByEmailFunc: func(_ context.Context, email string) (*entity.User, error) {
		if email == testUser.Email {
			return testUser, nil
		}
		return nil, ErrUserNotFound
	}}

	tests := []struct {
		name      string
		repo      UserRepository
		gen       JWTGenerator
		email     string
		password  string
		wantToken string
		wantErr   error
	}{
		{
			name:      "success",
			repo:      found,
			gen:       &mockJWTGenerator{},
			email:     "TEST@example.com",
			password:  "password123",
			wantToken: "mock-jwt-token",
		},
		{
			name:     "unknown user",
			repo:     found,
			gen:      &mockJWTGenerator{},
			email:    "nobody@example.com",
			password: "password123",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			repo:     found,
			gen:      &mockJWTGenerator{},
			email:    "test@example.com",
			password: "wrong-password",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name: "store failure is not reported as bad credentials",
			repo: &mockUserRepository{FindByEmailFunc: func(context.Context, string) (*entity.User, error) {
				return nil, errors.New("db down")
			}},
			gen:      &mockJWTGenerator{},
			email:    "test@example.com",
			password: "password123",
		},
		{
			name: "token generation failure",
			repo: found,
			gen: &mockJWTGenerator{GenerateTokenFunc: func(uint, string) (string, error) {
				return "", errors.New("signing failed")
			}},
			email:    "test@example.com",
			password: "password123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			token, err := newTestUsecase(tt.repo, tt.gen).Login(ctx, tt.email, tt.password)

			if tt.wantToken != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				return
			}
			require.Error(t, err)
			assert.Empty(t, token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NotErrorIs(t, err, ErrInvalidCredentials)
			}
		})
	}
}
