package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stock_stream/internal/feature/auth/domain/entity"
	"stock_stream/internal/feature/auth/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to initialize test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&UserModel{}), "failed to migrate table")
	return db
}

func TestUserGorm_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := &entity.User{Email: "test@example.com", PasswordHash: "hashed_password"}

		err := repo.Create(ctx, user)

		require.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
	})

	t.Run("duplicate email error", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		require.NoError(t, repo.Create(ctx, &entity.User{Email: "dup@example.com", PasswordHash: "p1"}))

		err := repo.Create(ctx, &entity.User{Email: "dup@example.com", PasswordHash: "p2"})

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})

	t.Run("nil user error", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		assert.Error(t, repo.Create(ctx, nil))
	})
}

func TestUserGorm_FindByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupTestDB(t))
	require.NoError(t, repo.Create(ctx, &entity.User{Email: "find@example.com", PasswordHash: "hash"}))

	t.Run("found", func(t *testing.T) {
		u, err := repo.FindByEmail(ctx, "find@example.com")

		require.NoError(t, err)
		assert.Equal(t, "find@example.com", u.Email)
		assert.Equal(t, "hash", u.PasswordHash)
		assert.NotZero(t, u.ID)
	})

	t.Run("not found", func(t *testing.T) {
		u, err := repo.FindByEmail(ctx, "missing@example.com")

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
		assert.Nil(t, u)
	})
}
