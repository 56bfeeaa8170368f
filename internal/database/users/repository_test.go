package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/owaspnotes/notesapp/internal/entities"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	return NewRepository(db)
}

func TestCreateUser(t *testing.T) {
	repo := setupRepo(t)

	user, err := repo.CreateUser("alice", "alice@example.com", "hashed-password")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Name)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.CreateUser("other", "alice@example.com", "other-hash")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestGetUserByEmail(t *testing.T) {
	repo := setupRepo(t)
	_, err := repo.CreateUser("alice", "alice@example.com", "hashed-password")
	require.NoError(t, err)

	t.Run("includes password hash for credential matching", func(t *testing.T) {
		user, err := repo.GetUserByEmail("alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hashed-password", user.PasswordHash)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.GetUserByEmail("nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGetUserByIDExcludesHash(t *testing.T) {
	repo := setupRepo(t)
	created, err := repo.CreateUser("alice", "alice@example.com", "hashed-password")
	require.NoError(t, err)

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.PasswordHash, "session identity must not carry the hash")

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetUserByID(99999)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGetCredentials(t *testing.T) {
	repo := setupRepo(t)
	created, err := repo.CreateUser("alice", "alice@example.com", "hashed-password")
	require.NoError(t, err)

	user, err := repo.GetCredentials(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed-password", user.PasswordHash)
}
