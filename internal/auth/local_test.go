package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/models"
)

func openAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func TestRegisterAndAuthenticate(t *testing.T) {
	db := openAuthTestDB(t)
	provider, err := NewLocalProvider(db)
	require.NoError(t, err)

	user, err := provider.Register(RegisterInput{
		Username:    "kari",
		Email:       "Kari@Example.com",
		Password:    "s3cret-pass",
		DisplayName: "Kari",
	})
	require.NoError(t, err)
	require.Equal(t, "kari@example.com", user.Email)
	require.NotEqual(t, "s3cret-pass", user.Password)

	got, err := provider.Authenticate("kari", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	// email works as identifier too
	got, err = provider.Authenticate("kari@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	db := openAuthTestDB(t)
	provider, err := NewLocalProvider(db)
	require.NoError(t, err)

	_, err = provider.Register(RegisterInput{
		Username: "ola",
		Email:    "ola@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = provider.Authenticate("ola", "wrong-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = provider.Authenticate("nobody", "anything")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := openAuthTestDB(t)
	provider, err := NewLocalProvider(db)
	require.NoError(t, err)

	_, err = provider.Register(RegisterInput{Username: "kari", Email: "kari@example.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = provider.Register(RegisterInput{Username: "kari", Email: "other@example.com", Password: "pw123456"})
	require.ErrorIs(t, err, ErrUserExists)
}
