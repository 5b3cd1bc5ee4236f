package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	repo := NewUserRepository()

	user := domain.User{
		ID: "u1", Email: "Alice@Example.com", PasswordHash: "hash",
		Role: domain.RoleUser, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(user))

	// Email нормализуется к нижнему регистру.
	got, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	err = repo.Create(domain.User{ID: "u2", Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = repo.GetByEmail("missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	repo := NewUserRepository()
	require.NoError(t, repo.Create(domain.User{ID: "u1", Email: "alice@example.com", PasswordHash: "old"}))

	require.NoError(t, repo.UpdatePassword("alice@example.com", "new"))

	got, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword("missing@example.com", "x"), domain.ErrUserNotFound)
}
