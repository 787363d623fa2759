package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecocare/internal/model"
	"ecocare/internal/repository"
)

func TestUserInsertGetUpdate(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	user := &model.User{Name: "Dana", Email: "dana@example.com"}
	id, err := repo.Insert(ctx, user)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dana", got.Name)
	assert.Equal(t, "dana@example.com", got.Email)

	name := "Dana R."
	updated, err := repo.Update(ctx, id, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Dana R.", updated.Name)
	assert.Equal(t, "dana@example.com", updated.Email, "nil fields are left unchanged")
	assert.False(t, updated.UpdatedAt.Before(got.UpdatedAt))
}

func TestUserNotFound(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	name := "x"
	_, err = repo.Update(ctx, 42, &name, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserEmailIsUnique(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, &model.User{Name: "a", Email: "same@example.com"})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, &model.User{Name: "b", Email: "same@example.com"})
	assert.Error(t, err)
}
