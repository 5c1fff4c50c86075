package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/miniblog/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}))
	return db
}

func TestUserRepositoryCreateAndFind(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, "a@x.com", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = repo.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, "a@x.com", "hash1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "a@x.com", "hash2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestPostRepositoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	u, err := users.Create(ctx, "a@x.com", "hash")
	require.NoError(t, err)

	p1, err := posts.Create(ctx, u.ID, "hello")
	require.NoError(t, err)
	p2, err := posts.Create(ctx, u.ID, "world")
	require.NoError(t, err)

	list, err := posts.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.ElementsMatch(t, []string{p1.ID, p2.ID}, []string{list[0].ID, list[1].ID})

	found, err := posts.FindByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", found.Text)

	require.NoError(t, posts.Delete(ctx, p1.ID))

	list, err = posts.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p2.ID, list[0].ID)
}

func TestPostRepositoryNotFound(t *testing.T) {
	posts := NewPostRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := posts.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)

	err = posts.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}
