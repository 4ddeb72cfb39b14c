package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_DeleteOwnedNotOwner(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE id = $1 AND owner_id = $2`)).
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteOwned(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "secret1", true)

	post := &models.Post{
		OwnerID: owner.ID,
		Caption: "hello",
		Image:   models.Image{PublicID: models.StubImagePublicID, URL: models.StubImageURL},
	}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Caption)
	assert.Equal(t, models.StubImageURL, got.Image.URL)
	assert.NotNil(t, got.Likes)
	assert.NotNil(t, got.Comments)

	missing, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostRepository_ListsNewestFirst(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "secret1", true)
	b := testutil.CreateUser(t, db, "secret1", true)
	c := testutil.CreateUser(t, db, "secret1", true)

	first := testutil.CreatePost(t, db, a.ID)
	second := testutil.CreatePost(t, db, a.ID)
	third := testutil.CreatePost(t, db, b.ID)
	testutil.CreatePost(t, db, c.ID)

	mine, err := repo.ListByOwner(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	feed, err := repo.ListByOwners(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, third.ID, feed[0].ID)

	none, err := repo.ListByOwners(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_ToggleLike(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "secret1", true)
	fan := testutil.CreateUser(t, db, "secret1", true)
	post := testutil.CreatePost(t, db, owner.ID)

	liked, err := repo.ToggleLike(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{fan.ID}, got.Likes)

	liked, err = repo.ToggleLike(ctx, post.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)

	_, err = repo.ToggleLike(ctx, 9999, fan.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_Mutate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "secret1", true)
	post := testutil.CreatePost(t, db, owner.ID)
	now := time.Now().UTC()

	updated, err := repo.Mutate(ctx, post.ID, func(p *models.Post) error {
		p.Caption = "edited"
		p.Comments = append(p.Comments, models.Comment{ID: "c1", UserID: owner.ID, Text: "first", CreatedAt: now, UpdatedAt: now})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Caption)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Caption)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "first", got.Comments[0].Text)

	_, err = repo.Mutate(ctx, post.ID, func(p *models.Post) error {
		p.Caption = "discarded"
		return models.NewNotFoundError("Comment not found or unauthorized user.")
	})
	assert.Equal(t, 404, models.StatusOf(err))

	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Caption)

	_, err = repo.Mutate(ctx, 9999, func(*models.Post) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_DeleteOwned(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "secret1", true)
	other := testutil.CreateUser(t, db, "secret1", true)
	post := testutil.CreatePost(t, db, owner.ID)
	_, err := repo.ToggleLike(ctx, post.ID, other.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.DeleteOwned(ctx, post.ID, other.ID), ErrNotFound)
	require.NoError(t, repo.DeleteOwned(ctx, post.ID, owner.ID))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	var n int64
	require.NoError(t, db.Model(&models.PostLike{}).Count(&n).Error)
	assert.Zero(t, n)
}
