package repository

import (
	"context"
	"testing"

	"vidtube/internal/models"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_ToggleRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice")
	video := testutil.SeedVideo(t, db, alice.ID, "intro", true, 0)

	liked, err := repo.Toggle(ctx, models.LikeTargetVideo, video.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	var count int64
	db.Model(&models.Like{}).Count(&count)
	assert.Equal(t, int64(1), count)

	liked, err = repo.Toggle(ctx, models.LikeTargetVideo, video.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	db.Model(&models.Like{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLikeRepository_TargetKindsAreIndependent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice")
	id := models.NewID()

	on, err := repo.Toggle(ctx, models.LikeTargetComment, id, alice.ID)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = repo.Toggle(ctx, models.LikeTargetTweet, id, alice.ID)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestLikeRepository_DeleteByTarget(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice")
	bob := testutil.SeedUser(t, db, "bob")
	commentID := models.NewID()

	for _, u := range []string{alice.ID, bob.ID} {
		_, err := repo.Toggle(ctx, models.LikeTargetComment, commentID, u)
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteByTarget(ctx, models.LikeTargetComment, commentID, alice.ID))
	var remaining []models.Like
	db.Find(&remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, bob.ID, remaining[0].LikedBy)

	require.NoError(t, repo.DeleteByTarget(ctx, models.LikeTargetComment, commentID, ""))
	db.Find(&remaining)
	assert.Empty(t, remaining)
}

func TestLikeRepository_ListLikedVideos(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice")
	bob := testutil.SeedUser(t, db, "bob")

	first := testutil.SeedVideo(t, db, bob.ID, "first", true, 3)
	hidden := testutil.SeedVideo(t, db, bob.ID, "hidden", false, 0)
	own := testutil.SeedVideo(t, db, alice.ID, "own-draft", false, 0)

	for _, v := range []*models.Video{first, hidden, own} {
		_, err := repo.Toggle(ctx, models.LikeTargetVideo, v.ID, alice.ID)
		require.NoError(t, err)
	}

	liked, err := repo.ListLikedVideos(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, liked, 2)

	assert.Equal(t, own.ID, liked[0].ID)
	assert.Equal(t, first.ID, liked[1].ID)
	assert.Equal(t, "bob", liked[1].Owner.Username)
	assert.Equal(t, int64(1), liked[1].LikesCount)
	assert.True(t, liked[1].IsLiked)
	assert.False(t, liked[1].LikedAt.IsZero())
}
