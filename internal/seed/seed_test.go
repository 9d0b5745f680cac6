package seed

import (
	"context"
	"testing"
	"time"

	"vidtube/internal/models"
	"vidtube/internal/testutil"
	"vidtube/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func smallOptions() Options {
	return Options{
		Users:           6,
		VideosPerUser:   3,
		CommentsPerUser: 2,
		TweetsPerUser:   2,
		MaxDays:         30,
		RandSeed:        42,
		SkipBcrypt:      true,
		Clean:           true,
	}
}

func TestSeeder_RunCreatesConsistentGraph(t *testing.T) {
	db := testutil.NewDB(t)
	summary, err := NewSeeder(db, smallOptions()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, summary.Users)
	assert.Equal(t, 18, summary.Videos)
	assert.Equal(t, 12, summary.Tweets)

	counts := map[any]int{
		&models.User{}:          summary.Users,
		&models.Video{}:         summary.Videos,
		&models.Comment{}:       summary.Comments,
		&models.Tweet{}:         summary.Tweets,
		&models.Like{}:          summary.Likes,
		&models.Subscription{}:  summary.Subscriptions,
		&models.Playlist{}:      summary.Playlists,
		&models.WatchHistory{}: summary.History,
	}
	for model, want := range counts {
		var got int64
		require.NoError(t, db.Model(model).Count(&got).Error)
		assert.Equal(t, int64(want), got, "%T", model)
	}

	var selfSubs int64
	require.NoError(t, db.Model(&models.Subscription{}).
		Where("subscriber_id = channel_id").Count(&selfSubs).Error)
	assert.Zero(t, selfSubs)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		assert.NoError(t, validation.ValidateUsername(u.Username), u.Username)
	}

	var hiddenComments int64
	require.NoError(t, db.Model(&models.Comment{}).
		Joins("JOIN videos ON videos.id = comments.video_id").
		Where("videos.is_published = ?", false).Count(&hiddenComments).Error)
	assert.Zero(t, hiddenComments)
}

func TestSeeder_CleanReplacesPreviousRun(t *testing.T) {
	db := testutil.NewDB(t)
	seeder := NewSeeder(db, smallOptions())

	_, err := seeder.Run(context.Background())
	require.NoError(t, err)
	_, err = seeder.Run(context.Background())
	require.NoError(t, err)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(6), users)
}

func TestSeeder_RequiresTwoUsers(t *testing.T) {
	opts := smallOptions()
	opts.Users = 1
	_, err := NewSeeder(testutil.NewDB(t), opts).Run(context.Background())
	assert.Error(t, err)
}

func TestFactory_TimestampsWithinMaxDays(t *testing.T) {
	f, err := NewFactory(nil, Options{MaxDays: 7, SkipBcrypt: true, RandSeed: 7})
	require.NoError(t, err)
	owner := &models.User{Document: models.Document{ID: models.NewID()}}

	for i := 0; i < 50; i++ {
		v := f.BuildVideo(owner)
		assert.WithinDuration(t, time.Now(), v.CreatedAt, 8*24*time.Hour)
		assert.Equal(t, owner.ID, v.OwnerID)
		assert.Greater(t, v.Duration, 0.0)
	}
}

func TestFactory_PasswordIsHashed(t *testing.T) {
	f, err := NewFactory(nil, Options{RandSeed: 1})
	require.NoError(t, err)

	user := f.BuildUser(1)
	assert.NotEqual(t, DefaultPassword, user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DefaultPassword)))
}
