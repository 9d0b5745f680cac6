package service

import (
	"context"
	"errors"
	"testing"

	"vidtube/internal/database"
	"vidtube/internal/models"
	"vidtube/internal/storage"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

func newUserService(t *testing.T) (*UserService, *fixture) {
	t.Helper()
	f := newFixture(t)
	tokens, _ := newTokenService(t)
	return NewUserService(f.users, f.uploader, f.media, tokens), f
}

func registerInput(t *testing.T, username string) RegisterInput {
	return RegisterInput{
		Username:   username,
		Email:      username + "@example.com",
		FullName:   "Test " + username,
		Password:   testPassword,
		AvatarPath: writeTemp(t, "avatar.png", testutil.TinyPNG(t, 32, 32)),
	}
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and uploads avatar", func(t *testing.T) {
		svc, f := newUserService(t)
		in := registerInput(t, "alice")
		in.Username = "  Alice "
		in.CoverPath = writeTemp(t, "cover.png", testutil.TinyPNG(t, 64, 32))

		user, err := svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Empty(t, user.Password)
		assert.Empty(t, user.RefreshToken)
		require.Equal(t, 2, f.uploader.Count())
		assert.Equal(t, storage.FolderAvatars, f.uploader.Uploads[0].Folder)
		assert.Equal(t, storage.FolderCovers, f.uploader.Uploads[1].Folder)
		assert.Equal(t, f.uploader.Uploads[0].URL, user.Avatar)
	})

	t.Run("lagging read replica", func(t *testing.T) {
		svc, f := newUserService(t)
		database.ReadDB = testutil.NewDB(t)
		t.Cleanup(func() { database.ReadDB = nil })

		user, err := svc.Register(ctx, registerInput(t, "dave"))
		require.NoError(t, err)
		assert.Equal(t, "dave", user.Username)
		assert.NotEmpty(t, user.ID)
		assert.Empty(t, user.Password)

		var stored models.User
		require.NoError(t, f.db.Where("id = ?", user.ID).First(&stored).Error)
		assert.NotEmpty(t, stored.Password)
	})

	t.Run("blank fields", func(t *testing.T) {
		svc, _ := newUserService(t)
		in := registerInput(t, "bob")
		in.FullName = "  "
		_, err := svc.Register(ctx, in)
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("duplicate is rejected before upload", func(t *testing.T) {
		svc, f := newUserService(t)
		testutil.SeedUser(t, f.db, "carol")

		in := registerInput(t, "other")
		in.Email = "CAROL@example.com"
		_, err := svc.Register(ctx, in)
		assertCode(t, err, models.CodeConflict)
		assert.Zero(t, f.uploader.Count())
	})

	t.Run("avatar required", func(t *testing.T) {
		svc, _ := newUserService(t)
		in := registerInput(t, "dave")
		in.AvatarPath = ""
		_, err := svc.Register(ctx, in)
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("upload failure", func(t *testing.T) {
		svc, f := newUserService(t)
		f.uploader.Err = errors.New("bucket unavailable")
		_, err := svc.Register(ctx, registerInput(t, "erin"))
		assertCode(t, err, models.CodeInternal)
	})
}

func TestUserService_LoginRefreshLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)
	registered, err := svc.Register(ctx, registerInput(t, "frank"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, "frank", "wrong-password-here")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = svc.Login(ctx, "nobody", testPassword)
	assertCode(t, err, models.CodeUnauthorized)

	auth, err := svc.Login(ctx, "FRANK@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, auth.User.ID)
	assert.NotEmpty(t, auth.AccessToken)
	assert.NotEmpty(t, auth.RefreshToken)

	refreshed, err := svc.Refresh(ctx, auth.RefreshToken)
	require.NoError(t, err)

	assert.NotEqual(t, auth.RefreshToken, refreshed.RefreshToken)
	_, err = svc.Refresh(ctx, auth.RefreshToken)
	assertCode(t, err, models.CodeUnauthorized)

	require.NoError(t, svc.Logout(ctx, registered.ID, refreshed.AccessToken))
	_, err = svc.tokens.VerifyAccess(ctx, refreshed.AccessToken)
	assertCode(t, err, models.CodeUnauthorized)

	_, err = svc.Refresh(ctx, refreshed.RefreshToken)
	assertCode(t, err, models.CodeUnauthorized)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)
	user, err := svc.Register(ctx, registerInput(t, "grace"))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "not-the-password", "another-long-password")
	assertCode(t, err, models.CodeValidation)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, testPassword, "another-long-password"))
	_, err = svc.Login(ctx, "grace", "another-long-password")
	assert.NoError(t, err)
}

func TestUserService_UpdateAccountDetails(t *testing.T) {
	ctx := context.Background()
	svc, f := newUserService(t)
	user := testutil.SeedUser(t, f.db, "heidi")
	testutil.SeedUser(t, f.db, "ivan")

	updated, err := svc.UpdateAccountDetails(ctx, user.ID, "Heidi H", "Heidi.New@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "heidi.new@example.com", updated.Email)
	assert.Equal(t, "Heidi H", updated.FullName)

	_, err = svc.UpdateAccountDetails(ctx, user.ID, "Heidi", "ivan@example.com")
	assertCode(t, err, models.CodeConflict)
}

func TestUserService_UpdateAvatarDiscardsOld(t *testing.T) {
	ctx := context.Background()
	svc, f := newUserService(t)
	user := testutil.SeedUser(t, f.db, "judy")

	updated, err := svc.UpdateAvatar(ctx, user.ID, writeTemp(t, "new.png", testutil.TinyPNG(t, 16, 16)))
	require.NoError(t, err)
	assert.NotEqual(t, user.Avatar, updated.Avatar)
	assert.Equal(t, []string{user.Avatar}, f.uploader.Deleted)

	_, err = svc.UpdateCoverImage(ctx, user.ID, "")
	assertCode(t, err, models.CodeValidation)
}

func TestUserService_ChannelProfileAndHistory(t *testing.T) {
	ctx := context.Background()
	svc, f := newUserService(t)
	owner := testutil.SeedUser(t, f.db, "kate")
	viewer := testutil.SeedUser(t, f.db, "leo")
	video := testutil.SeedVideo(t, f.db, owner.ID, "intro", true, 0)

	_, err := NewSubscriptionService(f.subs).Toggle(ctx, owner.ID, viewer.ID)
	require.NoError(t, err)

	profile, err := svc.GetChannelProfile(ctx, "KATE", viewer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.SubscribersCount)
	assert.True(t, profile.IsSubscribed)

	_, err = svc.GetChannelProfile(ctx, "  ", viewer.ID)
	assertCode(t, err, models.CodeValidation)

	_, err = f.videoService().Get(ctx, video.ID, viewer.ID)
	require.NoError(t, err)
	history, err := svc.GetWatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, video.ID, history[0].ID)
	assert.Equal(t, "kate", history[0].Owner.Username)
}
