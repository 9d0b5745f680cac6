package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidtube/internal/featureflags"
	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mp4Header is the smallest ftyp box http.DetectContentType reports as video/mp4.
var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")

type fixture struct {
	db       *gorm.DB
	uploader *testutil.UploaderStub
	media    *MediaService

	users     repository.UserRepository
	videos    repository.VideoRepository
	comments  repository.CommentRepository
	likes     repository.LikeRepository
	tweets    repository.TweetRepository
	subs      repository.SubscriptionRepository
	playlists repository.PlaylistRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return &fixture{
		db:        db,
		uploader:  &testutil.UploaderStub{},
		media:     NewMediaService(t.TempDir()),
		users:     repository.NewUserRepository(db),
		videos:    repository.NewVideoRepository(db),
		comments:  repository.NewCommentRepository(db),
		likes:     repository.NewLikeRepository(db),
		tweets:    repository.NewTweetRepository(db),
		subs:      repository.NewSubscriptionRepository(db),
		playlists: repository.NewPlaylistRepository(db),
	}
}

func (f *fixture) videoService() *VideoService {
	return NewVideoService(f.videos, f.users, f.likes, f.uploader, f.media)
}

func (f *fixture) commentService(flags string) *CommentService {
	return NewCommentService(f.comments, f.videos, f.likes, featureflags.NewManager(flags))
}

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "want %s, got %v", code, err)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name                string
		page, limit         int
		wantPage, wantLimit int
	}{
		{"defaults", 0, 0, 1, DefaultPageLimit},
		{"negative page", -3, 5, 1, 5},
		{"limit capped", 2, 1000, 2, MaxPageLimit},
		{"passthrough", 4, 20, 4, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := NormalizePage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestValidateContent(t *testing.T) {
	got, err := validateContent("  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = validateContent("   ")
	assertCode(t, err, models.CodeValidation)

	_, err = validateContent(strings.Repeat("a", maxContentLen+1))
	assertCode(t, err, models.CodeValidation)
}

func TestOwnedBy(t *testing.T) {
	assert.True(t, ownedBy("a", "a"))
	assert.False(t, ownedBy("a", "b"))
	assert.False(t, ownedBy("", ""))
}
