// Package seed creates demo data for development databases and tests.
package seed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"vidtube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "Vidtube-Demo-2024!"

var usernameStrip = regexp.MustCompile(`[^a-z0-9_-]+`)

// Factory builds domain documents with fake content and persists them.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	hash  string
}

// NewFactory returns a Factory bound to db. A zero opts.RandSeed seeds from the clock.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := &Factory{db: db, opts: opts, faker: gofakeit.New(seed)}

	if opts.SkipBcrypt {
		f.hash = DefaultPassword
		return f, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	f.hash = string(hash)
	return f, nil
}

// createdAt returns a timestamp spread over the last MaxDays days.
func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().UTC().Add(-back)
}

// chance reports true with probability p.
func (f *Factory) chance(p float64) bool {
	return f.faker.Float64Range(0, 1) < p
}

// username derives a valid, unique handle. n disambiguates collisions between fake names.
func (f *Factory) username(n int) string {
	base := usernameStrip.ReplaceAllString(strings.ToLower(f.faker.Username()), "")
	if len(base) > 20 {
		base = base[:20]
	}
	if len(base) < 3 {
		base = "viewer"
	}
	return fmt.Sprintf("%s_%d", base, n)
}

// BuildUser returns an unsaved user. Overrides run last.
func (f *Factory) BuildUser(n int, overrides ...func(*models.User)) *models.User {
	username := f.username(n)
	user := &models.User{
		Username:   username,
		Email:      username + "@example.com",
		FullName:   f.faker.Name(),
		Avatar:     fmt.Sprintf("https://i.pravatar.cc/300?u=%s", f.faker.UUID()),
		CoverImage: fmt.Sprintf("https://picsum.photos/seed/%s/1600/400", f.faker.UUID()),
		Password:   f.hash,
	}
	user.CreatedAt = f.createdAt()
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildVideo returns an unsaved video owned by owner.
func (f *Factory) BuildVideo(owner *models.User, overrides ...func(*models.Video)) *models.Video {
	key := f.faker.UUID()
	video := &models.Video{
		VideoFile:   fmt.Sprintf("https://cdn.example.com/seed/videos/%s.mp4", key),
		Thumbnail:   fmt.Sprintf("https://picsum.photos/seed/%s/1280/720", key),
		Title:       strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), "."),
		Description: f.faker.Paragraph(1, 3, 12, "\n"),
		Duration:    float64(f.faker.Number(15, 3600)) + f.faker.Float64Range(0, 1),
		Views:       int64(f.faker.Number(0, 250000)),
		IsPublished: f.chance(0.85),
		OwnerID:     owner.ID,
	}
	video.CreatedAt = f.createdAt()
	for _, override := range overrides {
		override(video)
	}
	return video
}

// BuildComment returns an unsaved comment by author on video.
func (f *Factory) BuildComment(author *models.User, video *models.Video) *models.Comment {
	comment := &models.Comment{
		Content: f.faker.Sentence(f.faker.Number(4, 20)),
		VideoID: video.ID,
		OwnerID: author.ID,
	}
	comment.CreatedAt = f.createdAt()
	return comment
}

// BuildTweet returns an unsaved tweet by owner.
func (f *Factory) BuildTweet(owner *models.User) *models.Tweet {
	tweet := &models.Tweet{
		Content: f.faker.Sentence(f.faker.Number(5, 30)),
		OwnerID: owner.ID,
	}
	tweet.CreatedAt = f.createdAt()
	return tweet
}

// BuildPlaylist returns an unsaved playlist owned by owner.
func (f *Factory) BuildPlaylist(owner *models.User) *models.Playlist {
	playlist := &models.Playlist{
		Name:        f.faker.Adjective() + " " + f.faker.Noun(),
		Description: f.faker.Sentence(10),
		OwnerID:     owner.ID,
	}
	playlist.CreatedAt = f.createdAt()
	return playlist
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(n, overrides...)
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// CreateVideo builds and persists a video.
func (f *Factory) CreateVideo(owner *models.User, overrides ...func(*models.Video)) (*models.Video, error) {
	video := f.BuildVideo(owner, overrides...)
	if err := f.db.Create(video).Error; err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	return video, nil
}

// CreateLike persists a like from user on the target document.
func (f *Factory) CreateLike(user *models.User, targetType, targetID string) error {
	like := &models.Like{TargetType: targetType, TargetID: targetID, LikedBy: user.ID}
	like.CreatedAt = f.createdAt()
	return f.db.Create(like).Error
}

// CreateSubscription persists subscriber following channel.
func (f *Factory) CreateSubscription(subscriber, channel *models.User) error {
	sub := &models.Subscription{SubscriberID: subscriber.ID, ChannelID: channel.ID}
	sub.CreatedAt = f.createdAt()
	return f.db.Create(sub).Error
}

// CreatePlaylist persists a playlist holding videos.
func (f *Factory) CreatePlaylist(owner *models.User, videos []*models.Video) (*models.Playlist, error) {
	playlist := f.BuildPlaylist(owner)
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(playlist).Error; err != nil {
			return err
		}
		for _, v := range videos {
			member := &models.PlaylistVideo{PlaylistID: playlist.ID, VideoID: v.ID, CreatedAt: f.createdAt()}
			if err := tx.Create(member).Error; err != nil {
				return err
			}
			playlist.VideoIDs = append(playlist.VideoIDs, v.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}
	return playlist, nil
}

// RecordWatch adds video to user's watch history.
func (f *Factory) RecordWatch(user *models.User, video *models.Video) error {
	return f.db.Create(&models.WatchHistory{UserID: user.ID, VideoID: video.ID, WatchedAt: f.createdAt()}).Error
}
