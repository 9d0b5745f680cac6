package seed

import (
	"context"
	"fmt"

	"vidtube/internal/database"
	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"gorm.io/gorm"
)

// Options control the size and shape of the seeded data set.
type Options struct {
	Users           int
	VideosPerUser   int
	CommentsPerUser int
	TweetsPerUser   int
	// MaxDays bounds how far back createdAt timestamps are spread.
	MaxDays int
	// RandSeed makes runs reproducible when non-zero.
	RandSeed   int64
	SkipBcrypt bool
	Clean      bool
}

// DefaultOptions is a small but well-connected data set.
func DefaultOptions() Options {
	return Options{
		Users:           25,
		VideosPerUser:   4,
		CommentsPerUser: 6,
		TweetsPerUser:   3,
		MaxDays:         90,
		Clean:           true,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users         int
	Videos        int
	Comments      int
	Likes         int
	Subscriptions int
	Playlists     int
	Tweets        int
	History       int
}

// Seeder populates a database using a Factory.
type Seeder struct {
	db   *gorm.DB
	opts Options
}

// NewSeeder returns a Seeder for db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts}
}

// ClearAll removes every row from every persistent table.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	all := database.PersistentModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := tx.Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	middleware.Logger.InfoContext(ctx, "seed data cleared")
	return nil
}

// Run creates users, their uploads and the engagement between them inside one transaction.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if s.opts.Users < 2 {
		return nil, fmt.Errorf("seed needs at least 2 users, got %d", s.opts.Users)
	}
	if s.opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	summary := &Summary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := NewFactory(tx, s.opts)
		if err != nil {
			return err
		}
		users, err := s.seedUsers(f, summary)
		if err != nil {
			return err
		}
		videos, err := s.seedVideos(f, users, summary)
		if err != nil {
			return err
		}
		if err := s.seedSubscriptions(f, users, summary); err != nil {
			return err
		}
		comments, err := s.seedComments(f, users, videos, summary)
		if err != nil {
			return err
		}
		tweets, err := s.seedTweets(f, users, summary)
		if err != nil {
			return err
		}
		if err := s.seedLikes(f, users, videos, comments, tweets, summary); err != nil {
			return err
		}
		return s.seedPlaylistsAndHistory(f, users, videos, summary)
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		"users", summary.Users,
		"videos", summary.Videos,
		"comments", summary.Comments,
		"likes", summary.Likes,
		"subscriptions", summary.Subscriptions,
		"playlists", summary.Playlists,
		"tweets", summary.Tweets,
	)
	return summary, nil
}

func (s *Seeder) seedUsers(f *Factory, summary *Summary) ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		user, err := f.CreateUser(i + 1)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	summary.Users = len(users)
	return users, nil
}

func (s *Seeder) seedVideos(f *Factory, users []*models.User, summary *Summary) ([]*models.Video, error) {
	var videos []*models.Video
	for _, owner := range users {
		for i := 0; i < s.opts.VideosPerUser; i++ {
			videos = append(videos, f.BuildVideo(owner))
		}
	}
	if len(videos) > 0 {
		if err := f.db.CreateInBatches(videos, 100).Error; err != nil {
			return nil, fmt.Errorf("create videos: %w", err)
		}
	}
	summary.Videos = len(videos)
	return videos, nil
}

// seedSubscriptions gives every user a handful of channels. Nobody subscribes to themselves.
func (s *Seeder) seedSubscriptions(f *Factory, users []*models.User, summary *Summary) error {
	for _, subscriber := range users {
		for _, channel := range users {
			if channel.ID == subscriber.ID || !f.chance(0.3) {
				continue
			}
			if err := f.CreateSubscription(subscriber, channel); err != nil {
				return fmt.Errorf("create subscription: %w", err)
			}
			summary.Subscriptions++
		}
	}
	return nil
}

func (s *Seeder) seedComments(f *Factory, users []*models.User, videos []*models.Video, summary *Summary) ([]*models.Comment, error) {
	published := publishedOnly(videos)
	if len(published) == 0 {
		return nil, nil
	}
	var comments []*models.Comment
	for _, author := range users {
		for i := 0; i < s.opts.CommentsPerUser; i++ {
			video := published[f.faker.Number(0, len(published)-1)]
			comments = append(comments, f.BuildComment(author, video))
		}
	}
	if len(comments) > 0 {
		if err := f.db.CreateInBatches(comments, 100).Error; err != nil {
			return nil, fmt.Errorf("create comments: %w", err)
		}
	}
	summary.Comments = len(comments)
	return comments, nil
}

func (s *Seeder) seedTweets(f *Factory, users []*models.User, summary *Summary) ([]*models.Tweet, error) {
	var tweets []*models.Tweet
	for _, owner := range users {
		for i := 0; i < s.opts.TweetsPerUser; i++ {
			tweets = append(tweets, f.BuildTweet(owner))
		}
	}
	if len(tweets) > 0 {
		if err := f.db.CreateInBatches(tweets, 100).Error; err != nil {
			return nil, fmt.Errorf("create tweets: %w", err)
		}
	}
	summary.Tweets = len(tweets)
	return tweets, nil
}

// seedLikes visits each (user, target) pair at most once, so the unique like index holds.
func (s *Seeder) seedLikes(f *Factory, users []*models.User, videos []*models.Video,
	comments []*models.Comment, tweets []*models.Tweet, summary *Summary) error {
	like := func(user *models.User, kind, id string, p float64) error {
		if !f.chance(p) {
			return nil
		}
		if err := f.CreateLike(user, kind, id); err != nil {
			return fmt.Errorf("create %s like: %w", kind, err)
		}
		summary.Likes++
		return nil
	}

	for _, user := range users {
		for _, v := range publishedOnly(videos) {
			if err := like(user, models.LikeTargetVideo, v.ID, 0.2); err != nil {
				return err
			}
		}
		for _, c := range comments {
			if err := like(user, models.LikeTargetComment, c.ID, 0.05); err != nil {
				return err
			}
		}
		for _, t := range tweets {
			if err := like(user, models.LikeTargetTweet, t.ID, 0.1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedPlaylistsAndHistory(f *Factory, users []*models.User, videos []*models.Video, summary *Summary) error {
	published := publishedOnly(videos)
	if len(published) == 0 {
		return nil
	}
	for _, user := range users {
		var picked []*models.Video
		seen := make(map[string]bool)
		watches := f.faker.Number(1, 5)
		for i := 0; i < watches; i++ {
			v := published[f.faker.Number(0, len(published)-1)]
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			picked = append(picked, v)
			if err := f.RecordWatch(user, v); err != nil {
				return fmt.Errorf("record watch: %w", err)
			}
			summary.History++
		}
		if !f.chance(0.6) {
			continue
		}
		if _, err := f.CreatePlaylist(user, picked); err != nil {
			return err
		}
		summary.Playlists++
	}
	return nil
}

func publishedOnly(videos []*models.Video) []*models.Video {
	out := make([]*models.Video, 0, len(videos))
	for _, v := range videos {
		if v.IsPublished {
			out = append(out, v)
		}
	}
	return out
}
