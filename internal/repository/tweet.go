package repository

import (
	"context"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// TweetRepository defines persistence operations for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, id string) (*models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID, requesterID string) ([]models.TweetView, error)
	UpdateContent(ctx context.Context, tweet *models.Tweet, content string) error
	Delete(ctx context.Context, id string) error
}

type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository returns a new TweetRepository implementation.
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tweetRepository) GetByID(ctx context.Context, id string) (*models.Tweet, error) {
	var tweet models.Tweet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tweet).Error; err != nil {
		return nil, notFoundOr(err, "Tweet", id)
	}
	return &tweet, nil
}

func (r *tweetRepository) ListByOwner(ctx context.Context, ownerID, requesterID string) ([]models.TweetView, error) {
	ctx, done := track(ctx, "ListByOwner", "tweets")
	defer done()

	likes, args := likeAggregates("tweets", models.LikeTargetTweet, requesterID)
	var views []models.TweetView
	err := readDB(r.db).WithContext(ctx).
		Table("tweets").
		Select("tweets.*, "+profileColumns+", "+likes, args...).
		Joins("JOIN users ON users.id = tweets.owner_id").
		Where("tweets.owner_id = ?", ownerID).
		Order("tweets.created_at DESC").
		Order("tweets.id DESC").
		Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if views == nil {
		views = []models.TweetView{}
	}
	return views, nil
}

func (r *tweetRepository) UpdateContent(ctx context.Context, tweet *models.Tweet, content string) error {
	if err := r.db.WithContext(ctx).Model(tweet).Update("content", content).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tweetRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Tweet{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
