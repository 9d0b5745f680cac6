package repository

import (
	"context"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository defines persistence operations for channel subscriptions.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.Subscriber, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	sub := &models.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	return toggle(ctx, r.db, sub, map[string]any{
		"subscriber_id": subscriberID,
		"channel_id":    channelID,
	})
}

// ListSubscribers returns the channel's subscribers, newest first, with whether the channel
// follows each of them back and each subscriber's own subscriber count.
func (r *subscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.Subscriber, error) {
	ctx, done := track(ctx, "ListSubscribers", "subscriptions")
	defer done()

	var subs []models.Subscriber
	err := readDB(r.db).WithContext(ctx).
		Table("subscriptions").
		Select("users.id, users.username, users.full_name, users.avatar, subscriptions.created_at AS subscribed_at, "+
			"EXISTS(SELECT 1 FROM subscriptions back WHERE back.subscriber_id = ? AND back.channel_id = users.id) AS subscribed_to_subscriber, "+
			"(SELECT COUNT(*) FROM subscriptions theirs WHERE theirs.channel_id = users.id) AS subscribers_count", channelID).
		Joins("JOIN users ON users.id = subscriptions.subscriber_id").
		Where("subscriptions.channel_id = ?", channelID).
		Order("subscriptions.created_at DESC").
		Order("subscriptions.id DESC").
		Scan(&subs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if subs == nil {
		subs = []models.Subscriber{}
	}
	return subs, nil
}

// ListSubscribedChannels returns the channels the user follows, newest subscription first,
// each with its most recently uploaded published video.
func (r *subscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	ctx, done := track(ctx, "ListSubscribedChannels", "subscriptions")
	defer done()

	db := readDB(r.db).WithContext(ctx)

	var channels []models.SubscribedChannel
	err := db.Table("subscriptions").
		Select("users.id, users.username, users.full_name, users.avatar, subscriptions.created_at AS subscribed_at").
		Joins("JOIN users ON users.id = subscriptions.channel_id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("subscriptions.created_at DESC").
		Order("subscriptions.id DESC").
		Scan(&channels).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(channels) == 0 {
		return []models.SubscribedChannel{}, nil
	}

	ids := make([]string, len(channels))
	for i := range channels {
		ids[i] = channels[i].ID
	}

	var latest []models.LatestVideo
	err = db.Table("videos").
		Select("videos.id, videos.title, videos.thumbnail, videos.video_file, videos.duration, videos.views, videos.created_at, videos.owner_id").
		Where("videos.owner_id IN ? AND videos.is_published = ?", ids, true).
		Where("videos.created_at = (SELECT MAX(newest.created_at) FROM videos newest WHERE newest.owner_id = videos.owner_id AND newest.is_published = ?)", true).
		Order("videos.id DESC").
		Scan(&latest).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	byOwner := make(map[string]*models.LatestVideo, len(latest))
	for i := range latest {
		if _, seen := byOwner[latest[i].OwnerID]; !seen {
			byOwner[latest[i].OwnerID] = &latest[i]
		}
	}
	for i := range channels {
		channels[i].LatestVideo = byOwner[channels[i].ID]
	}
	return channels, nil
}
