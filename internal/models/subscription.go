package models

import "time"

// Subscription means SubscriberID follows the channel ChannelID.
type Subscription struct {
	Document
	SubscriberID string `gorm:"type:varchar(24);not null;uniqueIndex:idx_subscriptions_pair,priority:1" json:"subscriber"`
	ChannelID    string `gorm:"type:varchar(24);not null;uniqueIndex:idx_subscriptions_pair,priority:2;index" json:"channel"`
}

// Subscriber is one row of a channel's subscriber list.
type Subscriber struct {
	OwnerProfile
	SubscribedToSubscriber bool      `json:"subscribedToSubscriber"`
	SubscribersCount       int64     `json:"subscribersCount"`
	SubscribedAt           time.Time `json:"subscribedAt"`
}

// LatestVideo is the newest published upload shown next to a followed channel.
type LatestVideo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Thumbnail string    `json:"thumbnail"`
	VideoFile string    `json:"videoFile"`
	Duration  float64   `json:"duration"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
	OwnerID   string    `json:"-"`
}

// SubscribedChannel is one row of a user's followed channels.
type SubscribedChannel struct {
	OwnerProfile
	SubscribedAt time.Time    `json:"subscribedAt"`
	LatestVideo  *LatestVideo `gorm:"-" json:"latestVideo"`
}
