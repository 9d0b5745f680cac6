package models

import "time"

// Video holds metadata for an uploaded video. OwnerID never changes after creation.
type Video struct {
	Document
	VideoFile   string  `gorm:"not null" json:"videoFile"`
	Thumbnail   string  `gorm:"not null" json:"thumbnail"`
	Title       string  `gorm:"not null;index" json:"title"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Duration    float64 `gorm:"not null" json:"duration"`
	Views       int64   `gorm:"not null" json:"views"`
	IsPublished bool    `gorm:"not null;index" json:"isPublished"`
	OwnerID     string  `gorm:"type:varchar(24);not null;index" json:"owner"`
}

// VideoView is a video joined to its owner's profile with like aggregates.
type VideoView struct {
	Video
	Owner      OwnerProfile `gorm:"embedded;embeddedPrefix:profile_" json:"ownerDetails"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// LikedVideo is one entry of the liked-videos feed.
type LikedVideo struct {
	VideoView
	LikedAt time.Time `json:"likedAt"`
}
