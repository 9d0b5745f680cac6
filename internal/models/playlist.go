package models

import "time"

// Playlist is an ordered set of videos curated by its owner.
type Playlist struct {
	Document
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
	OwnerID     string `gorm:"type:varchar(24);not null;index" json:"owner"`

	VideoIDs []string `gorm:"-" json:"videos"`
}

// PlaylistVideo is a membership row. The composite key gives set semantics.
type PlaylistVideo struct {
	PlaylistID string    `gorm:"primaryKey;type:varchar(24)"`
	VideoID    string    `gorm:"primaryKey;type:varchar(24);index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// PlaylistDetail is a playlist with its owner and published member videos.
type PlaylistDetail struct {
	Playlist
	Owner       OwnerProfile `gorm:"embedded;embeddedPrefix:profile_" json:"owner"`
	Videos      []Video      `gorm:"-" json:"videos"`
	TotalVideos int64        `gorm:"-" json:"totalVideos"`
	TotalViews  int64        `gorm:"-" json:"totalViews"`
}

// PlaylistSummary is one row of a user's playlists.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalVideos int64     `json:"totalVideos"`
	TotalViews  int64     `json:"totalViews"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
