package models

import "time"

// User is an account and channel. Password and RefreshToken are never serialised.
type User struct {
	Document
	Username     string `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string `gorm:"not null;index" json:"fullName"`
	Avatar       string `gorm:"not null" json:"avatar"`
	CoverImage   string `json:"coverImage"`
	Password     string `gorm:"not null" json:"-"`
	RefreshToken string `json:"-"`
}

// WatchHistory records the last time a user watched a video. One row per (user, video).
type WatchHistory struct {
	UserID    string    `gorm:"primaryKey;type:varchar(24)" json:"userId"`
	VideoID   string    `gorm:"primaryKey;type:varchar(24)" json:"videoId"`
	WatchedAt time.Time `gorm:"not null;index" json:"watchedAt"`
}

// TableName pins the table name.
func (WatchHistory) TableName() string { return "watch_history" }

// OwnerProfile is the public projection of a user embedded in read views.
type OwnerProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// ChannelProfile is a user's public channel page.
type ChannelProfile struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	Avatar            string    `json:"avatar"`
	CoverImage        string    `json:"coverImage"`
	SubscribersCount  int64     `json:"subscribersCount"`
	SubscribedToCount int64     `json:"subscribedToCount"`
	IsSubscribed      bool      `json:"isSubscribed"`
	CreatedAt         time.Time `json:"createdAt"`
}

// AuthResult is returned by login and token refresh.
type AuthResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
