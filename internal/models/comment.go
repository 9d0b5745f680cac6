package models

// Comment is a comment on a video.
type Comment struct {
	Document
	Content string `gorm:"type:text;not null" json:"content"`
	VideoID string `gorm:"type:varchar(24);not null;index" json:"video"`
	OwnerID string `gorm:"type:varchar(24);not null;index" json:"owner"`
}

// CommentView is a comment with its owner's profile and like aggregates.
type CommentView struct {
	Comment
	Owner      OwnerProfile `gorm:"embedded;embeddedPrefix:profile_" json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// Tweet is a short text post on a user's channel.
type Tweet struct {
	Document
	Content string `gorm:"type:text;not null" json:"content"`
	OwnerID string `gorm:"type:varchar(24);not null;index" json:"owner"`
}

// TweetView is a tweet with its owner's profile and like aggregates.
type TweetView struct {
	Tweet
	Owner      OwnerProfile `gorm:"embedded;embeddedPrefix:profile_" json:"ownerDetails"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}
