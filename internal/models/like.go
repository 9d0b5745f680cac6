package models

// Target kinds a like can point at.
const (
	LikeTargetVideo   = "video"
	LikeTargetComment = "comment"
	LikeTargetTweet   = "tweet"
)

// Like records that LikedBy likes the (TargetType, TargetID) document.
type Like struct {
	Document
	TargetType string `gorm:"type:varchar(16);not null;uniqueIndex:idx_likes_user_target,priority:2;index:idx_likes_target,priority:1" json:"targetType"`
	TargetID   string `gorm:"type:varchar(24);not null;uniqueIndex:idx_likes_user_target,priority:3;index:idx_likes_target,priority:2" json:"targetId"`
	LikedBy    string `gorm:"type:varchar(24);not null;uniqueIndex:idx_likes_user_target,priority:1" json:"likedBy"`
}

// IsValidLikeTarget reports whether kind is a supported like target.
func IsValidLikeTarget(kind string) bool {
	switch kind {
	case LikeTargetVideo, LikeTargetComment, LikeTargetTweet:
		return true
	}
	return false
}
