package repository

import (
	"context"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes on videos, comments and tweets.
type LikeRepository interface {
	Toggle(ctx context.Context, targetType, targetID, userID string) (bool, error)
	DeleteByTarget(ctx context.Context, targetType, targetID, likedBy string) error
	ListLikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle removes the user's like on the target or adds it when absent. It returns
// whether the like exists afterwards.
func (r *likeRepository) Toggle(ctx context.Context, targetType, targetID, userID string) (bool, error) {
	like := &models.Like{TargetType: targetType, TargetID: targetID, LikedBy: userID}
	return toggle(ctx, r.db, like, map[string]any{
		"target_type": targetType,
		"target_id":   targetID,
		"liked_by":    userID,
	})
}

// DeleteByTarget removes likes on the target. An empty likedBy removes every like on it.
func (r *likeRepository) DeleteByTarget(ctx context.Context, targetType, targetID, likedBy string) error {
	q := r.db.WithContext(ctx).Where("target_type = ? AND target_id = ?", targetType, targetID)
	if likedBy != "" {
		q = q.Where("liked_by = ?", likedBy)
	}
	if err := q.Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListLikedVideos returns the user's liked videos, newest like first. Unpublished videos
// of other owners are left out.
func (r *likeRepository) ListLikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error) {
	ctx, done := track(ctx, "ListLikedVideos", "likes")
	defer done()

	likes, args := likeAggregates("videos", models.LikeTargetVideo, userID)

	var liked []models.LikedVideo
	err := readDB(r.db).WithContext(ctx).
		Table("likes").
		Select("videos.*, likes.created_at AS liked_at, "+profileColumns+", "+likes, args...).
		Joins("JOIN videos ON videos.id = likes.target_id").
		Joins("JOIN users ON users.id = videos.owner_id").
		Where("likes.target_type = ? AND likes.liked_by = ?", models.LikeTargetVideo, userID).
		Where("(videos.is_published = ? OR videos.owner_id = ?)", true, userID).
		Order("likes.created_at DESC").
		Order("likes.id DESC").
		Scan(&liked).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if liked == nil {
		liked = []models.LikedVideo{}
	}
	return liked, nil
}
