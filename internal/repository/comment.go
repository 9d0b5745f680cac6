package repository

import (
	"context"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByVideo(ctx context.Context, videoID, requesterID string, page, limit int) ([]models.CommentView, int64, error)
	UpdateContent(ctx context.Context, comment *models.Comment, content string) error
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

// ListByVideo returns one page of a video's comments, newest first, with owner profile
// and like aggregates computed by the database.
func (r *commentRepository) ListByVideo(ctx context.Context, videoID, requesterID string, page, limit int) ([]models.CommentView, int64, error) {
	ctx, done := track(ctx, "ListByVideo", "comments")
	defer done()

	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Comment{}).Where("video_id = ?", videoID).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	likes, args := likeAggregates("comments", models.LikeTargetComment, requesterID)
	var views []models.CommentView
	err := db.Table("comments").
		Select("comments.*, "+profileColumns+", "+likes, args...).
		Joins("JOIN users ON users.id = comments.owner_id").
		Where("comments.video_id = ?", videoID).
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Limit(limit).
		Offset(pageOffset(page, limit)).
		Scan(&views).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return views, total, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *models.Comment, content string) error {
	if err := r.db.WithContext(ctx).Model(comment).Update("content", content).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
