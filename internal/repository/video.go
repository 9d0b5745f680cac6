package repository

import (
	"context"
	"strings"

	"vidtube/internal/cache"
	"vidtube/internal/models"

	"gorm.io/gorm"
)

// VideoFilter narrows and orders the published-video listing.
type VideoFilter struct {
	Query       string
	OwnerID     string
	SortBy      string
	SortType    string
	Page        int
	Limit       int
	RequesterID string
}

// VideoRepository defines persistence operations for videos.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id string) (*models.Video, error)
	GetView(ctx context.Context, id, requesterID string) (*models.VideoView, error)
	List(ctx context.Context, filter VideoFilter) ([]models.VideoView, int64, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository returns a new VideoRepository implementation.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

var videoSortColumns = map[string]string{
	"createdAt": "videos.created_at",
	"views":     "videos.views",
	"duration":  "videos.duration",
	"title":     "videos.title",
}

// videoViewSelect projects videos joined to users onto models.VideoView.
func videoViewSelect(requesterID string) (string, []any) {
	likes, args := likeAggregates("videos", models.LikeTargetVideo, requesterID)
	return "videos.*, " + profileColumns + ", " + likes, args
}

func (r *videoRepository) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	err := cache.Aside(ctx, cache.VideoKey(id), &video, cache.VideoTTL, func() error {
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
			return notFoundOr(err, "Video", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) GetView(ctx context.Context, id, requesterID string) (*models.VideoView, error) {
	ctx, done := track(ctx, "GetView", "videos")
	defer done()

	sel, args := videoViewSelect(requesterID)
	var view models.VideoView
	res := readDB(r.db).WithContext(ctx).
		Table("videos").
		Select(sel, args...).
		Joins("JOIN users ON users.id = videos.owner_id").
		Where("videos.id = ?", id).
		Limit(1).
		Scan(&view)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Video", id)
	}
	return &view, nil
}

func (r *videoRepository) List(ctx context.Context, f VideoFilter) ([]models.VideoView, int64, error) {
	ctx, done := track(ctx, "List", "videos")
	defer done()

	base := func() *gorm.DB {
		q := readDB(r.db).WithContext(ctx).Table("videos").Where("videos.is_published = ?", true)
		if f.OwnerID != "" {
			q = q.Where("videos.owner_id = ?", f.OwnerID)
		}
		if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
			like := "%" + term + "%"
			q = q.Where("(LOWER(videos.title) LIKE ? OR LOWER(videos.description) LIKE ?)", like, like)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	column, ok := videoSortColumns[f.SortBy]
	if !ok {
		column = videoSortColumns["createdAt"]
	}
	direction := "DESC"
	if strings.EqualFold(f.SortType, "asc") {
		direction = "ASC"
	}

	sel, args := videoViewSelect(f.RequesterID)
	var views []models.VideoView
	err := base().
		Select(sel, args...).
		Joins("JOIN users ON users.id = videos.owner_id").
		Order(column + " " + direction).
		Order("videos.id " + direction).
		Limit(f.Limit).
		Offset(pageOffset(f.Page, f.Limit)).
		Scan(&views).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return views, total, nil
}

func (r *videoRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video", id)
	}
	cache.InvalidateVideo(ctx, id)
	return nil
}

func (r *videoRepository) IncrementViews(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateVideo(ctx, id)
	return nil
}

// Delete removes the video's playlist memberships, then the video.
func (r *videoRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("video_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Video{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Video", id)
	}
	cache.InvalidateVideo(ctx, id)
	return nil
}
