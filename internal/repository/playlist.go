package repository

import (
	"context"
	"time"

	"vidtube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository defines persistence operations for playlists and their membership.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id string) (*models.Playlist, error)
	UpdateDetails(ctx context.Context, playlist *models.Playlist, name, description string) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	GetDetail(ctx context.Context, id string) (*models.PlaylistDetail, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error)
}

type playlistRepository struct {
	db *gorm.DB
}

// NewPlaylistRepository returns a new PlaylistRepository implementation.
func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Create(playlist).Error; err != nil {
		return models.NewInternalError(err)
	}
	playlist.VideoIDs = []string{}
	return nil
}

// GetByID loads the playlist with its member video ids in insertion order.
func (r *playlistRepository) GetByID(ctx context.Context, id string) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&playlist).Error; err != nil {
		return nil, notFoundOr(err, "Playlist", id)
	}

	ids := []string{}
	if err := r.db.WithContext(ctx).
		Model(&models.PlaylistVideo{}).
		Where("playlist_id = ?", id).
		Order("created_at ASC").
		Order("video_id ASC").
		Pluck("video_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	playlist.VideoIDs = ids
	return &playlist, nil
}

func (r *playlistRepository) UpdateDetails(ctx context.Context, playlist *models.Playlist, name, description string) error {
	err := r.db.WithContext(ctx).Model(playlist).Updates(map[string]any{
		"name":        name,
		"description": description,
	}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the membership rows, then the playlist.
func (r *playlistRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("playlist_id = ?", id).Delete(&models.PlaylistVideo{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Playlist{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// AddVideo inserts the membership row; adding an existing member is a no-op.
func (r *playlistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	row := models.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID, CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return models.NewInternalError(err)
	}
	return r.touch(ctx, playlistID)
}

func (r *playlistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	if err := r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&models.PlaylistVideo{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return r.touch(ctx, playlistID)
}

func (r *playlistRepository) touch(ctx context.Context, playlistID string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Playlist{}).
		Where("id = ?", playlistID).
		UpdateColumn("updated_at", time.Now()).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetDetail returns the playlist with its owner and only its published videos in insertion
// order. Totals cover the published videos only.
func (r *playlistRepository) GetDetail(ctx context.Context, id string) (*models.PlaylistDetail, error) {
	ctx, done := track(ctx, "GetDetail", "playlists")
	defer done()

	db := readDB(r.db).WithContext(ctx)

	var detail models.PlaylistDetail
	res := db.Table("playlists").
		Select("playlists.*, "+profileColumns).
		Joins("JOIN users ON users.id = playlists.owner_id").
		Where("playlists.id = ?", id).
		Limit(1).
		Scan(&detail)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Playlist", id)
	}

	videos := []models.Video{}
	if err := db.Table("playlist_videos").
		Select("videos.*").
		Joins("JOIN videos ON videos.id = playlist_videos.video_id").
		Where("playlist_videos.playlist_id = ? AND videos.is_published = ?", id, true).
		Order("playlist_videos.created_at ASC").
		Order("playlist_videos.video_id ASC").
		Scan(&videos).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	detail.Videos = videos
	detail.TotalVideos = int64(len(videos))
	for _, v := range videos {
		detail.TotalViews += v.Views
	}
	detail.VideoIDs = nil
	return &detail, nil
}

// ListByOwner returns the user's playlists, most recently updated first, with totals over
// published member videos.
func (r *playlistRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error) {
	ctx, done := track(ctx, "ListByOwner", "playlists")
	defer done()

	var summaries []models.PlaylistSummary
	err := readDB(r.db).WithContext(ctx).
		Table("playlists").
		Select("playlists.id, playlists.name, playlists.description, playlists.created_at, playlists.updated_at, "+
			"(SELECT COUNT(*) FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id "+
			"WHERE pv.playlist_id = playlists.id AND v.is_published = ?) AS total_videos, "+
			"(SELECT COALESCE(SUM(v.views), 0) FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id "+
			"WHERE pv.playlist_id = playlists.id AND v.is_published = ?) AS total_views", true, true).
		Where("playlists.owner_id = ?", ownerID).
		Order("playlists.updated_at DESC").
		Order("playlists.id DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if summaries == nil {
		summaries = []models.PlaylistSummary{}
	}
	return summaries, nil
}
