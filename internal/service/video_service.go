package service

import (
	"context"
	"strings"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
)

type VideoService struct {
	videoRepo repository.VideoRepository
	userRepo  repository.UserRepository
	likeRepo  repository.LikeRepository
	uploader  storage.Uploader
	media     *MediaService
}

type PublishVideoInput struct {
	OwnerID       string
	Title         string
	Description   string
	Duration      float64
	VideoPath     string
	ThumbnailPath string
}

// UpdateVideoInput changes only the non-nil fields. ThumbnailPath replaces the thumbnail
// when set.
type UpdateVideoInput struct {
	VideoID       string
	RequesterID   string
	Title         *string
	Description   *string
	ThumbnailPath string
}

type ListVideosInput struct {
	Page        int
	Limit       int
	Query       string
	UserID      string
	SortBy      string
	SortType    string
	RequesterID string
}

func NewVideoService(
	videoRepo repository.VideoRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	uploader storage.Uploader,
	media *MediaService,
) *VideoService {
	return &VideoService{
		videoRepo: videoRepo,
		userRepo:  userRepo,
		likeRepo:  likeRepo,
		uploader:  uploader,
		media:     media,
	}
}

func (s *VideoService) Publish(ctx context.Context, in PublishVideoInput) (*models.Video, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return nil, models.NewValidationError("Title and description are required")
	}
	if in.Duration < 0 {
		return nil, models.NewValidationError("Duration must not be negative")
	}
	if in.VideoPath == "" {
		return nil, models.NewValidationError("Video file is required")
	}
	if in.ThumbnailPath == "" {
		return nil, models.NewValidationError("Thumbnail file is required")
	}
	if err := s.media.CheckVideo(in.VideoPath); err != nil {
		return nil, err
	}

	thumbPath, err := s.media.PrepareImage(ctx, in.ThumbnailPath, ImageThumbnail)
	if err != nil {
		return nil, err
	}
	videoURL, err := s.uploader.Upload(ctx, in.VideoPath, storage.FolderVideos)
	if err != nil {
		storage.RemoveTemp(ctx, thumbPath)
		return nil, models.NewInternalError(err)
	}
	thumbURL, err := s.uploader.Upload(ctx, thumbPath, storage.FolderThumbnails)
	if err != nil {
		discard(ctx, s.uploader, videoURL)
		return nil, models.NewInternalError(err)
	}

	video := &models.Video{
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Title:       title,
		Description: description,
		Duration:    in.Duration,
		IsPublished: true,
		OwnerID:     in.OwnerID,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		discard(ctx, s.uploader, videoURL, thumbURL)
		return nil, err
	}
	return video, nil
}

// Get returns the video with its owner and like aggregates. Unpublished videos are only
// visible to their owner. Each successful fetch counts a view; authenticated requesters
// also get the video moved to the front of their watch history.
func (s *VideoService) Get(ctx context.Context, videoID, requesterID string) (*models.VideoView, error) {
	if err := requireID(videoID, "video"); err != nil {
		return nil, err
	}

	view, err := s.videoRepo.GetView(ctx, videoID, requesterID)
	if err != nil {
		return nil, err
	}
	if !view.IsPublished && !ownedBy(view.OwnerID, requesterID) {
		return nil, models.NewNotFoundError("Video", videoID)
	}

	if err := s.videoRepo.IncrementViews(ctx, videoID); err != nil {
		return nil, err
	}
	view.Views++

	if requesterID != "" {
		if err := s.userRepo.RecordWatch(ctx, requesterID, videoID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to record watch history", "video_id", videoID, "error", err)
		}
	}
	return view, nil
}

func (s *VideoService) List(ctx context.Context, in ListVideosInput) (models.Page[models.VideoView], error) {
	page, limit := NormalizePage(in.Page, in.Limit)
	if in.UserID != "" {
		if err := requireID(in.UserID, "user"); err != nil {
			return models.Page[models.VideoView]{}, err
		}
	}

	views, total, err := s.videoRepo.List(ctx, repository.VideoFilter{
		Query:       in.Query,
		OwnerID:     in.UserID,
		SortBy:      in.SortBy,
		SortType:    in.SortType,
		Page:        page,
		Limit:       limit,
		RequesterID: in.RequesterID,
	})
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	return models.NewPage(views, total, page, limit), nil
}

func (s *VideoService) Update(ctx context.Context, in UpdateVideoInput) (*models.Video, error) {
	video, err := s.owned(ctx, in.VideoID, in.RequesterID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title must not be empty")
		}
		fields["title"] = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, models.NewValidationError("Description must not be empty")
		}
		fields["description"] = description
	}
	if len(fields) == 0 && in.ThumbnailPath == "" {
		return nil, models.NewValidationError("Nothing to update")
	}

	oldThumb := ""
	if in.ThumbnailPath != "" {
		prepared, err := s.media.PrepareImage(ctx, in.ThumbnailPath, ImageThumbnail)
		if err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(ctx, prepared, storage.FolderThumbnails)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		fields["thumbnail"] = url
		oldThumb = video.Thumbnail
	}

	if err := s.videoRepo.UpdateFields(ctx, video.ID, fields); err != nil {
		return nil, err
	}
	discard(ctx, s.uploader, oldThumb)

	return s.videoRepo.GetByID(ctx, video.ID)
}

// Delete removes the video, its playlist memberships and its likes, then the stored files.
func (s *VideoService) Delete(ctx context.Context, videoID, requesterID string) error {
	video, err := s.owned(ctx, videoID, requesterID)
	if err != nil {
		return err
	}
	if err := s.videoRepo.Delete(ctx, video.ID); err != nil {
		return err
	}
	if err := s.likeRepo.DeleteByTarget(ctx, models.LikeTargetVideo, video.ID, ""); err != nil {
		return err
	}
	discard(ctx, s.uploader, video.VideoFile, video.Thumbnail)
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, videoID, requesterID string) (bool, error) {
	video, err := s.owned(ctx, videoID, requesterID)
	if err != nil {
		return false, err
	}
	published := !video.IsPublished
	if err := s.videoRepo.UpdateFields(ctx, video.ID, map[string]any{"is_published": published}); err != nil {
		return false, err
	}
	return published, nil
}

func (s *VideoService) owned(ctx context.Context, videoID, requesterID string) (*models.Video, error) {
	if err := requireID(videoID, "video"); err != nil {
		return nil, err
	}
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !ownedBy(video.OwnerID, requesterID) {
		return nil, models.NewForbiddenError("You can only modify your own videos")
	}
	return video, nil
}

