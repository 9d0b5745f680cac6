package server

import (
	"strconv"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateVideoRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
}

// ListVideos returns published videos
// @Summary List videos
// @Description Published videos, optionally filtered by owner and a title/description search.
// @Tags videos
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Param query query string false "Search text"
// @Param userId query string false "Owner id"
// @Param sortBy query string false "createdAt, views, duration or title"
// @Param sortType query string false "asc or desc"
// @Success 200 {object} models.APIResponse{data=models.Page[models.VideoView]}
// @Failure 400 {object} models.ErrorResponse
// @Router /videos [get]
func (s *Server) ListVideos(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	result, err := s.videoService.List(c.UserContext(), service.ListVideosInput{
		Page:        page,
		Limit:       limit,
		Query:       c.Query("query"),
		UserID:      c.Query("userId"),
		SortBy:      c.Query("sortBy"),
		SortType:    c.Query("sortType"),
		RequesterID: requesterID(c),
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, result, "Videos fetched successfully")
}

// PublishVideo uploads a video with its thumbnail
// @Summary Publish video
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param duration formData number false "Duration in seconds"
// @Param videoFile formData file true "Video file"
// @Param thumbnail formData file true "Thumbnail image"
// @Success 201 {object} models.APIResponse{data=models.Video}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /videos [post]
func (s *Server) PublishVideo(c *fiber.Ctx) error {
	var duration float64
	if raw := strings.TrimSpace(c.FormValue("duration")); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return mapServiceError(c, models.NewValidationError("Duration must be a number"))
		}
		duration = d
	}

	files, err := s.saveUploads(c, "videoFile", "thumbnail")
	if err != nil {
		return mapServiceError(c, err)
	}
	defer removeTemp(c, files...)

	ownerID := requesterID(c)
	video, err := s.videoService.Publish(c.UserContext(), service.PublishVideoInput{
		OwnerID:       ownerID,
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		Duration:      duration,
		VideoPath:     files[0],
		ThumbnailPath: files[1],
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	s.notifySubscribers(c.UserContext(), ownerID, notifications.EventVideoPublished, fiber.Map{
		"videoId": video.ID,
		"title":   video.Title,
		"ownerId": ownerID,
	})
	return models.Respond(c, fiber.StatusCreated, video, "Video published successfully")
}

// GetVideo returns a video and counts a view
// @Summary Get video
// @Description Unpublished videos are visible to their owner only.
// @Tags videos
// @Produce json
// @Param videoId path string true "Video id"
// @Success 200 {object} models.APIResponse{data=models.VideoView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{videoId} [get]
func (s *Server) GetVideo(c *fiber.Ctx) error {
	video, err := s.videoService.Get(c.UserContext(), c.Params("videoId"), requesterID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, video, "Video fetched successfully")
}

// UpdateVideo changes title, description or thumbnail
// @Summary Update video
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Param videoId path string true "Video id"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param thumbnail formData file false "Thumbnail image"
// @Success 200 {object} models.APIResponse{data=models.Video}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /videos/{videoId} [patch]
func (s *Server) UpdateVideo(c *fiber.Ctx) error {
	var req updateVideoRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}

	thumb, err := s.saveUpload(c, "thumbnail")
	if err != nil {
		return mapServiceError(c, err)
	}
	defer removeTemp(c, thumb)

	video, err := s.videoService.Update(c.UserContext(), service.UpdateVideoInput{
		VideoID:       c.Params("videoId"),
		RequesterID:   requesterID(c),
		Title:         req.Title,
		Description:   req.Description,
		ThumbnailPath: thumb,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, video, "Video updated successfully")
}

// DeleteVideo removes a video
// @Summary Delete video
// @Description Removes the video, its playlist memberships, its likes and its stored files.
// @Tags videos
// @Produce json
// @Param videoId path string true "Video id"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /videos/{videoId} [delete]
func (s *Server) DeleteVideo(c *fiber.Ctx) error {
	videoID := c.Params("videoId")
	if err := s.videoService.Delete(c.UserContext(), videoID, requesterID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"videoId": videoID}, "Video deleted successfully")
}

// TogglePublishStatus flips the published flag
// @Summary Toggle publish status
// @Tags videos
// @Produce json
// @Param videoId path string true "Video id"
// @Success 200 {object} models.APIResponse{data=object{isPublished=bool}}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /videos/toggle/publish/{videoId} [patch]
func (s *Server) TogglePublishStatus(c *fiber.Ctx) error {
	published, err := s.videoService.TogglePublish(c.UserContext(), c.Params("videoId"), requesterID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"isPublished": published}, "Publish status toggled successfully")
}
