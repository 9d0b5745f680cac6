package server

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/notifications"

	"github.com/gofiber/fiber/v2"
)

// ToggleVideoLike likes or unlikes a video
// @Summary Toggle video like
// @Tags likes
// @Produce json
// @Param videoId path string true "Video id"
// @Success 200 {object} models.APIResponse{data=object{isLiked=bool}}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /likes/toggle/v/{videoId} [post]
func (s *Server) ToggleVideoLike(c *fiber.Ctx) error {
	return s.toggleLike(c, models.LikeTargetVideo, c.Params("videoId"))
}

// ToggleCommentLike likes or unlikes a comment
// @Summary Toggle comment like
// @Tags likes
// @Produce json
// @Param commentId path string true "Comment id"
// @Success 200 {object} models.APIResponse{data=object{isLiked=bool}}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /likes/toggle/c/{commentId} [post]
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	return s.toggleLike(c, models.LikeTargetComment, c.Params("commentId"))
}

// ToggleTweetLike likes or unlikes a tweet
// @Summary Toggle tweet like
// @Tags likes
// @Produce json
// @Param tweetId path string true "Tweet id"
// @Success 200 {object} models.APIResponse{data=object{isLiked=bool}}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /likes/toggle/t/{tweetId} [post]
func (s *Server) ToggleTweetLike(c *fiber.Ctx) error {
	return s.toggleLike(c, models.LikeTargetTweet, c.Params("tweetId"))
}

func (s *Server) toggleLike(c *fiber.Ctx, targetType, targetID string) error {
	userID := requesterID(c)
	liked, err := s.likeService.Toggle(c.UserContext(), targetType, targetID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	if liked {
		s.notifyLike(c.UserContext(), targetType, targetID, userID)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"isLiked": liked}, "Like toggled successfully")
}

// notifyLike tells the owner of the liked document. Targets that no longer exist are skipped.
func (s *Server) notifyLike(ctx context.Context, targetType, targetID, userID string) {
	var ownerID, eventType string
	switch targetType {
	case models.LikeTargetVideo:
		video, err := s.videoRepo.GetByID(ctx, targetID)
		if err != nil {
			return
		}
		ownerID, eventType = video.OwnerID, notifications.EventVideoLiked
	case models.LikeTargetComment:
		comment, err := s.commentRepo.GetByID(ctx, targetID)
		if err != nil {
			return
		}
		ownerID, eventType = comment.OwnerID, notifications.EventCommentLiked
	case models.LikeTargetTweet:
		tweet, err := s.tweetRepo.GetByID(ctx, targetID)
		if err != nil {
			return
		}
		ownerID, eventType = tweet.OwnerID, notifications.EventTweetLiked
	default:
		return
	}

	s.notifyOwner(ctx, ownerID, userID, eventType, map[string]any{
		"targetType": targetType,
		"targetId":   targetID,
	})
}

// GetLikedVideos lists the requester's liked videos, newest like first
// @Summary Liked videos
// @Tags likes
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.LikedVideo}
// @Security BearerAuth
// @Router /likes/videos [get]
func (s *Server) GetLikedVideos(c *fiber.Ctx) error {
	videos, err := s.likeService.LikedVideos(c.UserContext(), requesterID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, videos, "Liked videos fetched successfully")
}
