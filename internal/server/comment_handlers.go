package server

import (
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

type contentRequest struct {
	Content string `json:"content"`
}

// ListComments returns a page of a video's comments, newest first
// @Summary List comments
// @Tags comments
// @Produce json
// @Param videoId path string true "Video id"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} models.APIResponse{data=models.Page[models.CommentView]}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{videoId} [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	result, err := s.commentService.ListComments(c.UserContext(), c.Params("videoId"), requesterID(c), page, limit)
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, result, "Comments fetched successfully")
}

// AddComment comments on a video
// @Summary Add comment
// @Tags comments
// @Accept json
// @Produce json
// @Param videoId path string true "Video id"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.APIResponse{data=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{videoId} [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	req := bindContent(c)

	userID := requesterID(c)
	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  userID,
		VideoID: c.Params("videoId"),
		Content: req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	if video, err := s.videoRepo.GetByID(c.UserContext(), comment.VideoID); err == nil {
		s.notifyOwner(c.UserContext(), video.OwnerID, userID, notifications.EventCommentAdded, map[string]any{
			"videoId":   video.ID,
			"commentId": comment.ID,
		})
	}
	return models.Respond(c, fiber.StatusCreated, comment, "Comment added successfully")
}

// UpdateComment edits the requester's comment
// @Summary Update comment
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path string true "Comment id"
// @Param request body object{content=string} true "Comment"
// @Success 200 {object} models.APIResponse{data=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/c/{commentId} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	req := bindContent(c)

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    requesterID(c),
		CommentID: c.Params("commentId"),
		Content:   req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, comment, "Comment updated successfully")
}

// DeleteComment removes the requester's comment
// @Summary Delete comment
// @Tags comments
// @Produce json
// @Param commentId path string true "Comment id"
// @Success 200 {object} models.APIResponse{data=object{commentId=string}}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/c/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	comment, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    requesterID(c),
		CommentID: c.Params("commentId"),
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"commentId": comment.ID}, "Comment deleted successfully")
}
