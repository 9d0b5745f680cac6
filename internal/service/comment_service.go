package service

import (
	"context"

	"vidtube/internal/featureflags"
	"vidtube/internal/models"
	"vidtube/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	likeRepo    repository.LikeRepository
	flags       *featureflags.Manager
}

type CreateCommentInput struct {
	UserID  string
	VideoID string
	Content string
}

type UpdateCommentInput struct {
	UserID    string
	CommentID string
	Content   string
}

type DeleteCommentInput struct {
	UserID    string
	CommentID string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	videoRepo repository.VideoRepository,
	likeRepo repository.LikeRepository,
	flags *featureflags.Manager,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		likeRepo:    likeRepo,
		flags:       flags,
	}
}

func (s *CommentService) ListComments(ctx context.Context, videoID, requesterID string, page, limit int) (models.Page[models.CommentView], error) {
	if err := requireID(videoID, "video"); err != nil {
		return models.Page[models.CommentView]{}, err
	}
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		return models.Page[models.CommentView]{}, err
	}

	page, limit = NormalizePage(page, limit)
	views, total, err := s.commentRepo.ListByVideo(ctx, videoID, requesterID, page, limit)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	return models.NewPage(views, total, page, limit), nil
}

// CreateComment checks the video before the content, so a missing video always wins.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := requireID(in.VideoID, "video"); err != nil {
		return nil, err
	}
	if _, err := s.videoRepo.GetByID(ctx, in.VideoID); err != nil {
		return nil, err
	}

	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		VideoID: in.VideoID,
		OwnerID: in.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := requireID(in.CommentID, "comment"); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	content, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}
	if !ownedBy(comment.OwnerID, in.UserID) {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}

	if err := s.commentRepo.UpdateContent(ctx, comment, content); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes the comment and then the requester's likes on it. With
// purge_comment_likes enabled every like on the comment is removed.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	if err := requireID(in.CommentID, "comment"); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if !ownedBy(comment.OwnerID, in.UserID) {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return nil, err
	}

	likedBy := in.UserID
	if s.flags.Enabled(featureflags.PurgeCommentLikes, in.UserID) {
		likedBy = ""
	}
	if err := s.likeRepo.DeleteByTarget(ctx, models.LikeTargetComment, comment.ID, likedBy); err != nil {
		return nil, err
	}
	return comment, nil
}
