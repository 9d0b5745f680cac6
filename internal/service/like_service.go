package service

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/observability"
	"vidtube/internal/repository"
)

type LikeService struct {
	likeRepo repository.LikeRepository
}

func NewLikeService(likeRepo repository.LikeRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo}
}

// Toggle flips the user's like on the target and reports whether it is now liked.
// The target's existence is not checked.
func (s *LikeService) Toggle(ctx context.Context, targetType, targetID, userID string) (bool, error) {
	if !models.IsValidLikeTarget(targetType) {
		return false, models.NewValidationError("Invalid like target")
	}
	if err := requireID(targetID, targetType); err != nil {
		return false, err
	}

	liked, err := s.likeRepo.Toggle(ctx, targetType, targetID, userID)
	if err != nil {
		return false, err
	}
	observability.RecordToggle("like_"+targetType, liked)
	return liked, nil
}

func (s *LikeService) LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error) {
	return s.likeRepo.ListLikedVideos(ctx, userID)
}
