package service

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/repository"
)

type TweetService struct {
	tweetRepo repository.TweetRepository
	userRepo  repository.UserRepository
	likeRepo  repository.LikeRepository
}

func NewTweetService(
	tweetRepo repository.TweetRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
) *TweetService {
	return &TweetService{tweetRepo: tweetRepo, userRepo: userRepo, likeRepo: likeRepo}
}

func (s *TweetService) Create(ctx context.Context, ownerID, content string) (*models.Tweet, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	tweet := &models.Tweet{Content: content, OwnerID: ownerID}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *TweetService) ListByUser(ctx context.Context, userID, requesterID string) ([]models.TweetView, error) {
	if err := requireID(userID, "user"); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	return s.tweetRepo.ListByOwner(ctx, userID, requesterID)
}

func (s *TweetService) Update(ctx context.Context, tweetID, requesterID, content string) (*models.Tweet, error) {
	tweet, err := s.owned(ctx, tweetID, requesterID)
	if err != nil {
		return nil, err
	}
	content, err = validateContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.tweetRepo.UpdateContent(ctx, tweet, content); err != nil {
		return nil, err
	}
	return s.tweetRepo.GetByID(ctx, tweet.ID)
}

// Delete removes the tweet and every like on it.
func (s *TweetService) Delete(ctx context.Context, tweetID, requesterID string) error {
	tweet, err := s.owned(ctx, tweetID, requesterID)
	if err != nil {
		return err
	}
	if err := s.tweetRepo.Delete(ctx, tweet.ID); err != nil {
		return err
	}
	return s.likeRepo.DeleteByTarget(ctx, models.LikeTargetTweet, tweet.ID, "")
}

func (s *TweetService) owned(ctx context.Context, tweetID, requesterID string) (*models.Tweet, error) {
	if err := requireID(tweetID, "tweet"); err != nil {
		return nil, err
	}
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if !ownedBy(tweet.OwnerID, requesterID) {
		return nil, models.NewForbiddenError("You can only modify your own tweets")
	}
	return tweet, nil
}
