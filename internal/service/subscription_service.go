package service

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/observability"
	"vidtube/internal/repository"
)

type SubscriptionService struct {
	subRepo repository.SubscriptionRepository
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo}
}

// Toggle subscribes the requester to the channel, or unsubscribes when already subscribed.
func (s *SubscriptionService) Toggle(ctx context.Context, channelID, subscriberID string) (bool, error) {
	if err := requireID(channelID, "channel"); err != nil {
		return false, err
	}
	subscribed, err := s.subRepo.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return false, err
	}
	observability.RecordToggle("subscription", subscribed)
	return subscribed, nil
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channelID string) ([]models.Subscriber, error) {
	if err := requireID(channelID, "channel"); err != nil {
		return nil, err
	}
	return s.subRepo.ListSubscribers(ctx, channelID)
}

func (s *SubscriptionService) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	if err := requireID(subscriberID, "subscriber"); err != nil {
		return nil, err
	}
	return s.subRepo.ListSubscribedChannels(ctx, subscriberID)
}
