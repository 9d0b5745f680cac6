package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repository"
)

type PlaylistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
}

type PlaylistInput struct {
	Name        string
	Description string
}

func NewPlaylistService(playlistRepo repository.PlaylistRepository, videoRepo repository.VideoRepository) *PlaylistService {
	return &PlaylistService{playlistRepo: playlistRepo, videoRepo: videoRepo}
}

func (in PlaylistInput) normalize() (PlaylistInput, error) {
	out := PlaylistInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if out.Name == "" || out.Description == "" {
		return out, models.NewValidationError("Name and description are required")
	}
	return out, nil
}

func (s *PlaylistService) Create(ctx context.Context, ownerID string, in PlaylistInput) (*models.Playlist, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	playlist := &models.Playlist{Name: in.Name, Description: in.Description, OwnerID: ownerID}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) Update(ctx context.Context, playlistID, requesterID string, in PlaylistInput) (*models.Playlist, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	playlist, err := s.owned(ctx, playlistID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.playlistRepo.UpdateDetails(ctx, playlist, in.Name, in.Description); err != nil {
		return nil, err
	}
	return s.playlistRepo.GetByID(ctx, playlist.ID)
}

func (s *PlaylistService) Delete(ctx context.Context, playlistID, requesterID string) error {
	playlist, err := s.owned(ctx, playlistID, requesterID)
	if err != nil {
		return err
	}
	return s.playlistRepo.Delete(ctx, playlist.ID)
}

// AddVideo adds videoID to the playlist. Adding a video already present changes nothing.
func (s *PlaylistService) AddVideo(ctx context.Context, playlistID, videoID, requesterID string) (*models.Playlist, error) {
	playlist, err := s.membershipTarget(ctx, playlistID, videoID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.playlistRepo.AddVideo(ctx, playlist.ID, videoID); err != nil {
		return nil, err
	}
	return s.playlistRepo.GetByID(ctx, playlist.ID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID, requesterID string) (*models.Playlist, error) {
	playlist, err := s.membershipTarget(ctx, playlistID, videoID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.playlistRepo.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		return nil, err
	}
	return s.playlistRepo.GetByID(ctx, playlist.ID)
}

func (s *PlaylistService) membershipTarget(ctx context.Context, playlistID, videoID, requesterID string) (*models.Playlist, error) {
	if err := requireID(playlistID, "playlist"); err != nil {
		return nil, err
	}
	if err := requireID(videoID, "video"); err != nil {
		return nil, err
	}
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		return nil, err
	}
	return s.owned(ctx, playlistID, requesterID)
}

func (s *PlaylistService) Get(ctx context.Context, playlistID string) (*models.PlaylistDetail, error) {
	if err := requireID(playlistID, "playlist"); err != nil {
		return nil, err
	}
	return s.playlistRepo.GetDetail(ctx, playlistID)
}

func (s *PlaylistService) ListByUser(ctx context.Context, userID string) ([]models.PlaylistSummary, error) {
	if err := requireID(userID, "user"); err != nil {
		return nil, err
	}
	return s.playlistRepo.ListByOwner(ctx, userID)
}

func (s *PlaylistService) owned(ctx context.Context, playlistID, requesterID string) (*models.Playlist, error) {
	if err := requireID(playlistID, "playlist"); err != nil {
		return nil, err
	}
	playlist, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if !ownedBy(playlist.OwnerID, requesterID) {
		return nil, models.NewForbiddenError("You can only modify your own playlists")
	}
	return playlist, nil
}
