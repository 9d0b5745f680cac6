package server

import (
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r playlistRequest) input() service.PlaylistInput {
	return service.PlaylistInput{Name: r.Name, Description: r.Description}
}

// CreatePlaylist creates a playlist owned by the requester
// @Summary Create playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string} true "Playlist"
// @Success 201 {object} models.APIResponse{data=models.Playlist}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /playlists [post]
func (s *Server) CreatePlaylist(c *fiber.Ctx) error {
	var req playlistRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	playlist, err := s.playlistService.Create(c.UserContext(), requesterID(c), req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, playlist, "Playlist created successfully")
}

// GetUserPlaylists lists a user's playlists, most recently updated first
// @Summary User playlists
// @Tags playlists
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {object} models.APIResponse{data=[]models.PlaylistSummary}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /playlists/user/{userId} [get]
func (s *Server) GetUserPlaylists(c *fiber.Ctx) error {
	playlists, err := s.playlistService.ListByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, playlists, "User playlists fetched successfully")
}

// GetPlaylist returns a playlist with its published videos
// @Summary Get playlist
// @Tags playlists
// @Produce json
// @Param playlistId path string true "Playlist id"
// @Success 200 {object} models.APIResponse{data=models.PlaylistDetail}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /playlists/{playlistId} [get]
func (s *Server) GetPlaylist(c *fiber.Ctx) error {
	playlist, err := s.playlistService.Get(c.UserContext(), c.Params("playlistId"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Playlist fetched successfully")
}

// UpdatePlaylist changes name and description
// @Summary Update playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Param playlistId path string true "Playlist id"
// @Param request body object{name=string,description=string} true "Playlist"
// @Success 200 {object} models.APIResponse{data=models.Playlist}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /playlists/{playlistId} [patch]
func (s *Server) UpdatePlaylist(c *fiber.Ctx) error {
	var req playlistRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	playlist, err := s.playlistService.Update(c.UserContext(), c.Params("playlistId"), requesterID(c), req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Playlist updated successfully")
}

// DeletePlaylist removes a playlist and its memberships
// @Summary Delete playlist
// @Tags playlists
// @Produce json
// @Param playlistId path string true "Playlist id"
// @Success 200 {object} models.APIResponse{data=object{playlistId=string}}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /playlists/{playlistId} [delete]
func (s *Server) DeletePlaylist(c *fiber.Ctx) error {
	playlistID := c.Params("playlistId")
	if err := s.playlistService.Delete(c.UserContext(), playlistID, requesterID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"playlistId": playlistID}, "Playlist deleted successfully")
}

// AddVideoToPlaylist adds a video; adding twice keeps one entry
// @Summary Add video to playlist
// @Tags playlists
// @Produce json
// @Param videoId path string true "Video id"
// @Param playlistId path string true "Playlist id"
// @Success 200 {object} models.APIResponse{data=models.Playlist}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /playlists/add/{videoId}/{playlistId} [patch]
func (s *Server) AddVideoToPlaylist(c *fiber.Ctx) error {
	playlist, err := s.playlistService.AddVideo(c.UserContext(), c.Params("playlistId"), c.Params("videoId"), requesterID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Video added to playlist successfully")
}

// RemoveVideoFromPlaylist removes a video from a playlist
// @Summary Remove video from playlist
// @Tags playlists
// @Produce json
// @Param videoId path string true "Video id"
// @Param playlistId path string true "Playlist id"
// @Success 200 {object} models.APIResponse{data=models.Playlist}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /playlists/remove/{videoId}/{playlistId} [patch]
func (s *Server) RemoveVideoFromPlaylist(c *fiber.Ctx) error {
	playlist, err := s.playlistService.RemoveVideo(c.UserContext(), c.Params("playlistId"), c.Params("videoId"), requesterID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Video removed from playlist successfully")
}
