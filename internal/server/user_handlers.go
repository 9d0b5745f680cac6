package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// GetCurrentUser returns the authenticated user
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/current-user [get]
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, err := s.userService.GetCurrentUser(c.UserContext(), requesterID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user, "Current user fetched successfully")
}

// UpdateAccountDetails changes full name and email
// @Summary Update account details
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{fullName=string,email=string} true "Account details"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/update-account [patch]
func (s *Server) UpdateAccountDetails(c *fiber.Ctx) error {
	var req updateAccountRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateAccountDetails(c.UserContext(), requesterID(c), req.FullName, req.Email)
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user, "Account details updated successfully")
}

// ChangePassword replaces the password after checking the old one
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{oldPassword=string,newPassword=string} true "Passwords"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/change-password [post]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.userService.ChangePassword(c.UserContext(), requesterID(c), req.OldPassword, req.NewPassword); err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "Password changed successfully")
}

// UpdateAvatar replaces the avatar image
// @Summary Update avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/avatar [patch]
func (s *Server) UpdateAvatar(c *fiber.Ctx) error {
	return s.replaceUserImage(c, "avatar", "Avatar image updated successfully")
}

// UpdateCoverImage replaces the cover image
// @Summary Update cover image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param coverImage formData file true "Cover image"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/cover-image [patch]
func (s *Server) UpdateCoverImage(c *fiber.Ctx) error {
	return s.replaceUserImage(c, "coverImage", "Cover image updated successfully")
}

func (s *Server) replaceUserImage(c *fiber.Ctx, field, message string) error {
	path, err := s.saveUpload(c, field)
	if err != nil {
		return mapServiceError(c, err)
	}
	defer removeTemp(c, path)

	var user *models.User
	if field == "avatar" {
		user, err = s.userService.UpdateAvatar(c.UserContext(), requesterID(c), path)
	} else {
		user, err = s.userService.UpdateCoverImage(c.UserContext(), requesterID(c), path)
	}
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user, message)
}

// GetChannelProfile returns a user's public channel
// @Summary Channel profile
// @Description Subscriber counts and, for authenticated requesters, whether they subscribe.
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.APIResponse{data=models.ChannelProfile}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/c/{username} [get]
func (s *Server) GetChannelProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetChannelProfile(c.UserContext(), c.Params("username"), requesterID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, profile, "User channel fetched successfully")
}

// GetWatchHistory lists watched videos, most recent first
// @Summary Watch history
// @Tags users
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.VideoView}
// @Security BearerAuth
// @Router /users/history [get]
func (s *Server) GetWatchHistory(c *fiber.Ctx) error {
	history, err := s.userService.GetWatchHistory(c.UserContext(), requesterID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, history, "Watch history fetched successfully")
}
