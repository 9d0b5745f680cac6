package server

import (
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

const refreshTokenCookie = "refreshToken"

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register handles user registration
// @Summary Register user
// @Description Create an account. Multipart form with the profile fields, a required avatar and an optional cover image.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param fullName formData string true "Full name"
// @Param password formData string true "Password"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	files, err := s.saveUploads(c, "avatar", "coverImage")
	if err != nil {
		return mapServiceError(c, err)
	}
	defer removeTemp(c, files...)

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:   c.FormValue("username"),
		Email:      c.FormValue("email"),
		FullName:   c.FormValue("fullName"),
		Password:   c.FormValue("password"),
		AvatarPath: files[0],
		CoverPath:  files[1],
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated, user, "User registered successfully")
}

// Login handles user authentication
// @Summary Log in
// @Description Authenticate with username or email and set the token cookies.
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Credentials"
// @Success 200 {object} models.APIResponse{data=models.AuthResult}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	login := req.Email
	if login == "" {
		login = req.Username
	}

	result, err := s.userService.Login(c.UserContext(), login, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	s.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return models.Respond(c, fiber.StatusOK, result, "User logged in successfully")
}

// RefreshToken rotates the token pair
// @Summary Refresh access token
// @Description Exchange the refresh token from the cookie or body for a new token pair.
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{refreshToken=string} false "Refresh token when no cookie is sent"
// @Success 200 {object} models.APIResponse{data=models.AuthResult}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/refresh-token [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(refreshTokenCookie)
	if token == "" && len(c.Body()) > 0 {
		var req refreshRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		token = req.RefreshToken
	}

	result, err := s.userService.Refresh(c.UserContext(), token)
	if err != nil {
		return mapServiceError(c, err)
	}

	s.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return models.Respond(c, fiber.StatusOK, result, "Access token refreshed")
}

// Logout handles user logout
// @Summary Log out
// @Description Clear the stored refresh token, revoke the access token and clear the cookies.
// @Tags users
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.userService.Logout(c.UserContext(), requesterID(c), middleware.ExtractToken(c)); err != nil {
		return mapServiceError(c, err)
	}

	c.ClearCookie(middleware.AccessTokenCookie, refreshTokenCookie)
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "User logged out")
}

func (s *Server) setAuthCookies(c *fiber.Ctx, access, refresh string) {
	now := time.Now()
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    access,
		Path:     "/",
		Expires:  now.Add(s.tokens.AccessTTL()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     refreshTokenCookie,
		Value:    refresh,
		Path:     "/api/v1/users",
		Expires:  now.Add(s.tokens.RefreshTTL()),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
