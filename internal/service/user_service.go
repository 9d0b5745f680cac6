package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
	"vidtube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	uploader storage.Uploader
	media    *MediaService
	tokens   *TokenService
}

type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	AvatarPath string
	CoverPath  string
}

func NewUserService(
	userRepo repository.UserRepository,
	uploader storage.Uploader,
	media *MediaService,
	tokens *TokenService,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		uploader: uploader,
		media:    media,
		tokens:   tokens,
	}
}

// Register creates an account. Uniqueness is checked before any file is uploaded.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if validation.Blank(in.Username, in.Email, in.FullName, in.Password) {
		return nil, models.NewValidationError("All fields are required")
	}

	username := validation.NormalizeUsername(in.Username)
	email := validation.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateFullName(fullName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("User with email or username already exists")
	}

	if in.AvatarPath == "" {
		return nil, models.NewValidationError("Avatar file is required")
	}
	avatarURL, err := s.uploadImage(ctx, in.AvatarPath, ImageAvatar, storage.FolderAvatars)
	if err != nil {
		return nil, err
	}

	var coverURL string
	if in.CoverPath != "" {
		if coverURL, err = s.uploadImage(ctx, in.CoverPath, ImageCover, storage.FolderCovers); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		discard(ctx, s.uploader, avatarURL, coverURL)
		return nil, err
	}

	// The read replica may not have the row yet.
	user.Password = ""
	return user, nil
}

// Login checks credentials and issues a token pair. The refresh token is stored on the user.
func (s *UserService) Login(ctx context.Context, login, password string) (*models.AuthResult, error) {
	if validation.Blank(login) {
		return nil, models.NewValidationError("Username or email is required")
	}
	if password == "" {
		return nil, models.NewValidationError("Password is required")
	}

	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid user credentials")
		}
		return nil, err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid user credentials")
	}

	return s.issue(ctx, user)
}

// Refresh rotates the token pair. The presented token must match the stored one.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	if refreshToken == "" {
		return nil, models.NewUnauthorizedError("Unauthorized request")
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid refresh token")
		}
		return nil, err
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, models.NewUnauthorizedError("Refresh token is expired or used")
	}

	return s.issue(ctx, user)
}

func (s *UserService) issue(ctx context.Context, user *models.User) (*models.AuthResult, error) {
	access, refresh, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]any{"refresh_token": refresh}); err != nil {
		return nil, err
	}

	user.Password = ""
	user.RefreshToken = ""
	return &models.AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Logout clears the stored refresh token and revokes the presented access token.
func (s *UserService) Logout(ctx context.Context, userID, accessToken string) error {
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{"refresh_token": ""}); err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, accessToken)
}

func (s *UserService) GetCurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, userID)
}

func (s *UserService) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.User, error) {
	if validation.Blank(fullName, email) {
		return nil, models.NewValidationError("All fields are required")
	}
	email = validation.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateFullName(fullName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{
		"full_name": fullName,
		"email":     email,
	}); err != nil {
		return nil, err
	}
	return s.userRepo.GetProfile(ctx, userID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return models.NewValidationError("Old and new password are required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); cmpErr != nil {
		return models.NewValidationError("Invalid old password")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdateFields(ctx, userID, map[string]any{"password": string(hash)})
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, models.NewValidationError("Avatar file is missing")
	}
	return s.replaceImage(ctx, userID, localPath, ImageAvatar, storage.FolderAvatars, "avatar")
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, models.NewValidationError("Cover image file is missing")
	}
	return s.replaceImage(ctx, userID, localPath, ImageCover, storage.FolderCovers, "cover_image")
}

// replaceImage uploads the new image, points column at it and then removes the old object.
func (s *UserService) replaceImage(ctx context.Context, userID, localPath string, kind ImageKind, folder, column string) (*models.User, error) {
	current, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploadImage(ctx, localPath, kind, folder)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{column: url}); err != nil {
		return nil, err
	}

	old := current.Avatar
	if column == "cover_image" {
		old = current.CoverImage
	}
	discard(ctx, s.uploader, old)

	return s.userRepo.GetProfile(ctx, userID)
}

func (s *UserService) GetChannelProfile(ctx context.Context, username, requesterID string) (*models.ChannelProfile, error) {
	if validation.Blank(username) {
		return nil, models.NewValidationError("Username is missing")
	}
	return s.userRepo.GetChannelProfile(ctx, username, requesterID)
}

func (s *UserService) GetWatchHistory(ctx context.Context, userID string) ([]models.VideoView, error) {
	return s.userRepo.GetWatchHistory(ctx, userID)
}

func (s *UserService) uploadImage(ctx context.Context, localPath string, kind ImageKind, folder string) (string, error) {
	prepared, err := s.media.PrepareImage(ctx, localPath, kind)
	if err != nil {
		return "", err
	}
	url, err := s.uploader.Upload(ctx, prepared, folder)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}
