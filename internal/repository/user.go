package repository

import (
	"context"
	"strings"
	"time"

	"vidtube/internal/cache"
	"vidtube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetProfile(ctx context.Context, id string) (*models.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	GetChannelProfile(ctx context.Context, username, requesterID string) (*models.ChannelProfile, error)
	RecordWatch(ctx context.Context, userID, videoID string) error
	GetWatchHistory(ctx context.Context, userID string) ([]models.VideoView, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return writeErr(err, "User with email or username already exists")
	}
	return nil
}

// GetByID loads the full record including credentials. Never cached.
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetProfile loads the public user record through the cache. Credentials are not populated.
func (r *userRepository) GetProfile(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).
			Select("id", "created_at", "updated_at", "username", "email", "full_name", "avatar", "cover_image").
			Where("id = ?", id).
			First(&user).Error; err != nil {
			return notFoundOr(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	login := strings.ToLower(strings.TrimSpace(usernameOrEmail))
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", login)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return writeErr(res.Error, "Email already in use")
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) GetChannelProfile(ctx context.Context, username, requesterID string) (*models.ChannelProfile, error) {
	ctx, done := track(ctx, "GetChannelProfile", "users")
	defer done()

	sel := "users.id, users.username, users.full_name, users.email, users.avatar, users.cover_image, users.created_at, " +
		"(SELECT COUNT(*) FROM subscriptions WHERE subscriptions.channel_id = users.id) AS subscribers_count, " +
		"(SELECT COUNT(*) FROM subscriptions WHERE subscriptions.subscriber_id = users.id) AS subscribed_to_count"
	args := []any{}
	if requesterID != "" {
		sel += ", EXISTS(SELECT 1 FROM subscriptions WHERE subscriptions.channel_id = users.id AND subscriptions.subscriber_id = ?) AS is_subscribed"
		args = append(args, requesterID)
	} else {
		sel += ", (1 = 0) AS is_subscribed"
	}

	var profile models.ChannelProfile
	res := readDB(r.db).WithContext(ctx).
		Table("users").
		Select(sel, args...).
		Where("users.username = ?", strings.ToLower(strings.TrimSpace(username))).
		Limit(1).
		Scan(&profile)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: "Channel does not exist"}
	}
	return &profile, nil
}

// RecordWatch moves videoID to the front of the user's watch history.
func (r *userRepository) RecordWatch(ctx context.Context, userID, videoID string) error {
	entry := models.WatchHistory{UserID: userID, VideoID: videoID, WatchedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched_at"}),
	}).Create(&entry).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetWatchHistory(ctx context.Context, userID string) ([]models.VideoView, error) {
	ctx, done := track(ctx, "GetWatchHistory", "watch_history")
	defer done()

	sel, args := videoViewSelect(userID)
	var views []models.VideoView
	err := readDB(r.db).WithContext(ctx).
		Table("watch_history").
		Select(sel, args...).
		Joins("JOIN videos ON videos.id = watch_history.video_id").
		Joins("JOIN users ON users.id = videos.owner_id").
		Where("watch_history.user_id = ?", userID).
		Where("(videos.is_published = ? OR videos.owner_id = ?)", true, userID).
		Order("watch_history.watched_at DESC").
		Scan(&views).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if views == nil {
		views = []models.VideoView{}
	}
	return views, nil
}
