// Package bootstrap wires the database and Redis for command-line tools.
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoUsername is the account created by EnsureDemoUser.
const DemoUsername = "demo"

// InitRuntime connects to the database and Redis. Redis is optional; the returned client
// is nil when it is unreachable.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

// EnsureDemoUser creates the demo login with seed.DefaultPassword when it is missing.
// Outside development it does nothing.
func EnsureDemoUser(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") {
		middleware.Logger.Warn("demo user skipped outside development", "env", cfg.Env)
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", DemoUsername).First(&existing).Error
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	demo := &models.User{
		Username: DemoUsername,
		Email:    DemoUsername + "@vidtube.local",
		FullName: "Demo User",
		Avatar:   "https://i.pravatar.cc/300?u=" + DemoUsername,
		Password: string(hash),
	}
	if err := db.Create(demo).Error; err != nil {
		return err
	}
	middleware.Logger.Info("demo user created", "username", DemoUsername, "email", demo.Email)
	return nil
}
