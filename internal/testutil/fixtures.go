// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path"
	"sync"
	"testing"

	"vidtube/internal/database"
	"vidtube/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens an isolated in-memory SQLite database with every persistent model migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", models.NewID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// SeedUser inserts a user with predictable credentials derived from username.
func SeedUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "User " + username,
		Avatar:   "https://cdn.example.com/avatars/" + username + ".webp",
		Password: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

// SeedVideo inserts a video owned by ownerID.
func SeedVideo(t testing.TB, db *gorm.DB, ownerID, title string, published bool, views int64) *models.Video {
	t.Helper()
	video := &models.Video{
		VideoFile:   "https://cdn.example.com/videos/" + title + ".mp4",
		Thumbnail:   "https://cdn.example.com/thumbnails/" + title + ".webp",
		Title:       title,
		Description: "about " + title,
		Duration:    42.5,
		Views:       views,
		IsPublished: published,
		OwnerID:     ownerID,
	}
	if err := db.Create(video).Error; err != nil {
		t.Fatalf("seed video %s: %v", title, err)
	}
	return video
}

// Upload is one call recorded by UploaderStub.
type Upload struct {
	LocalPath string
	Folder    string
	URL       string
}

// UploaderStub is an in-memory object storage double that records uploads.
type UploaderStub struct {
	mu      sync.Mutex
	Uploads []Upload
	Deleted []string
	Err     error
}

// Upload records the call and returns a deterministic URL. Like the real uploaders it
// removes the local file whether or not the upload succeeds.
func (s *UploaderStub) Upload(_ context.Context, localPath, folder string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(localPath)
	if s.Err != nil {
		return "", s.Err
	}
	url := "https://cdn.example.com/" + folder + "/" + path.Base(localPath)
	s.Uploads = append(s.Uploads, Upload{LocalPath: localPath, Folder: folder, URL: url})
	return url, nil
}

// Delete records the removed URL.
func (s *UploaderStub) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, url)
	return nil
}

// Count returns the number of recorded uploads.
func (s *UploaderStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Uploads)
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
