// Package storage uploads media files to object storage and returns their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidtube/internal/config"
	"vidtube/internal/middleware"
	"vidtube/internal/observability"

	"github.com/google/uuid"
)

// Folders used for uploaded media.
const (
	FolderAvatars    = "avatars"
	FolderCovers     = "covers"
	FolderVideos     = "videos"
	FolderThumbnails = "thumbnails"
)

// ErrEmptyPath is returned when Upload is called without a local file.
var ErrEmptyPath = errors.New("storage: no local file to upload")

// Uploader moves a local temp file into object storage. The local file is removed
// whether or not the upload succeeds.
type Uploader interface {
	Upload(ctx context.Context, localPath, folder string) (string, error)
	Delete(ctx context.Context, url string) error
}

// New builds the Uploader selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Uploader(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.StoragePublicURL,
		})
	case "", "local":
		return NewLocalUploader(cfg.StorageLocalDir, cfg.StoragePublicURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// objectKey names the stored object: folder/<uuid><ext>.
func objectKey(localPath, folder string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return strings.Trim(folder, "/") + "/" + uuid.NewString() + ext
}

// RemoveTemp deletes a local temp file. A file that is already gone is not an error.
func RemoveTemp(ctx context.Context, localPath string) {
	if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		middleware.Logger.WarnContext(ctx, "failed to remove temp upload", "path", localPath, "error", err)
	}
}

func record(folder string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.UploadsTotal.WithLabelValues(folder, outcome).Inc()
}
