package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vidtube/internal/observability"
)

// LocalUploader stores objects under a directory served at PublicURL.
type LocalUploader struct {
	BasePath  string
	PublicURL string
}

// NewLocalUploader creates basePath when missing.
func NewLocalUploader(basePath, publicURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalUploader{BasePath: basePath, PublicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (l *LocalUploader) Upload(ctx context.Context, localPath, folder string) (url string, err error) {
	if localPath == "" {
		return "", ErrEmptyPath
	}
	defer RemoveTemp(ctx, localPath)
	defer func() { record(folder, err) }()

	_, span := observability.StartStorageSpan(ctx, "local", folder)
	defer span.End()

	key := objectKey(localPath, folder)
	dst := filepath.Join(l.BasePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	in, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}

	return l.PublicURL + "/" + key, nil
}

// Delete removes the object behind url. Unknown URLs are ignored.
func (l *LocalUploader) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, l.PublicURL+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(l.BasePath, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
