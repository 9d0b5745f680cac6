package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"vidtube/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const WebPQuality = 80

// ImageKind selects the bounding box an uploaded image is scaled into.
type ImageKind string

const (
	ImageAvatar    ImageKind = "avatar"
	ImageCover     ImageKind = "cover"
	ImageThumbnail ImageKind = "thumbnail"
)

var imageBounds = map[ImageKind]image.Point{
	ImageAvatar:    {X: 512, Y: 512},
	ImageCover:     {X: 2048, Y: 1152},
	ImageThumbnail: {X: 1280, Y: 720},
}

var allowedVideoTypes = map[string]struct{}{
	"video/mp4":  {},
	"video/webm": {},
	"video/avi":  {},
}

// MediaService checks uploaded temp files and normalises images to WebP before they
// are handed to storage.
type MediaService struct {
	tmpDir string
}

func NewMediaService(tmpDir string) *MediaService {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &MediaService{tmpDir: tmpDir}
}

// PrepareImage decodes the image at localPath, scales it to fit kind's bounds and writes
// it as WebP to a new temp file. The source file is removed on success.
func (m *MediaService) PrepareImage(_ context.Context, localPath string, kind ImageKind) (string, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	bounds, ok := imageBounds[kind]
	if !ok {
		bounds = imageBounds[ImageCover]
	}
	resized := resizeToFit(decoded, bounds.X, bounds.Y)

	encoded, err := encodeWebP(resized, WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	out := filepath.Join(m.tmpDir, string(kind)+"-"+uuid.NewString()+".webp")
	if err := writeBytesToFile(out, encoded); err != nil {
		return "", models.NewInternalError(err)
	}
	_ = os.Remove(localPath)
	return out, nil
}

// CheckVideo sniffs the first bytes of localPath and rejects anything that is not a
// supported video container.
func (m *MediaService) CheckVideo(localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return models.NewInternalError(err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	if _, ok := allowedVideoTypes[http.DetectContentType(head[:n])]; !ok {
		return models.NewValidationError("Invalid video file")
	}
	return nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
