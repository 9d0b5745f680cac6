package service

import (
	"context"
	"image"
	"os"
	"testing"

	"vidtube/internal/models"
	"vidtube/internal/testutil"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaService_PrepareImage(t *testing.T) {
	media := NewMediaService(t.TempDir())

	t.Run("oversized avatar is scaled down", func(t *testing.T) {
		src := writeTemp(t, "avatar.png", testutil.TinyPNG(t, 1024, 256))
		out, err := media.PrepareImage(context.Background(), src, ImageAvatar)
		require.NoError(t, err)

		_, statErr := os.Stat(src)
		assert.True(t, os.IsNotExist(statErr), "source should be removed")

		f, err := os.Open(out)
		require.NoError(t, err)
		defer f.Close()
		cfg, err := webp.DecodeConfig(f)
		require.NoError(t, err)
		assert.Equal(t, 512, cfg.Width)
		assert.Equal(t, 128, cfg.Height)
	})

	t.Run("small image keeps its size", func(t *testing.T) {
		src := writeTemp(t, "thumb.png", testutil.TinyPNG(t, 64, 32))
		out, err := media.PrepareImage(context.Background(), src, ImageThumbnail)
		require.NoError(t, err)

		f, err := os.Open(out)
		require.NoError(t, err)
		defer f.Close()
		cfg, err := webp.DecodeConfig(f)
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Width)
	})

	t.Run("non-image rejected", func(t *testing.T) {
		src := writeTemp(t, "notes.txt", []byte("just some text"))
		_, err := media.PrepareImage(context.Background(), src, ImageCover)
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := media.PrepareImage(context.Background(), "/does/not/exist.png", ImageCover)
		assertCode(t, err, models.CodeInternal)
	})
}

func TestMediaService_CheckVideo(t *testing.T) {
	media := NewMediaService("")
	assert.NoError(t, media.CheckVideo(writeTemp(t, "clip.mp4", mp4Header)))

	err := media.CheckVideo(writeTemp(t, "clip.png", testutil.TinyPNG(t, 4, 4)))
	assertCode(t, err, models.CodeValidation)
}

func TestResizeToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4000, 1000))
	out := resizeToFit(src, 1280, 720)
	assert.Equal(t, 1280, out.Bounds().Dx())
	assert.Equal(t, 320, out.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, resizeToFit(small, 1280, 720))
}
