package models

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 24)
	assert.True(t, IsValidID(id))
	assert.NotEqual(t, id, NewID())
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"64b7f0c2e4b0a1a2b3c4d5e6", true},
		{"64B7F0C2E4B0A1A2B3C4D5E6", true},
		{"", false},
		{"123", false},
		{"zzzzzzzzzzzzzzzzzzzzzzzz", false},
		{"64b7f0c2e4b0a1a2b3c4d5e6a", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidID(tt.id), tt.id)
	}
}

func TestDocumentBeforeCreate(t *testing.T) {
	d := &Document{}
	require.NoError(t, d.BeforeCreate(nil))
	assert.True(t, IsValidID(d.ID))

	d = &Document{ID: "64b7f0c2e4b0a1a2b3c4d5e6"}
	require.NoError(t, d.BeforeCreate(nil))
	assert.Equal(t, "64b7f0c2e4b0a1a2b3c4d5e6", d.ID)
}

func TestIsValidLikeTarget(t *testing.T) {
	assert.True(t, IsValidLikeTarget(LikeTargetVideo))
	assert.True(t, IsValidLikeTarget(LikeTargetComment))
	assert.True(t, IsValidLikeTarget(LikeTargetTweet))
	assert.False(t, IsValidLikeTarget("playlist"))
}

func TestNewPage(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		p := NewPage([]int{4, 5, 6}, 10, 2, 3)
		assert.Equal(t, 4, p.TotalPages)
		assert.True(t, p.HasPrevPage)
		assert.True(t, p.HasNextPage)
		require.NotNil(t, p.PrevPage)
		require.NotNil(t, p.NextPage)
		assert.Equal(t, 1, *p.PrevPage)
		assert.Equal(t, 3, *p.NextPage)
	})

	t.Run("empty result", func(t *testing.T) {
		p := NewPage[int](nil, 0, 1, 10)
		assert.NotNil(t, p.Docs)
		assert.Equal(t, 1, p.TotalPages)
		assert.False(t, p.HasPrevPage)
		assert.False(t, p.HasNextPage)
		assert.Nil(t, p.PrevPage)
		assert.Nil(t, p.NextPage)
	})
}

func TestHasCode(t *testing.T) {
	err := NewConflictError("taken")
	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestRespondWithError(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(errors.New("pq: secret detail")))
	})
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusForbidden, NewForbiddenError("not yours"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := make([]byte, 512)
	n, _ := resp.Body.Read(body)
	assert.NotContains(t, string(body[:n]), "secret detail")
	assert.Contains(t, string(body[:n]), `"success":false`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/forbidden", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	n, _ = resp.Body.Read(body)
	assert.Contains(t, string(body[:n]), `"code":"FORBIDDEN"`)
}
