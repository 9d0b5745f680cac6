package server

import (
	"net/http"
	"testing"

	"vidtube/internal/models"
	"vidtube/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) publish(t *testing.T, token, title string) models.Video {
	t.Helper()
	resp, body := e.multipart(t, http.MethodPost, "/api/v1/videos", token, map[string]string{
		"title":       title,
		"description": "all about " + title,
		"duration":    "61.5",
	},
		formFile{"videoFile", "clip.mp4", []byte(mp4Header)},
		formFile{"thumbnail", "thumb.png", testutil.TinyPNG(t, 40, 20)},
	)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body.Message)
	return decode[models.Video](t, body)
}

func TestPublishVideo(t *testing.T) {
	env := newTestEnv(t, false)
	owner, token := env.signup(t, "owner")
	uploadsBefore := env.uploader.Count()

	video := env.publish(t, token, "first")
	assert.Equal(t, owner.ID, video.OwnerID)
	assert.True(t, video.IsPublished)
	assert.Equal(t, 61.5, video.Duration)
	assert.Equal(t, uploadsBefore+2, env.uploader.Count())

	t.Run("missing thumbnail", func(t *testing.T) {
		resp, body := env.multipart(t, http.MethodPost, "/api/v1/videos", token, map[string]string{
			"title":       "second",
			"description": "no thumbnail",
		}, formFile{"videoFile", "clip.mp4", []byte(mp4Header)})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeValidation, body.Code)
	})

	t.Run("not a video", func(t *testing.T) {
		resp, _ := env.multipart(t, http.MethodPost, "/api/v1/videos", token, map[string]string{
			"title":       "third",
			"description": "text pretending to be video",
		},
			formFile{"videoFile", "clip.mp4", []byte("plain text")},
			formFile{"thumbnail", "thumb.png", testutil.TinyPNG(t, 40, 20)},
		)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad duration", func(t *testing.T) {
		resp, _ := env.multipart(t, http.MethodPost, "/api/v1/videos", token, map[string]string{
			"title":       "fourth",
			"description": "bad duration",
			"duration":    "long",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetVideoVisibility(t *testing.T) {
	env := newTestEnv(t, false)
	_, ownerToken := env.signup(t, "owner")
	_, viewerToken := env.signup(t, "viewer")
	video := env.publish(t, ownerToken, "clip")

	resp, body := env.request(t, http.MethodGet, "/api/v1/videos/"+video.ID, viewerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	view := decode[models.VideoView](t, body)
	assert.Equal(t, "owner", view.Owner.Username)
	assert.Equal(t, int64(1), view.Views)

	resp, body = env.request(t, http.MethodGet, "/api/v1/users/history", viewerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	history := decode[[]models.VideoView](t, body)
	require.Len(t, history, 1)
	assert.Equal(t, video.ID, history[0].ID)

	resp, body = env.request(t, http.MethodPatch, "/api/v1/videos/toggle/publish/"+video.ID, ownerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"isPublished":false}`, string(body.Data))

	resp, _ = env.request(t, http.MethodGet, "/api/v1/videos/"+video.ID, viewerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = env.request(t, http.MethodGet, "/api/v1/videos/"+video.ID, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = env.request(t, http.MethodGet, "/api/v1/videos/"+video.ID, ownerToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = env.request(t, http.MethodGet, "/api/v1/videos/not-an-id", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, body.Code)
}

func TestListVideos(t *testing.T) {
	env := newTestEnv(t, false)
	owner := testutil.SeedUser(t, env.db, "lister")
	testutil.SeedVideo(t, env.db, owner.ID, "cats", true, 5)
	testutil.SeedVideo(t, env.db, owner.ID, "dogs", true, 50)
	testutil.SeedVideo(t, env.db, owner.ID, "secret", false, 500)

	resp, body := env.request(t, http.MethodGet, "/api/v1/videos?sortBy=views&sortType=desc&limit=1", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	page := decode[models.Page[models.VideoView]](t, body)
	assert.Equal(t, int64(2), page.TotalDocs)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	require.Len(t, page.Docs, 1)
	assert.Equal(t, "dogs", page.Docs[0].Title)

	resp, body = env.request(t, http.MethodGet, "/api/v1/videos?query=cat&userId="+owner.ID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	page = decode[models.Page[models.VideoView]](t, body)
	require.Len(t, page.Docs, 1)
	assert.Equal(t, "cats", page.Docs[0].Title)
}

func TestUpdateAndDeleteVideo(t *testing.T) {
	env := newTestEnv(t, false)
	_, ownerToken := env.signup(t, "owner")
	_, otherToken := env.signup(t, "other")
	video := env.publish(t, ownerToken, "editable")

	resp, body := env.multipart(t, http.MethodPatch, "/api/v1/videos/"+video.ID, otherToken,
		map[string]string{"title": "hijacked"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeForbidden, body.Code)

	resp, body = env.request(t, http.MethodPatch, "/api/v1/videos/"+video.ID, ownerToken, fiber.Map{
		"title": "renamed",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decode[models.Video](t, body)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, video.Description, updated.Description)

	resp, body = env.multipart(t, http.MethodPatch, "/api/v1/videos/"+video.ID, ownerToken, nil,
		formFile{"thumbnail", "new.png", testutil.TinyPNG(t, 30, 30)})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEqual(t, video.Thumbnail, decode[models.Video](t, body).Thumbnail)

	resp, _ = env.request(t, http.MethodDelete, "/api/v1/videos/"+video.ID, otherToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body = env.request(t, http.MethodDelete, "/api/v1/videos/"+video.ID, ownerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"videoId":"`+video.ID+`"}`, string(body.Data))

	resp, _ = env.request(t, http.MethodGet, "/api/v1/videos/"+video.ID, ownerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
