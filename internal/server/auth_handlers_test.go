package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t, false)
	avatar := formFile{"avatar", "avatar.png", testutil.TinyPNG(t, 32, 32)}
	fields := map[string]string{
		"username": "Alice",
		"email":    "alice@example.com",
		"fullName": "Alice Liddell",
		"password": testPassword,
	}

	t.Run("missing avatar", func(t *testing.T) {
		resp, body := env.multipart(t, http.MethodPost, "/api/v1/users/register", "", fields)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeValidation, body.Code)
		assert.Zero(t, env.uploader.Count())
	})

	t.Run("created", func(t *testing.T) {
		resp, body := env.multipart(t, http.MethodPost, "/api/v1/users/register", "", fields, avatar,
			formFile{"coverImage", "cover.png", testutil.TinyPNG(t, 64, 32)})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.True(t, body.Success)

		user := decode[models.User](t, body)
		assert.Equal(t, "alice", user.Username)
		assert.NotEmpty(t, user.Avatar)
		assert.NotEmpty(t, user.CoverImage)
		assert.NotContains(t, string(body.Data), "password")
		assert.Equal(t, 2, env.uploader.Count())
	})

	t.Run("duplicate username uploads nothing", func(t *testing.T) {
		dup := map[string]string{
			"username": "alice",
			"email":    "other@example.com",
			"fullName": "Another Alice",
			"password": testPassword,
		}
		resp, body := env.multipart(t, http.MethodPost, "/api/v1/users/register", "", dup, avatar)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, models.CodeConflict, body.Code)
		assert.Equal(t, 2, env.uploader.Count())

		var count int64
		require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestLoginSetsCookies(t *testing.T) {
	env := newTestEnv(t, false)
	env.signup(t, "bob")

	resp, body := env.request(t, http.MethodPost, "/api/v1/users/login", "", fiber.Map{
		"email":    "BOB@example.com",
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	auth := decode[models.AuthResult](t, body)
	assert.Equal(t, auth.AccessToken, cookieValue(resp, middleware.AccessTokenCookie))
	assert.Equal(t, auth.RefreshToken, cookieValue(resp, refreshTokenCookie))

	resp, body = env.request(t, http.MethodPost, "/api/v1/users/login", "", fiber.Map{
		"username": "bob",
		"password": "Wrong-Passw0rd!",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, models.CodeUnauthorized, body.Code)
}

func TestCookieAuthAndRefresh(t *testing.T) {
	env := newTestEnv(t, false)
	env.signup(t, "carol")

	resp, body := env.request(t, http.MethodPost, "/api/v1/users/login", "", fiber.Map{
		"username": "carol",
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	first := decode[models.AuthResult](t, body)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: first.AccessToken})
	resp, body = env.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "carol", decode[models.User](t, body).Username)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: first.RefreshToken})
	resp, body = env.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	second := decode[models.AuthResult](t, body)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated-out refresh token is no longer accepted.
	resp, body = env.request(t, http.MethodPost, "/api/v1/users/refresh-token", "", fiber.Map{
		"refreshToken": first.RefreshToken,
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, models.CodeUnauthorized, body.Code)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	env := newTestEnv(t, true)
	_, token := env.signup(t, "dave")

	resp, _ := env.request(t, http.MethodGet, "/api/v1/users/current-user", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = env.request(t, http.MethodPost, "/api/v1/users/logout", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := env.request(t, http.MethodGet, "/api/v1/users/current-user", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, false)

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/users/current-user"},
		{http.MethodGet, "/api/v1/users/history"},
		{http.MethodPost, "/api/v1/videos"},
		{http.MethodPost, "/api/v1/likes/toggle/v/" + models.NewID()},
		{http.MethodGet, "/api/v1/likes/videos"},
		{http.MethodPost, "/api/v1/subscriptions/c/" + models.NewID()},
		{http.MethodPost, "/api/v1/playlists"},
		{http.MethodPost, "/api/v1/tweets"},
		{http.MethodGet, "/api/v1/ws"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			resp, body := env.request(t, r.method, r.path, "", nil)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, models.CodeUnauthorized, body.Code)
		})
	}
}

func TestAccountManagement(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.signup(t, "erin")
	env.signup(t, "frank")

	t.Run("update account conflict", func(t *testing.T) {
		resp, body := env.request(t, http.MethodPatch, "/api/v1/users/update-account", token, fiber.Map{
			"fullName": "Erin E",
			"email":    "frank@example.com",
		})
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, models.CodeConflict, body.Code)
	})

	t.Run("update account", func(t *testing.T) {
		resp, body := env.request(t, http.MethodPatch, "/api/v1/users/update-account", token, fiber.Map{
			"fullName": "Erin E",
			"email":    "erin.e@example.com",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		user := decode[models.User](t, body)
		assert.Equal(t, "Erin E", user.FullName)
		assert.Equal(t, "erin.e@example.com", user.Email)
	})

	t.Run("change password", func(t *testing.T) {
		resp, _ := env.request(t, http.MethodPost, "/api/v1/users/change-password", token, fiber.Map{
			"oldPassword": "Wrong-Passw0rd!",
			"newPassword": "An0ther-Passw0rd!",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		resp, _ = env.request(t, http.MethodPost, "/api/v1/users/change-password", token, fiber.Map{
			"oldPassword": testPassword,
			"newPassword": "An0ther-Passw0rd!",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, _ = env.request(t, http.MethodPost, "/api/v1/users/login", "", fiber.Map{
			"username": "erin",
			"password": "An0ther-Passw0rd!",
		})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("avatar replaced", func(t *testing.T) {
		before := env.uploader.Count()
		resp, body := env.multipart(t, http.MethodPatch, "/api/v1/users/avatar", token, nil,
			formFile{"avatar", "new.png", testutil.TinyPNG(t, 48, 48)})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, before+1, env.uploader.Count())
		assert.NotEmpty(t, decode[models.User](t, body).Avatar)
		assert.Len(t, env.uploader.Deleted, 1)
	})

	t.Run("cover image missing", func(t *testing.T) {
		resp, body := env.multipart(t, http.MethodPatch, "/api/v1/users/cover-image", token, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeValidation, body.Code)
	})
}

func TestChannelProfile(t *testing.T) {
	env := newTestEnv(t, false)
	gina, _ := env.signup(t, "gina")
	_, hankToken := env.signup(t, "hank")

	resp, _ := env.request(t, http.MethodPost, "/api/v1/subscriptions/c/"+gina.ID, hankToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := env.request(t, http.MethodGet, "/api/v1/users/c/gina", hankToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := decode[models.ChannelProfile](t, body)
	assert.Equal(t, int64(1), profile.SubscribersCount)
	assert.True(t, profile.IsSubscribed)

	resp, body = env.request(t, http.MethodGet, "/api/v1/users/c/gina", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, decode[models.ChannelProfile](t, body).IsSubscribed)

	resp, _ = env.request(t, http.MethodGet, "/api/v1/users/c/nobody", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
