package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/models"
	"vidtube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testEventuallyTimeout = 2 * time.Second
	testPollInterval      = 10 * time.Millisecond
	testPassword          = "Str0ng-Passw0rd!"
	mp4Header             = "\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"
)

type testEnv struct {
	srv      *Server
	app      *fiber.App
	db       *gorm.DB
	mr       *miniredis.Miniredis
	uploader *testutil.UploaderStub
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:               "0",
		Env:                "test",
		AllowedOrigins:     "http://localhost:5173",
		AccessTokenSecret:  "access-secret-at-least-32-characters-long",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenSecret: "refresh-secret-at-least-32-characters-long",
		RefreshTokenExpiry: 24 * time.Hour,
		StorageDriver:      "local",
		StorageLocalDir:    t.TempDir(),
		StoragePublicURL:   "http://localhost:8000/media",
		UploadTmpDir:       t.TempDir(),
		MaxUploadSizeMB:    5,
	}
}

// newTestEnv builds a server on in-memory SQLite. withRedis adds a miniredis instance for
// token revocation and notification fan-out.
func newTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	env := &testEnv{
		db:       testutil.NewDB(t),
		uploader: &testutil.UploaderStub{},
	}

	var rdb *redis.Client
	if withRedis {
		env.mr = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: env.mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	srv, err := NewServerWithDeps(testConfig(t), env.db, rdb, env.uploader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.hub.Shutdown(context.Background()) })
	env.srv = srv
	env.app = srv.App()
	return env
}

// envelope is the decoded success or error body.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Code       string          `json:"code"`
	Success    bool            `json:"success"`
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp, body
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(t, req)
}

type formFile struct {
	field, name string
	content     []byte
}

func (e *testEnv) multipart(t *testing.T, method, path, token string, fields map[string]string, files ...formFile) (*http.Response, envelope) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(t, req)
}

func decode[T any](t *testing.T, body envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body.Data, &out), string(body.Data))
	return out
}

// signup registers username through the API and logs in, returning the user and its
// access token.
func (e *testEnv) signup(t *testing.T, username string) (models.User, string) {
	t.Helper()
	resp, _ := e.multipart(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"fullName": "User " + username,
		"password": testPassword,
	}, formFile{"avatar", "avatar.png", testutil.TinyPNG(t, 32, 32)})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := e.request(t, http.MethodPost, "/api/v1/users/login", "", fiber.Map{
		"username": username,
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	auth := decode[models.AuthResult](t, body)
	return *auth.User, auth.AccessToken
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("bad"), fiber.StatusBadRequest},
		{models.NewUnauthorizedError("who"), fiber.StatusUnauthorized},
		{models.NewForbiddenError("no"), fiber.StatusForbidden},
		{models.NewNotFoundError("Video", "x"), fiber.StatusNotFound},
		{models.NewConflictError("dup"), fiber.StatusConflict},
		{models.NewInternalError(io.EOF), fiber.StatusInternalServerError},
		{io.EOF, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t, true)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	env.mr.Close()
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.request(t, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, models.CodeNotFound, body.Code)
}

func TestSetupMiddleware_RateLimitedResponseIncludesCORSHeaders(t *testing.T) {
	srv := &Server{config: &config.Config{AllowedOrigins: "http://localhost:5173"}}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 200; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/limited", nil)
	preflight.Header.Set("Origin", "http://localhost:5173")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
	presp, err := app.Test(preflight, -1)
	require.NoError(t, err)
	defer func() { _ = presp.Body.Close() }()
	assert.Equal(t, fiber.StatusNoContent, presp.StatusCode)
}
