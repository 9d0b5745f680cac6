package service

import (
	"context"
	"testing"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T) (*TokenService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		AccessTokenSecret:  "access-secret-at-least-32-characters-long",
		RefreshTokenSecret: "refresh-secret-at-least-32-characters-long",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 240 * time.Hour,
	}
	return NewTokenService(cfg, func() *redis.Client { return rdb }), mr
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens, _ := newTokenService(t)
	user := &models.User{Document: models.Document{ID: models.NewID()}, Username: "alice", Email: "alice@example.com"}

	access, refresh, err := tokens.IssuePair(user)
	require.NoError(t, err)

	id, err := tokens.VerifyAccess(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	id, err = tokens.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	t.Run("tokens are not interchangeable", func(t *testing.T) {
		_, err := tokens.VerifyAccess(context.Background(), refresh)
		assertCode(t, err, models.CodeUnauthorized)
		_, err = tokens.VerifyRefresh(access)
		assertCode(t, err, models.CodeUnauthorized)
	})

	t.Run("expired access token", func(t *testing.T) {
		tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { tokens.now = time.Now }()
		_, err := tokens.VerifyAccess(context.Background(), access)
		assertCode(t, err, models.CodeUnauthorized)
	})
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	tokens, _ := newTokenService(t)
	claims := Claims{Type: tokenTypeAccess, RegisteredClaims: tokens.registered(models.NewID(), time.Now(), time.Hour)}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(tokens.accessSecret)
	require.NoError(t, err)

	_, err = tokens.VerifyAccess(context.Background(), raw)
	assertCode(t, err, models.CodeUnauthorized)
}

func TestTokenService_Revoke(t *testing.T) {
	tokens, mr := newTokenService(t)
	user := &models.User{Document: models.Document{ID: models.NewID()}}
	access, _, err := tokens.IssuePair(user)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(context.Background(), access))

	_, err = tokens.VerifyAccess(context.Background(), access)
	assertCode(t, err, models.CodeUnauthorized)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], blacklistPrefix)
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestTokenService_WithoutRedis(t *testing.T) {
	cfg := &config.Config{
		AccessTokenSecret:  "a-secret",
		RefreshTokenSecret: "r-secret",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
	}
	tokens := NewTokenService(cfg, nil)
	access, _, err := tokens.IssuePair(&models.User{Document: models.Document{ID: models.NewID()}})
	require.NoError(t, err)

	assert.NoError(t, tokens.Revoke(context.Background(), access))
	_, err = tokens.VerifyAccess(context.Background(), access)
	assert.NoError(t, err)
}
