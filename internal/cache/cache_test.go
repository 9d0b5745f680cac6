package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		SetClient(nil)
		mr.Close()
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()
	loads := 0
	load := func(dest *profile) func() error {
		return func() error {
			loads++
			*dest = profile{ID: "u1", Name: "alice"}
			return nil
		}
	}

	var first profile
	require.NoError(t, Aside(ctx, UserKey("u1"), &first, UserTTL, load(&first)))
	assert.Equal(t, "alice", first.Name)
	assert.True(t, mr.Exists("user:u1"))

	var second profile
	require.NoError(t, Aside(ctx, UserKey("u1"), &second, UserTTL, load(&second)))
	assert.Equal(t, "alice", second.Name)
	assert.Equal(t, 1, loads)

	mr.FastForward(UserTTL + time.Second)
	var third profile
	require.NoError(t, Aside(ctx, UserKey("u1"), &third, UserTTL, load(&third)))
	assert.Equal(t, 2, loads)
}

func TestAside_LoadErrorNotCached(t *testing.T) {
	mr := withMiniredis(t)
	var p profile
	err := Aside(context.Background(), UserKey("missing"), &p, UserTTL, func() error {
		return errors.New("not found")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("user:missing"))
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)
	called := false
	var p profile
	require.NoError(t, Aside(context.Background(), UserKey("x"), &p, UserTTL, func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestInvalidate(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set("user:u2", "{}"))
	require.NoError(t, mr.Set("video:v1", "{}"))

	InvalidateUser(context.Background(), "u2")
	InvalidateVideo(context.Background(), "v1")
	assert.False(t, mr.Exists("user:u2"))
	assert.False(t, mr.Exists("video:v1"))
}

func TestKeyFamily(t *testing.T) {
	assert.Equal(t, "user", keyFamily("user:abc"))
	assert.Equal(t, "plain", keyFamily("plain"))
}
