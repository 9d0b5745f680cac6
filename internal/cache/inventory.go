package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vidtube/internal/middleware"
	"vidtube/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix  = "user:%s"
	VideoKeyPrefix = "video:%s"
)

const (
	UserTTL  = 5 * time.Minute
	VideoTTL = 2 * time.Minute
)

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func VideoKey(videoID string) string {
	return fmt.Sprintf(VideoKeyPrefix, videoID)
}

// Aside implements cache-aside: dest is filled from Redis when the key exists, otherwise
// load fills it and the JSON encoding is stored for ttl. Without Redis it just calls load.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jerr := json.Unmarshal(raw, dest); jerr == nil {
			observability.CacheLookups.WithLabelValues(keyFamily(key), "hit").Inc()
			return nil
		}
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	observability.CacheLookups.WithLabelValues(keyFamily(key), "miss").Inc()

	if err := load(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}

func keyFamily(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateVideo(ctx context.Context, videoID string) {
	Invalidate(ctx, VideoKey(videoID))
}
