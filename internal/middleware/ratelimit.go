package middleware

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// CheckRateLimit reports whether `id` may perform one more `resource` action in the current window.
// Limits are not enforced when APP_ENV is "test", "development" or "stress".
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	switch env {
	case "test", "development", "stress":
		return true, nil
	}

	return countRequest(ctx, rdb, resource, id, limit, window)
}

func countRequest(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by the authenticated user id when present, otherwise by remote IP, and fails open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy returns a Fiber middleware enforcing `limit` requests per `window` with a specific failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(string); ok && uid != "" {
			id = "user:" + uid
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
					"resource", resource, "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"statusCode": fiber.StatusServiceUnavailable,
					"message":    "rate limit unavailable",
					"code":       "UNAVAILABLE",
					"success":    false,
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"statusCode": fiber.StatusTooManyRequests,
				"message":    "rate limit exceeded",
				"code":       "RATE_LIMITED",
				"success":    false,
			})
		}
		return c.Next()
	}
}
