package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what a limited route does when Redis cannot answer.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// ErrLimiterUnavailable is returned when limits are enforced but no Redis
// client is configured.
var ErrLimiterUnavailable = errors.New("rate limiter has no redis client")

// Rule is a fixed-window budget for one named resource.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
	Policy FailPolicy
}

// Credential endpoints are the brute-force targets.
var (
	SignupRule = Rule{Name: "signup", Limit: 5, Window: 10 * time.Minute}
	LoginRule  = Rule{Name: "login", Limit: 10, Window: 5 * time.Minute}
)

// RateLimiter counts requests per rule and caller in Redis.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool
}

// NewRateLimiter builds a limiter that enforces limits only outside
// development and test.
func NewRateLimiter(rdb *redis.Client, cfg *config.Config) *RateLimiter {
	return &RateLimiter{rdb: rdb, enabled: cfg != nil && cfg.RateLimitsEnabled()}
}

// Allow records one hit for id against rule and reports whether it fits in
// the current window.
//
// The window key is created with its TTL (SET NX EX) and incremented in the
// same MULTI, so a counter can never outlive its window.
func (l *RateLimiter) Allow(ctx context.Context, rule Rule, id string) (bool, error) {
	if !l.enabled {
		return true, nil
	}
	if l.rdb == nil {
		return false, ErrLimiterUnavailable
	}

	key := fmt.Sprintf("rl:%s:%s", rule.Name, id)

	var hits *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, rule.Window)
		hits = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", rule.Name, err)
	}
	return hits.Val() <= int64(rule.Limit), nil
}

// Limit returns a Fiber handler enforcing rule. Callers are keyed by user id
// when authenticated, otherwise by remote IP.
func (l *RateLimiter) Limit(rule Rule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := UserID(c); ok {
			id = fmt.Sprintf("user:%d", uid)
		}

		allowed, err := l.Allow(c.UserContext(), rule, id)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limiter unavailable",
				slog.String("rule", rule.Name),
				slog.Bool("fail_closed", rule.Policy == FailClosed),
				slog.String("error", err.Error()),
			)
			if rule.Policy == FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Service temporarily unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(rule.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
