package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
)

// InvalidateSession removes every rate limit key held for a session.
// Called when a session's data is erased.
func (rl *RateLimiter) InvalidateSession(ctx context.Context, sessionID string) error {
	if !rl.redisClient.IsEnabled() {
		removed := rl.deleteFallback(func(key string) bool { return key == sessionKey(sessionID) })
		slog.Info("Invalidated session rate limits (in-memory)", "session_id", shortID(sessionID), "removed", removed)
		return nil
	}

	return rl.deleteByPattern(ctx, fmt.Sprintf("ratelimit:session:%s:*", sessionID))
}

// InvalidateIP removes the per-IP and per-endpoint keys for a client IP
func (rl *RateLimiter) InvalidateIP(ctx context.Context, ip string) error {
	if !rl.redisClient.IsEnabled() {
		suffix := ":" + ip
		removed := rl.deleteFallback(func(key string) bool {
			return key == ipKey(ip) || (strings.HasPrefix(key, "ratelimit:endpoint:") && strings.HasSuffix(key, suffix))
		})
		slog.Info("Invalidated IP rate limits (in-memory)", "ip", ip, "removed", removed)
		return nil
	}

	if err := rl.deleteByPattern(ctx, ipKey(ip)); err != nil {
		return err
	}
	return rl.deleteByPattern(ctx, fmt.Sprintf("ratelimit:endpoint:*:%s", ip))
}

// InvalidateAll removes all rate limit keys
func (rl *RateLimiter) InvalidateAll(ctx context.Context) error {
	if !rl.redisClient.IsEnabled() {
		rl.fallbackMutex.Lock()
		count := len(rl.fallbackLimiters)
		rl.fallbackLimiters = make(map[string]*rate.Limiter)
		rl.fallbackMutex.Unlock()

		slog.Warn("Invalidated all rate limits (in-memory)", "count", count)
		return nil
	}

	slog.Warn("Invalidating ALL rate limits", "pattern", "ratelimit:*")
	return rl.deleteByPattern(ctx, "ratelimit:*")
}

func (rl *RateLimiter) deleteFallback(match func(string) bool) int {
	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	removed := 0
	for key := range rl.fallbackLimiters {
		if match(key) {
			delete(rl.fallbackLimiters, key)
			removed++
		}
	}
	return removed
}

// deleteByPattern deletes all Redis keys matching a pattern using SCAN
func (rl *RateLimiter) deleteByPattern(ctx context.Context, pattern string) error {
	client := rl.redisClient.GetClient()

	var cursor uint64
	var deletedCount int

	for {
		keys, nextCursor, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			deleted, err := client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
			deletedCount += int(deleted)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	slog.Info("Deleted rate limit keys by pattern", "pattern", pattern, "count", deletedCount)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
