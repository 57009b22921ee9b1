package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travel-companion-system/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LeaderboardCache is an explicit, timestamped snapshot cache for
// leaderboard reads: bounded TTL, invalidated on every visit or
// subscription write. It wraps the ranking service at the handler seam —
// the ranking service itself stays stateless. A nil cache is a valid
// no-op, used when Redis is not configured.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// cachedLeaderboard wraps the snapshot with the moment it was taken, so
// clients can show "as of" and operators can spot staleness.
type cachedLeaderboard struct {
	Board    *models.Leaderboard `json:"board"`
	CachedAt time.Time           `json:"cached_at"`
}

const leaderboardGenKey = "leaderboard:gen"

// NewLeaderboardCache returns nil (a no-op cache) when addr is empty.
func NewLeaderboardCache(addr, password string, ttl time.Duration, logger *zap.Logger) *LeaderboardCache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &LeaderboardCache{client: client, ttl: ttl, logger: logger}
}

func (c *LeaderboardCache) key(ctx context.Context, limit int) (string, error) {
	gen, err := c.client.Get(ctx, leaderboardGenKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("leaderboard:%d:limit:%d", gen, limit), nil
}

// Get returns the cached snapshot for this limit, if fresh.
func (c *LeaderboardCache) Get(ctx context.Context, limit int) (*models.Leaderboard, bool) {
	if c == nil {
		return nil, false
	}
	key, err := c.key(ctx, limit)
	if err != nil {
		c.logger.Warn("leaderboard cache unavailable", zap.Error(err))
		return nil, false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var cached cachedLeaderboard
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.Warn("leaderboard cache entry corrupt, dropping", zap.Error(err))
		c.client.Del(ctx, key)
		return nil, false
	}
	return cached.Board, true
}

// Set stores a snapshot under the current generation with the bounded TTL.
func (c *LeaderboardCache) Set(ctx context.Context, limit int, board *models.Leaderboard) {
	if c == nil {
		return
	}
	key, err := c.key(ctx, limit)
	if err != nil {
		return
	}
	raw, err := json.Marshal(cachedLeaderboard{Board: board, CachedAt: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("leaderboard cache write failed", zap.Error(err))
	}
}

// Invalidate bumps the generation so every cached snapshot goes stale at
// once. Old-generation keys age out via their TTL.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, leaderboardGenKey).Err(); err != nil {
		c.logger.Warn("leaderboard cache invalidation failed", zap.Error(err))
	}
}

// Close releases the Redis connection.
func (c *LeaderboardCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
