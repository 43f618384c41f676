package points

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// cacheTTL bounds staleness if an invalidation is missed.
const cacheTTL = 60 * time.Second

// versionKey tracks the current leaderboard cache generation.
const versionKey = "foodbridge:leaderboard:version"

// LeaderboardCache caches leaderboard pages in redis. Invalidation bumps a
// generation counter instead of scanning keys; stale generations age out via
// TTL.
type LeaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache constructs a LeaderboardCache.
func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client}
}

// Get returns a cached leaderboard page, if present.
func (c *LeaderboardCache) Get(ctx context.Context, limit int) ([]LeaderboardEntry, bool) {
	key, errKey := c.entryKey(ctx, limit)
	if errKey != nil {
		return nil, false
	}

	raw, errGet := c.client.Get(ctx, key).Bytes()
	if errGet != nil {
		if errGet != redis.Nil {
			log.WithError(errGet).Debug("leaderboard cache read failed")
		}
		return nil, false
	}

	var entries []LeaderboardEntry
	if errDecode := json.Unmarshal(raw, &entries); errDecode != nil {
		return nil, false
	}
	return entries, true
}

// Set stores a leaderboard page under the current generation.
func (c *LeaderboardCache) Set(ctx context.Context, limit int, entries []LeaderboardEntry) {
	key, errKey := c.entryKey(ctx, limit)
	if errKey != nil {
		return
	}
	raw, errEncode := json.Marshal(entries)
	if errEncode != nil {
		return
	}
	if errSet := c.client.Set(ctx, key, raw, cacheTTL).Err(); errSet != nil {
		log.WithError(errSet).Debug("leaderboard cache write failed")
	}
}

// Invalidate advances the cache generation, orphaning all cached pages.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, versionKey).Err()
}

// entryKey builds the generation-scoped cache key for a page size.
func (c *LeaderboardCache) entryKey(ctx context.Context, limit int) (string, error) {
	version, errVersion := c.client.Get(ctx, versionKey).Int64()
	if errVersion != nil && errVersion != redis.Nil {
		return "", errVersion
	}
	return fmt.Sprintf("foodbridge:leaderboard:%d:%d", version, limit), nil
}
