package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/models"
)

// snapshot holds the in-memory DB config values.
type snapshot struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

// globalSnapshot stores the latest snapshot atomically.
var globalSnapshot atomic.Value // stores snapshot

func init() {
	globalSnapshot.Store(snapshot{values: map[string]json.RawMessage{}})
}

// Refresh reloads all settings rows and replaces the in-memory snapshot.
//
// Call at process startup; otherwise value lookups return defaults until an
// admin updates settings via the API (which triggers a refresh).
func Refresh(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("settings: nil db")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var rows []models.Setting
	if errFind := db.WithContext(ctx).
		Select("key", "value", "updated_at").
		Order("key ASC").
		Find(&rows).Error; errFind != nil {
		return errFind
	}

	values := make(map[string]json.RawMessage, len(rows))
	maxUpdatedAt := time.Time{}
	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		if key == "" {
			continue
		}
		copied := make([]byte, len(row.Value))
		copy(copied, row.Value)
		values[key] = copied
		if rowUpdatedAt := row.UpdatedAt.UTC(); rowUpdatedAt.After(maxUpdatedAt) {
			maxUpdatedAt = rowUpdatedAt
		}
	}

	globalSnapshot.Store(snapshot{updatedAt: maxUpdatedAt, values: values})
	return nil
}

// Value returns a copy of the raw config value for a key.
func Value(key string) (json.RawMessage, bool) {
	current := load()
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	val, ok := current.values[key]
	if !ok {
		return nil, false
	}
	copied := make([]byte, len(val))
	copy(copied, val)
	return copied, true
}

// UpdatedAt returns the last update timestamp across all settings rows.
func UpdatedAt() time.Time {
	return load().updatedAt
}

// IntValue returns a key parsed as an integer, or the fallback.
func IntValue(key string, fallback int64) int64 {
	raw, ok := Value(key)
	if !ok {
		return fallback
	}

	var asNumber int64
	if errNumber := json.Unmarshal(raw, &asNumber); errNumber == nil {
		return asNumber
	}
	var asString string
	if errString := json.Unmarshal(raw, &asString); errString == nil {
		if parsed, errParse := strconv.ParseInt(strings.TrimSpace(asString), 10, 64); errParse == nil {
			return parsed
		}
	}
	return fallback
}

// RewardPoints returns the configured per-donation reward credit.
func RewardPoints() int64 {
	amount := IntValue(RewardPointsKey, DefaultRewardPoints)
	if amount <= 0 {
		return DefaultRewardPoints
	}
	return amount
}

// LeaderboardLimit returns the configured default leaderboard size.
func LeaderboardLimit() int {
	limit := IntValue(LeaderboardLimitKey, DefaultLeaderboardLimit)
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	return int(limit)
}

// load returns the current snapshot with safe defaults.
func load() snapshot {
	v := globalSnapshot.Load()
	current, ok := v.(snapshot)
	if !ok || current.values == nil {
		return snapshot{values: map[string]json.RawMessage{}}
	}
	return current
}
