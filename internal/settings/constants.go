package settings

// DB config keys and defaults.
const (
	// RewardPointsKey is the DB config key for the per-donation reward credit.
	RewardPointsKey = "REWARD_POINTS_PER_DONATION"
	// LeaderboardLimitKey is the DB config key for the default leaderboard size.
	LeaderboardLimitKey = "LEADERBOARD_DEFAULT_LIMIT"
	// DefaultRewardPoints is the fallback per-donation reward credit.
	DefaultRewardPoints = 10
	// DefaultLeaderboardLimit is the fallback leaderboard size.
	DefaultLeaderboardLimit = 10
)
