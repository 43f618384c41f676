package points

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/foodbridge-dev/foodbridge/internal/db"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/settings"
)

// Ledger errors.
var (
	// ErrAccountNotFound indicates a user has no point account.
	ErrAccountNotFound = errors.New("point account not found")
	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be a positive integer")
	// ErrInsufficientBalance indicates the source balance cannot cover a transfer.
	ErrInsufficientBalance = errors.New("insufficient points")
)

// Store is the per-user point ledger. Every balance mutation runs inside a
// transaction with the affected rows locked, so concurrent operations never
// act on stale balances.
type Store struct {
	db    *gorm.DB
	cache *LeaderboardCache
}

// NewStore constructs a Store. The cache may be nil to disable caching.
func NewStore(db *gorm.DB, cache *LeaderboardCache) *Store {
	return &Store{db: db, cache: cache}
}

// TransferResult reports both balances after a successful transfer.
type TransferResult struct {
	FromBalance int64 `json:"from_user_balance"`
	ToBalance   int64 `json:"to_user_balance"`
}

// LeaderboardEntry is one row of the leaderboard.
type LeaderboardEntry struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

// EnsureAccount creates the user's point account if it does not exist yet.
func (s *Store) EnsureAccount(ctx context.Context, userID uint64) error {
	account := models.PointAccount{UserID: userID}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&account).Error
}

// GetBalance returns the user's current balance.
func (s *Store) GetBalance(ctx context.Context, userID uint64) (int64, error) {
	var account models.PointAccount
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&account).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, errFind
	}
	return account.Balance, nil
}

// AddPoints credits the user's account and returns the new balance.
func (s *Store) AddPoints(ctx context.Context, userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newBalance int64
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, errLock := lockAccount(tx, userID)
		if errLock != nil {
			return errLock
		}
		newBalance = account.Balance + amount
		return tx.Model(&models.PointAccount{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"balance":      newBalance,
				"last_updated": time.Now().UTC(),
			}).Error
	})
	if errTx != nil {
		return 0, errTx
	}

	s.invalidateLeaderboard(ctx)
	return newBalance, nil
}

// Reward credits the user's account, creating it first when missing. Used by
// the donation reward trigger, where the account may not exist yet.
func (s *Store) Reward(ctx context.Context, userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if errEnsure := s.EnsureAccount(ctx, userID); errEnsure != nil {
		return 0, errEnsure
	}
	return s.AddPoints(ctx, userID, amount)
}

// Transfer moves points between two accounts as a single atomic unit. Both
// rows are locked in ascending user ID order before the balance check, so two
// overlapping transfers cannot interleave a stale read with a write.
func (s *Store) Transfer(ctx context.Context, fromUserID, toUserID uint64, amount int64) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}

	var result TransferResult
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, second := fromUserID, toUserID
		if second < first {
			first, second = second, first
		}

		fromAccount, errFrom := lockAccount(tx, first)
		if errFrom != nil {
			return errFrom
		}
		toAccount := fromAccount
		if first != second {
			var errTo error
			toAccount, errTo = lockAccount(tx, second)
			if errTo != nil {
				return errTo
			}
		}
		if first != fromUserID {
			fromAccount, toAccount = toAccount, fromAccount
		}

		if fromAccount.Balance < amount {
			return ErrInsufficientBalance
		}

		now := time.Now().UTC()
		result.FromBalance = fromAccount.Balance - amount
		result.ToBalance = toAccount.Balance + amount
		if fromUserID == toUserID {
			result.FromBalance = fromAccount.Balance
			result.ToBalance = fromAccount.Balance
			return nil
		}

		if errDebit := tx.Model(&models.PointAccount{}).
			Where("user_id = ?", fromUserID).
			Updates(map[string]any{"balance": result.FromBalance, "last_updated": now}).Error; errDebit != nil {
			return errDebit
		}
		return tx.Model(&models.PointAccount{}).
			Where("user_id = ?", toUserID).
			Updates(map[string]any{"balance": result.ToBalance, "last_updated": now}).Error
	})
	if errTx != nil {
		return TransferResult{}, errTx
	}

	s.invalidateLeaderboard(ctx)
	return result, nil
}

// Leaderboard returns up to limit accounts ordered by balance descending,
// ties broken by user ID ascending. A non-positive limit falls back to the
// configured default.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = settings.LeaderboardLimit()
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, limit); ok {
			return cached, nil
		}
	}

	var entries []LeaderboardEntry
	if errFind := s.db.WithContext(ctx).
		Table("points").
		Select("points.user_id, users.username, points.balance").
		Joins("JOIN users ON users.id = points.user_id").
		Order("points.balance DESC, points.user_id ASC").
		Limit(limit).
		Scan(&entries).Error; errFind != nil {
		return nil, errFind
	}

	if s.cache != nil {
		s.cache.Set(ctx, limit, entries)
	}
	return entries, nil
}

// lockAccount reads one account row under a row lock inside tx. SQLite has
// no FOR UPDATE; its write transactions are serialized already.
func lockAccount(tx *gorm.DB, userID uint64) (models.PointAccount, error) {
	query := tx
	if !dbpkg.IsSQLite(tx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var account models.PointAccount
	if errFind := query.
		Where("user_id = ?", userID).
		First(&account).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.PointAccount{}, fmt.Errorf("%w: user %d", ErrAccountNotFound, userID)
		}
		return models.PointAccount{}, errFind
	}
	return account, nil
}

// invalidateLeaderboard drops cached leaderboards after a balance mutation.
func (s *Store) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if errInvalidate := s.cache.Invalidate(ctx); errInvalidate != nil {
		log.WithError(errInvalidate).Warn("leaderboard cache invalidation failed")
	}
}
