package points

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	dbpkg "github.com/foodbridge-dev/foodbridge/internal/db"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return NewStore(conn, nil), conn
}

func createUserWithBalance(t *testing.T, conn *gorm.DB, username string, balance int64) uint64 {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Password: "x", Role: models.RoleConsumer}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	account := models.PointAccount{UserID: user.ID, Balance: balance}
	if errCreate := conn.Create(&account).Error; errCreate != nil {
		t.Fatalf("create point account: %v", errCreate)
	}
	return user.ID
}

// newFileBackedStore opens a store on a file-backed database so multiple
// goroutines share one database. Each in-memory sqlite connection gets its
// own database, which makes :memory: unusable for cross-goroutine tests.
func newFileBackedStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	conn, errOpen := dbpkg.Open(filepath.Join(t.TempDir(), "points.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		t.Fatalf("unwrap sql.DB: %v", errDB)
	}
	// SQLite allows a single writer; cap the pool so concurrent write
	// transactions queue instead of failing with a busy error.
	sqlDB.SetMaxOpenConns(1)
	return NewStore(conn, nil), conn
}

func TestGetBalanceMissingAccount(t *testing.T) {
	store, _ := newTestStore(t)

	if _, errGet := store.GetBalance(context.Background(), 12345); !errors.Is(errGet, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", errGet)
	}
}

func TestAddPointsRejectsNonPositiveAmount(t *testing.T) {
	store, conn := newTestStore(t)
	userID := createUserWithBalance(t, conn, "alice", 50)

	for _, amount := range []int64{0, -1, -100} {
		if _, errAdd := store.AddPoints(context.Background(), userID, amount); !errors.Is(errAdd, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, errAdd)
		}
	}

	balance, errGet := store.GetBalance(context.Background(), userID)
	if errGet != nil {
		t.Fatalf("get balance: %v", errGet)
	}
	if balance != 50 {
		t.Fatalf("balance changed after rejected add: %d", balance)
	}
}

func TestAddPointsIncrements(t *testing.T) {
	store, conn := newTestStore(t)
	userID := createUserWithBalance(t, conn, "alice", 50)

	newBalance, errAdd := store.AddPoints(context.Background(), userID, 25)
	if errAdd != nil {
		t.Fatalf("add points: %v", errAdd)
	}
	if newBalance != 75 {
		t.Fatalf("expected balance 75, got %d", newBalance)
	}

	stored, errGet := store.GetBalance(context.Background(), userID)
	if errGet != nil {
		t.Fatalf("get balance: %v", errGet)
	}
	if stored != 75 {
		t.Fatalf("persisted balance mismatch: %d", stored)
	}
}

func TestTransferConservesTotal(t *testing.T) {
	store, conn := newTestStore(t)
	aliceID := createUserWithBalance(t, conn, "alice", 50)
	bobID := createUserWithBalance(t, conn, "bob", 5)

	result, errTransfer := store.Transfer(context.Background(), aliceID, bobID, 30)
	if errTransfer != nil {
		t.Fatalf("transfer: %v", errTransfer)
	}
	if result.FromBalance != 20 || result.ToBalance != 35 {
		t.Fatalf("expected 20/35, got %d/%d", result.FromBalance, result.ToBalance)
	}
	if result.FromBalance+result.ToBalance != 55 {
		t.Fatalf("total not conserved: %d", result.FromBalance+result.ToBalance)
	}
}

func TestTransferInsufficientBalanceLeavesBothUnchanged(t *testing.T) {
	store, conn := newTestStore(t)
	aliceID := createUserWithBalance(t, conn, "alice", 20)
	bobID := createUserWithBalance(t, conn, "bob", 35)

	if _, errTransfer := store.Transfer(context.Background(), bobID, aliceID, 100); !errors.Is(errTransfer, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", errTransfer)
	}

	aliceBalance, _ := store.GetBalance(context.Background(), aliceID)
	bobBalance, _ := store.GetBalance(context.Background(), bobID)
	if aliceBalance != 20 || bobBalance != 35 {
		t.Fatalf("balances changed after failed transfer: %d/%d", aliceBalance, bobBalance)
	}
}

func TestTransferConcurrentDebitsCannotOverdraw(t *testing.T) {
	store, conn := newFileBackedStore(t)
	aliceID := createUserWithBalance(t, conn, "alice", 50)
	bobID := createUserWithBalance(t, conn, "bob", 0)

	// Two simultaneous 30-point debits against a 50-point balance: only one
	// may commit.
	results := make([]error, 2)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = store.Transfer(context.Background(), aliceID, bobID, 30)
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for i, errTransfer := range results {
		switch {
		case errTransfer == nil:
			successes++
		case errors.Is(errTransfer, ErrInsufficientBalance):
		default:
			t.Fatalf("transfer %d: unexpected error: %v", i, errTransfer)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one transfer to succeed, got %d", successes)
	}

	aliceBalance, errGet := store.GetBalance(context.Background(), aliceID)
	if errGet != nil {
		t.Fatalf("get alice balance: %v", errGet)
	}
	bobBalance, errGet := store.GetBalance(context.Background(), bobID)
	if errGet != nil {
		t.Fatalf("get bob balance: %v", errGet)
	}
	if aliceBalance != 20 || bobBalance != 30 {
		t.Fatalf("expected balances 20/30, got %d/%d", aliceBalance, bobBalance)
	}
}

func TestTransferMissingAccount(t *testing.T) {
	store, conn := newTestStore(t)
	aliceID := createUserWithBalance(t, conn, "alice", 50)

	if _, errTransfer := store.Transfer(context.Background(), aliceID, 99999, 10); !errors.Is(errTransfer, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", errTransfer)
	}
	if _, errTransfer := store.Transfer(context.Background(), 99999, aliceID, 10); !errors.Is(errTransfer, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", errTransfer)
	}

	balance, _ := store.GetBalance(context.Background(), aliceID)
	if balance != 50 {
		t.Fatalf("balance changed after failed transfer: %d", balance)
	}
}

func TestTransferRejectsNonPositiveAmount(t *testing.T) {
	store, conn := newTestStore(t)
	aliceID := createUserWithBalance(t, conn, "alice", 50)
	bobID := createUserWithBalance(t, conn, "bob", 5)

	if _, errTransfer := store.Transfer(context.Background(), aliceID, bobID, 0); !errors.Is(errTransfer, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", errTransfer)
	}
}

func TestRewardCreatesAccountWhenMissing(t *testing.T) {
	store, conn := newTestStore(t)
	user := models.User{Username: "carol", Email: "carol@example.com", Password: "x", Role: models.RoleConsumer}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}

	newBalance, errReward := store.Reward(context.Background(), user.ID, 10)
	if errReward != nil {
		t.Fatalf("reward: %v", errReward)
	}
	if newBalance != 10 {
		t.Fatalf("expected balance 10, got %d", newBalance)
	}

	// A second reward credits the existing account.
	newBalance, errReward = store.Reward(context.Background(), user.ID, 10)
	if errReward != nil {
		t.Fatalf("second reward: %v", errReward)
	}
	if newBalance != 20 {
		t.Fatalf("expected balance 20, got %d", newBalance)
	}
}

func TestLeaderboardOrderingAndDefaultLimit(t *testing.T) {
	store, conn := newTestStore(t)

	// 12 accounts; two share the top balance to exercise the ID tie-break.
	ids := make([]uint64, 0, 12)
	for i := 0; i < 12; i++ {
		name := string(rune('a'+i)) + "-user"
		ids = append(ids, createUserWithBalance(t, conn, name, int64(100-i*5)))
	}
	if errSet := conn.Model(&models.PointAccount{}).Where("user_id = ?", ids[1]).Update("balance", 100).Error; errSet != nil {
		t.Fatalf("set tie balance: %v", errSet)
	}

	entries, errBoard := store.Leaderboard(context.Background(), 0)
	if errBoard != nil {
		t.Fatalf("leaderboard: %v", errBoard)
	}
	if len(entries) != 10 {
		t.Fatalf("expected default limit 10, got %d entries", len(entries))
	}
	if entries[0].UserID != ids[0] || entries[1].UserID != ids[1] {
		t.Fatalf("tie not broken by ascending user id: %d then %d", entries[0].UserID, entries[1].UserID)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Balance > entries[i-1].Balance {
			t.Fatalf("not sorted by balance desc at index %d", i)
		}
	}

	limited, errBoard := store.Leaderboard(context.Background(), 3)
	if errBoard != nil {
		t.Fatalf("leaderboard limit 3: %v", errBoard)
	}
	if len(limited) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(limited))
	}
}
