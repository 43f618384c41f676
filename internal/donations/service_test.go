package donations

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/foodbridge-dev/foodbridge/internal/access"
	dbpkg "github.com/foodbridge-dev/foodbridge/internal/db"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/points"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *points.Store, *gorm.DB) {
	t.Helper()
	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	ledger := points.NewStore(conn, nil)
	return NewService(conn, ledger), ledger, conn
}

// newFileBackedService opens the service on a file-backed database so
// multiple goroutines share one database. Each in-memory sqlite connection
// gets its own database, which makes :memory: unusable for cross-goroutine
// tests.
func newFileBackedService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	conn, errOpen := dbpkg.Open(filepath.Join(t.TempDir(), "donations.db"))
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
	ledger := points.NewStore(conn, nil)
	return NewService(conn, ledger), conn
}

func createUser(t *testing.T, conn *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Username: email, Email: email, Password: "x", Role: models.RoleConsumer}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

func TestCreateAvailableDonationCreditsDonor(t *testing.T) {
	service, ledger, conn := newTestService(t)
	donor := createUser(t, conn, "donor@example.com")

	donation, errCreate := service.Create(context.Background(), donor.ID, CreateInput{Title: "bread"})
	if errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}
	if donation.Status != models.DonationAvailable {
		t.Fatalf("expected default status available, got %s", donation.Status)
	}

	balance, errGet := ledger.GetBalance(context.Background(), donor.ID)
	if errGet != nil {
		t.Fatalf("get balance: %v", errGet)
	}
	if balance != 10 {
		t.Fatalf("expected reward of 10 points, got %d", balance)
	}

	// A second donation credits again; rewards fire once per creation.
	if _, errCreate = service.Create(context.Background(), donor.ID, CreateInput{Title: "milk"}); errCreate != nil {
		t.Fatalf("create second donation: %v", errCreate)
	}
	balance, _ = ledger.GetBalance(context.Background(), donor.ID)
	if balance != 20 {
		t.Fatalf("expected 20 points after two donations, got %d", balance)
	}
}

func TestCreateNonAvailableDonationSkipsReward(t *testing.T) {
	service, ledger, conn := newTestService(t)
	donor := createUser(t, conn, "donor@example.com")

	if _, errCreate := service.Create(context.Background(), donor.ID, CreateInput{Title: "bread", Status: models.DonationCollected}); errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}

	if _, errGet := ledger.GetBalance(context.Background(), donor.ID); !errors.Is(errGet, points.ErrAccountNotFound) {
		t.Fatalf("expected no account, got %v", errGet)
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	service, _, conn := newTestService(t)
	donor := createUser(t, conn, "donor@example.com")

	if _, errCreate := service.Create(context.Background(), donor.ID, CreateInput{Title: "bread", Status: "vanished"}); !errors.Is(errCreate, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", errCreate)
	}
}

func TestReserveBindsRecipientOnce(t *testing.T) {
	service, _, conn := newTestService(t)
	donor := createUser(t, conn, "donor@example.com")
	recipient := createUser(t, conn, "recipient@example.com")
	other := createUser(t, conn, "other@example.com")

	donation, errCreate := service.Create(context.Background(), donor.ID, CreateInput{Title: "bread"})
	if errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}

	reserved, errReserve := service.Reserve(context.Background(), access.IdentityFromUser(recipient), donation.ID, recipient.ID)
	if errReserve != nil {
		t.Fatalf("reserve: %v", errReserve)
	}
	if reserved.Status != models.DonationReserved {
		t.Fatalf("expected reserved, got %s", reserved.Status)
	}
	if reserved.RecipientID == nil || *reserved.RecipientID != recipient.ID {
		t.Fatalf("recipient not bound: %v", reserved.RecipientID)
	}

	// Second reservation attempt loses: at most one transition out of available.
	if _, errReserve = service.Reserve(context.Background(), access.IdentityFromUser(other), donation.ID, other.ID); !errors.Is(errReserve, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", errReserve)
	}

	var reloaded models.Donation
	if errFind := conn.First(&reloaded, donation.ID).Error; errFind != nil {
		t.Fatalf("reload donation: %v", errFind)
	}
	if reloaded.RecipientID == nil || *reloaded.RecipientID != recipient.ID {
		t.Fatalf("recipient overwritten by losing reservation: %v", reloaded.RecipientID)
	}
}

func TestReserveConcurrentAttemptsSingleWinner(t *testing.T) {
	service, conn := newFileBackedService(t)
	donor := createUser(t, conn, "donor@example.com")
	racers := []models.User{
		createUser(t, conn, "first@example.com"),
		createUser(t, conn, "second@example.com"),
	}

	donation, errCreate := service.Create(context.Background(), donor.ID, CreateInput{Title: "bread"})
	if errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}

	results := make([]error, len(racers))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, racer := range racers {
		wg.Add(1)
		go func(i int, racer models.User) {
			defer wg.Done()
			<-start
			_, results[i] = service.Reserve(context.Background(), access.IdentityFromUser(racer), donation.ID, racer.ID)
		}(i, racer)
	}
	close(start)
	wg.Wait()

	winners := 0
	winnerID := uint64(0)
	for i, errReserve := range results {
		switch {
		case errReserve == nil:
			winners++
			winnerID = racers[i].ID
		case errors.Is(errReserve, ErrNotAvailable):
		default:
			t.Fatalf("racer %d: unexpected error: %v", i, errReserve)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one successful reservation, got %d", winners)
	}

	var reloaded models.Donation
	if errFind := conn.First(&reloaded, donation.ID).Error; errFind != nil {
		t.Fatalf("reload donation: %v", errFind)
	}
	if reloaded.Status != models.DonationReserved {
		t.Fatalf("expected reserved status, got %s", reloaded.Status)
	}
	if reloaded.RecipientID == nil || *reloaded.RecipientID != winnerID {
		t.Fatalf("recipient %v does not match winner %d", reloaded.RecipientID, winnerID)
	}
}

func TestReserveForbidsReservingForSomeoneElse(t *testing.T) {
	service, _, conn := newTestService(t)
	donor := createUser(t, conn, "donor@example.com")
	recipient := createUser(t, conn, "recipient@example.com")
	actor := createUser(t, conn, "actor@example.com")

	donation, errCreate := service.Create(context.Background(), donor.ID, CreateInput{Title: "bread"})
	if errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}

	if _, errReserve := service.Reserve(context.Background(), access.IdentityFromUser(actor), donation.ID, recipient.ID); !errors.Is(errReserve, ErrReserveSelfOnly) {
		t.Fatalf("expected ErrReserveSelfOnly, got %v", errReserve)
	}

	var reloaded models.Donation
	if errFind := conn.First(&reloaded, donation.ID).Error; errFind != nil {
		t.Fatalf("reload donation: %v", errFind)
	}
	if reloaded.Status != models.DonationAvailable {
		t.Fatalf("status changed after forbidden reserve: %s", reloaded.Status)
	}
}

func TestReserveMissingDonation(t *testing.T) {
	service, _, conn := newTestService(t)
	recipient := createUser(t, conn, "recipient@example.com")

	if _, errReserve := service.Reserve(context.Background(), access.IdentityFromUser(recipient), 99999, recipient.ID); !errors.Is(errReserve, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errReserve)
	}
}

func TestReserveRequiresRecipient(t *testing.T) {
	service, _, conn := newTestService(t)
	donor := createUser(t, conn, "donor@example.com")

	donation, errCreate := service.Create(context.Background(), donor.ID, CreateInput{Title: "bread"})
	if errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}

	if _, errReserve := service.Reserve(context.Background(), access.Identity{UserID: 0}, donation.ID, 0); !errors.Is(errReserve, ErrRecipientRequired) {
		t.Fatalf("expected ErrRecipientRequired, got %v", errReserve)
	}
}

func TestReserveNotifiesDonor(t *testing.T) {
	service, _, conn := newTestService(t)
	donor := createUser(t, conn, "donor@example.com")
	recipient := createUser(t, conn, "recipient@example.com")

	donation, errCreate := service.Create(context.Background(), donor.ID, CreateInput{Title: "bread"})
	if errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}
	if _, errReserve := service.Reserve(context.Background(), access.IdentityFromUser(recipient), donation.ID, recipient.ID); errReserve != nil {
		t.Fatalf("reserve: %v", errReserve)
	}

	var notification models.Notification
	if errFind := conn.Where("user_id = ? AND type = ?", donor.ID, models.NotificationReservation).First(&notification).Error; errFind != nil {
		t.Fatalf("reservation notification missing: %v", errFind)
	}
	if notification.Status != models.NotificationSent {
		t.Fatalf("expected sent status, got %s", notification.Status)
	}
}
