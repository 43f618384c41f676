package status

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/foodbridge-dev/foodbridge/internal/access"
	dbpkg "github.com/foodbridge-dev/foodbridge/internal/db"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"gorm.io/gorm"
)

func newGuardTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func createGuardUser(t *testing.T, conn *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Username: email, Email: email, Password: "x", Role: role}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

func TestGuardRejectsUnknownStatusListingValidValues(t *testing.T) {
	conn := newGuardTestDB(t)
	guard := NewGuard(conn)

	donor := createGuardUser(t, conn, "donor@example.com", models.RoleConsumer)
	donation := models.Donation{DonorID: donor.ID, Title: "bread", Status: models.DonationAvailable}
	if errCreate := conn.Create(&donation).Error; errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}

	errApply := guard.Apply(context.Background(), access.IdentityFromUser(donor), &donation, "teleported")
	if !errors.Is(errApply, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", errApply)
	}
	for _, want := range []string{"available", "reserved", "collected"} {
		if !strings.Contains(errApply.Error(), want) {
			t.Fatalf("error does not list %q: %v", want, errApply)
		}
	}
}

func TestGuardForbidsNonOwner(t *testing.T) {
	conn := newGuardTestDB(t)
	guard := NewGuard(conn)

	donor := createGuardUser(t, conn, "donor@example.com", models.RoleConsumer)
	stranger := createGuardUser(t, conn, "stranger@example.com", models.RoleConsumer)
	recipient := createGuardUser(t, conn, "recipient@example.com", models.RoleConsumer)

	donation := models.Donation{DonorID: donor.ID, RecipientID: &recipient.ID, Title: "bread", Status: models.DonationReserved}
	if errCreate := conn.Create(&donation).Error; errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}

	errApply := guard.Apply(context.Background(), access.IdentityFromUser(stranger), &donation, models.DonationCollected)
	if !errors.Is(errApply, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", errApply)
	}

	var reloaded models.Donation
	if errFind := conn.First(&reloaded, donation.ID).Error; errFind != nil {
		t.Fatalf("reload donation: %v", errFind)
	}
	if reloaded.Status != models.DonationReserved {
		t.Fatalf("status changed after forbidden update: %s", reloaded.Status)
	}
}

func TestGuardAdminOverride(t *testing.T) {
	conn := newGuardTestDB(t)
	guard := NewGuard(conn)

	donor := createGuardUser(t, conn, "donor@example.com", models.RoleConsumer)
	admin := createGuardUser(t, conn, "admin@example.com", models.RoleAdministrator)
	recipient := createGuardUser(t, conn, "recipient@example.com", models.RoleConsumer)

	donation := models.Donation{DonorID: donor.ID, RecipientID: &recipient.ID, Title: "bread", Status: models.DonationReserved}
	if errCreate := conn.Create(&donation).Error; errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}

	if errApply := guard.Apply(context.Background(), access.IdentityFromUser(admin), &donation, models.DonationCollected); errApply != nil {
		t.Fatalf("admin update rejected: %v", errApply)
	}

	var reloaded models.Donation
	if errFind := conn.First(&reloaded, donation.ID).Error; errFind != nil {
		t.Fatalf("reload donation: %v", errFind)
	}
	if reloaded.Status != models.DonationCollected {
		t.Fatalf("expected collected, got %s", reloaded.Status)
	}
}

func TestGuardDonationTransitionRules(t *testing.T) {
	conn := newGuardTestDB(t)
	guard := NewGuard(conn)

	donor := createGuardUser(t, conn, "donor@example.com", models.RoleConsumer)
	recipient := createGuardUser(t, conn, "recipient@example.com", models.RoleConsumer)

	// available -> reserved is reserved for the reservation workflow.
	available := models.Donation{DonorID: donor.ID, Title: "bread", Status: models.DonationAvailable}
	if errCreate := conn.Create(&available).Error; errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}
	errApply := guard.Apply(context.Background(), access.IdentityFromUser(donor), &available, models.DonationReserved)
	if !errors.Is(errApply, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", errApply)
	}

	// No path back to available once reserved.
	reserved := models.Donation{DonorID: donor.ID, RecipientID: &recipient.ID, Title: "milk", Status: models.DonationReserved}
	if errCreate := conn.Create(&reserved).Error; errCreate != nil {
		t.Fatalf("create donation: %v", errCreate)
	}
	errApply = guard.Apply(context.Background(), access.IdentityFromUser(donor), &reserved, models.DonationAvailable)
	if !errors.Is(errApply, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", errApply)
	}

	// reserved -> collected is the one permitted guard move.
	if errApply = guard.Apply(context.Background(), access.IdentityFromUser(recipient), &reserved, models.DonationCollected); errApply != nil {
		t.Fatalf("reserved -> collected rejected: %v", errApply)
	}
}

func TestGuardOrderStatuses(t *testing.T) {
	conn := newGuardTestDB(t)
	guard := NewGuard(conn)

	merchantUser := createGuardUser(t, conn, "merchant@example.com", models.RoleMerchant)
	consumerUser := createGuardUser(t, conn, "consumer@example.com", models.RoleConsumer)

	merchant := models.Merchant{UserID: merchantUser.ID, BusinessName: "bakery"}
	if errCreate := conn.Create(&merchant).Error; errCreate != nil {
		t.Fatalf("create merchant: %v", errCreate)
	}
	consumer := models.Consumer{UserID: consumerUser.ID}
	if errCreate := conn.Create(&consumer).Error; errCreate != nil {
		t.Fatalf("create consumer: %v", errCreate)
	}
	offer := models.Offer{MerchantID: merchantUser.ID, Title: "pastries", AvailableQuantity: 5, Status: models.OfferAvailable}
	if errCreate := conn.Create(&offer).Error; errCreate != nil {
		t.Fatalf("create offer: %v", errCreate)
	}
	order := models.Order{ConsumerID: consumerUser.ID, OfferID: offer.ID, Quantity: 2, Status: models.OrderPending}
	if errCreate := conn.Create(&order).Error; errCreate != nil {
		t.Fatalf("create order: %v", errCreate)
	}

	if errApply := guard.Apply(context.Background(), access.IdentityFromUser(consumerUser), &order, models.OrderConfirmed); errApply != nil {
		t.Fatalf("owner status update rejected: %v", errApply)
	}

	errApply := guard.Apply(context.Background(), access.IdentityFromUser(merchantUser), &order, models.OrderCompleted)
	if !errors.Is(errApply, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", errApply)
	}
}
