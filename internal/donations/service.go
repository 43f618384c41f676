package donations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/access"
	"github.com/foodbridge-dev/foodbridge/internal/models"
	"github.com/foodbridge-dev/foodbridge/internal/points"
	"github.com/foodbridge-dev/foodbridge/internal/settings"
)

// Donation workflow errors.
var (
	// ErrNotFound indicates the donation does not exist.
	ErrNotFound = errors.New("donation not found")
	// ErrNotAvailable indicates the donation already left the available state.
	ErrNotAvailable = errors.New("donation is not available for reservation")
	// ErrRecipientRequired indicates a reservation without a recipient.
	ErrRecipientRequired = errors.New("recipient is required")
	// ErrReserveSelfOnly indicates an attempt to reserve for another user.
	ErrReserveSelfOnly = errors.New("donations can only be reserved for yourself")
	// ErrInvalidStatus indicates a creation status outside the donation enum.
	ErrInvalidStatus = errors.New("invalid donation status")
)

// Service owns donation creation and the reservation workflow.
type Service struct {
	db     *gorm.DB
	ledger *points.Store
}

// NewService constructs a Service.
func NewService(db *gorm.DB, ledger *points.Store) *Service {
	return &Service{db: db, ledger: ledger}
}

// CreateInput carries the donor-supplied donation fields.
type CreateInput struct {
	Title       string
	Description string
	Photo       string
	Status      string
}

// Create persists a new donation for the donor and, when it starts out
// available, credits the donor's point account. The credit runs after the
// insert committed and its failure is logged, not propagated: the donation
// stands even if the reward is lost.
func (s *Service) Create(ctx context.Context, donorID uint64, in CreateInput) (models.Donation, error) {
	donationStatus := strings.TrimSpace(in.Status)
	if donationStatus == "" {
		donationStatus = models.DonationAvailable
	}
	if !validDonationStatus(donationStatus) {
		return models.Donation{}, fmt.Errorf("%w: must be one of: %s",
			ErrInvalidStatus, strings.Join(models.Donation{}.StatusValues(), ", "))
	}

	donation := models.Donation{
		DonorID:     donorID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Photo:       in.Photo,
		Status:      donationStatus,
	}
	if errCreate := s.db.WithContext(ctx).Create(&donation).Error; errCreate != nil {
		return models.Donation{}, errCreate
	}

	if donationStatus == models.DonationAvailable {
		s.rewardDonor(ctx, donation)
	}

	return donation, nil
}

// rewardDonor credits the configured reward to the donor's ledger.
func (s *Service) rewardDonor(ctx context.Context, donation models.Donation) {
	amount := settings.RewardPoints()
	if _, errReward := s.ledger.Reward(ctx, donation.DonorID, amount); errReward != nil {
		log.WithError(errReward).
			WithField("donation_id", donation.ID).
			WithField("donor_id", donation.DonorID).
			Warn("donation reward credit failed")
	}
}

// Reserve binds a recipient to an available donation and moves it to
// reserved. The status check and the write are one conditional UPDATE, so of
// two concurrent reservations exactly one succeeds; the loser sees
// ErrNotAvailable.
func (s *Service) Reserve(ctx context.Context, actor access.Identity, donationID, recipientID uint64) (models.Donation, error) {
	if recipientID == 0 {
		return models.Donation{}, ErrRecipientRequired
	}
	if actor.UserID != recipientID {
		return models.Donation{}, ErrReserveSelfOnly
	}

	res := s.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ?", donationID, models.DonationAvailable).
		Updates(map[string]any{
			"recipient_id": recipientID,
			"status":       models.DonationReserved,
		})
	if res.Error != nil {
		return models.Donation{}, res.Error
	}
	if res.RowsAffected == 0 {
		var existing models.Donation
		errFind := s.db.WithContext(ctx).First(&existing, donationID).Error
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.Donation{}, ErrNotFound
		}
		if errFind != nil {
			return models.Donation{}, errFind
		}
		return models.Donation{}, ErrNotAvailable
	}

	var reserved models.Donation
	if errFind := s.db.WithContext(ctx).First(&reserved, donationID).Error; errFind != nil {
		return models.Donation{}, errFind
	}

	s.notifyDonor(ctx, reserved)
	return reserved, nil
}

// notifyDonor records an in-app reservation notice for the donor. A failure
// here is logged only; the reservation already committed.
func (s *Service) notifyDonor(ctx context.Context, donation models.Donation) {
	notification := models.Notification{
		UserID:   donation.DonorID,
		Type:     models.NotificationReservation,
		Message:  fmt.Sprintf("Your donation %q has been reserved", donation.Title),
		Status:   models.NotificationSent,
		Metadata: []byte(fmt.Sprintf(`{"donation_id":%d}`, donation.ID)),
	}
	if errCreate := s.db.WithContext(ctx).Create(&notification).Error; errCreate != nil {
		log.WithError(errCreate).
			WithField("donation_id", donation.ID).
			Warn("reservation notification failed")
	}
}

func validDonationStatus(value string) bool {
	for _, status := range (models.Donation{}).StatusValues() {
		if status == value {
			return true
		}
	}
	return false
}
