package status

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/foodbridge-dev/foodbridge/internal/access"
)

// Guard errors.
var (
	// ErrInvalidStatus indicates a value outside the entity's status enum.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidTransition indicates a status change not permitted from the current state.
	ErrInvalidTransition = errors.New("status change not permitted")
)

// Transitional is implemented by entities whose status field is guarded.
type Transitional interface {
	StatusValues() []string
	CurrentStatus() string
	OwnedBy(userID uint64) bool
}

// Ruled optionally restricts which moves between statuses are legal.
type Ruled interface {
	AllowTransition(from, to string) bool
}

// Guard applies authorized, enum-validated status changes to donations,
// orders, offers, transactions and notifications.
type Guard struct {
	db *gorm.DB
}

// NewGuard constructs a Guard.
func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// Apply validates and persists a status change on the entity. The entity
// must be a pointer to a loaded record, with the associations its ownership
// check depends on preloaded. On success the entity's status is updated in
// place.
func (g *Guard) Apply(ctx context.Context, actor access.Identity, entity Transitional, newStatus string) error {
	valid := entity.StatusValues()
	if !contains(valid, newStatus) {
		return fmt.Errorf("%w: must be one of: %s", ErrInvalidStatus, strings.Join(valid, ", "))
	}

	if !actor.IsAdmin() && !entity.OwnedBy(actor.UserID) {
		return access.ErrForbidden
	}

	current := entity.CurrentStatus()
	if ruled, ok := entity.(Ruled); ok && current != newStatus {
		if !ruled.AllowTransition(current, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, newStatus)
		}
	}

	return g.db.WithContext(ctx).Model(entity).Update("status", newStatus).Error
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
