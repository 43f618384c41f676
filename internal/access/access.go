package access

import (
	"errors"
	"fmt"

	"github.com/foodbridge-dev/foodbridge/internal/models"
)

// Access-control errors.
var (
	// ErrUnauthenticated indicates the caller identity could not be resolved.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates the caller lacks permission for the operation.
	ErrForbidden = errors.New("permission denied")
)

// Identity is the resolved caller of an operation.
type Identity struct {
	UserID      uint64
	Role        string
	IsStaff     bool
	IsSuperuser bool
}

// IdentityFromUser builds an Identity from a stored user record.
func IdentityFromUser(u models.User) Identity {
	return Identity{
		UserID:      u.ID,
		Role:        u.Role,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
}

// Authenticated reports whether the identity was resolved.
func (id Identity) Authenticated() bool {
	return id.UserID != 0
}

// IsAdmin reports whether the identity carries administrator privileges.
func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdministrator || id.IsStaff || id.IsSuperuser
}

// Owned is implemented by entities with a designated owner.
type Owned interface {
	OwnedBy(userID uint64) bool
}

// Checker evaluates access-control predicates for one caller. Operations
// receive a Checker value instead of performing ad hoc role probing.
type Checker struct {
	Identity Identity
}

// NewChecker constructs a Checker for the given caller identity.
func NewChecker(id Identity) Checker {
	return Checker{Identity: id}
}

// IsAuthenticated fails unless the caller identity was resolved.
func (c Checker) IsAuthenticated() error {
	if !c.Identity.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// IsSelfOrAdmin fails unless the caller is an administrator or the target user.
func (c Checker) IsSelfOrAdmin(targetUserID uint64) error {
	if errAuth := c.IsAuthenticated(); errAuth != nil {
		return errAuth
	}
	if c.Identity.IsAdmin() || c.Identity.UserID == targetUserID {
		return nil
	}
	return fmt.Errorf("%w: you can only access your own data", ErrForbidden)
}

// IsOwnerOrAdmin fails unless the caller is an administrator or the entity's owner.
func (c Checker) IsOwnerOrAdmin(entity Owned) error {
	if errAuth := c.IsAuthenticated(); errAuth != nil {
		return errAuth
	}
	if c.Identity.IsAdmin() || entity.OwnedBy(c.Identity.UserID) {
		return nil
	}
	return fmt.Errorf("%w: you must be the owner to perform this action", ErrForbidden)
}

// IsDonationParticipantOrAdmin fails unless the caller is an administrator,
// the donor, or the bound recipient of the donation.
func (c Checker) IsDonationParticipantOrAdmin(d models.Donation) error {
	if errAuth := c.IsAuthenticated(); errAuth != nil {
		return errAuth
	}
	if c.Identity.IsAdmin() || d.OwnedBy(c.Identity.UserID) {
		return nil
	}
	return fmt.Errorf("%w: you can only access your own donations", ErrForbidden)
}
