package models

import "time"

// User roles.
const (
	// RoleMerchant marks a merchant account.
	RoleMerchant = "merchant"
	// RoleConsumer marks a consumer account.
	RoleConsumer = "consumer"
	// RoleAdministrator marks an administrator account.
	RoleAdministrator = "administrator"
)

// UserRoles lists the accepted account roles.
func UserRoles() []string {
	return []string{RoleMerchant, RoleConsumer, RoleAdministrator}
}

// User represents a marketplace account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null"`             // Display name.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique login email.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Role    string `gorm:"type:text;not null;default:consumer"` // Account role.
	Address string `gorm:"type:text"`                           // Postal address.

	ProfilePicture string `gorm:"type:text"` // Profile picture URL.

	IsStaff     bool `gorm:"not null;default:false"` // Staff override flag.
	IsSuperuser bool `gorm:"not null;default:false"` // Superuser override flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsAdmin reports whether the account carries administrator privileges.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdministrator || u.IsStaff || u.IsSuperuser
}
