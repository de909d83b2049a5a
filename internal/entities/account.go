package entities

import (
	"time"

	"gorm.io/gorm"
)

type AccountRole string

const (
	AccountRoleAdmin     AccountRole = "admin"
	AccountRoleLibrarian AccountRole = "librarian"
)

// Account is a staff login for the backend (librarians and admins).
// Patrons never authenticate; see Patron.
type Account struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:100" json:"-"`
	Role         AccountRole    `gorm:"size:20;default:'librarian'" json:"role"`
	TokenHash    string         `gorm:"index;size:64" json:"-"` // SHA-256 of the API token
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// IsAdmin reports whether the account has the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == AccountRoleAdmin
}
