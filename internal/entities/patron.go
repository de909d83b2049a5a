package entities

import (
	"time"

	"gorm.io/gorm"
)

// Patron represents a library user (a borrower, not a staff login).
// RegistrationNumber is the natural key handed out at sign-up; Email must
// also be unique across patrons.
type Patron struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	FullName           string         `gorm:"index;size:255" json:"full_name"`
	Email              string         `gorm:"uniqueIndex;size:255" json:"email"`
	Phone              string         `gorm:"size:20" json:"phone,omitempty"`
	Address            string         `gorm:"type:text" json:"address,omitempty"`
	RegistrationNumber string         `gorm:"uniqueIndex;size:50" json:"registration_number"`
	IsActive           bool           `gorm:"default:true" json:"is_active"`
	Loans              []Loan         `gorm:"foreignKey:PatronID" json:"-"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// CanBorrow reports whether the patron is allowed to take out loans.
func (p *Patron) CanBorrow() bool {
	return p.IsActive
}
