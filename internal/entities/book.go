package entities

import (
	"time"

	"gorm.io/gorm"
)

// Book represents one title in the library collection. Copies are tracked
// as counters: Quantity is the total the library owns, AvailableQuantity
// how many are currently loanable (0 <= AvailableQuantity <= Quantity).
type Book struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Title             string         `gorm:"index;size:255" json:"title"`
	Author            string         `gorm:"index;size:255" json:"author"`
	ISBN              string         `gorm:"uniqueIndex;size:13" json:"isbn"`
	Publisher         string         `gorm:"size:255" json:"publisher,omitempty"`
	PublicationYear   *int           `json:"publication_year,omitempty"`
	Category          string         `gorm:"size:100" json:"category,omitempty"`
	Quantity          int            `gorm:"default:1" json:"quantity"`
	AvailableQuantity int            `gorm:"default:1" json:"available_quantity"`
	Loans             []Loan         `gorm:"foreignKey:BookID" json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// IsAvailable reports whether at least one copy can be loaned out.
func (b *Book) IsAvailable() bool {
	return b.AvailableQuantity > 0
}
