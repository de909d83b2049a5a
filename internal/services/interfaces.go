package services

import (
	"time"

	"github.com/openshelf/openshelf/internal/entities"
)

// BookGetter provides read access to single books.
type BookGetter interface {
	GetByID(id uint) (*entities.Book, error)
}

// PatronGetter provides read access to single patrons.
type PatronGetter interface {
	GetByID(id uint) (*entities.Patron, error)
}

// LoanStore is the persistence surface the loan service drives. The
// reservation and return operations move the loan row and the book's
// available-copy counter together.
type LoanStore interface {
	GetByID(id uint) (*entities.Loan, error)
	GetOverdue(now time.Time) ([]entities.Loan, error)
	CreateWithReservation(loan *entities.Loan) error
	MarkReturned(loan *entities.Loan, returnedAt time.Time) error
	Update(loan *entities.Loan) error
	MarkOverdue(now time.Time) (int64, error)
}
