package http

import (
	"time"

	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/services"
)

// BookStore is the catalog surface the book handlers drive.
type BookStore interface {
	GetAll() ([]entities.Book, error)
	GetByID(id uint) (*entities.Book, error)
	Search(query string) ([]entities.Book, error)
	FilterByCategory(category string) ([]entities.Book, error)
	GetAvailable() ([]entities.Book, error)
	Create(book *entities.Book) error
	Update(book *entities.Book) error
	Delete(id uint) error
}

// PatronStore is the patron surface the patron handlers drive.
type PatronStore interface {
	GetAll() ([]entities.Patron, error)
	GetByID(id uint) (*entities.Patron, error)
	Search(query string) ([]entities.Patron, error)
	GetActive() ([]entities.Patron, error)
	Create(patron *entities.Patron) error
	Update(patron *entities.Patron) error
	Delete(id uint) error
}

// LoanReader provides read and delete access to loan records.
type LoanReader interface {
	GetAll() ([]entities.Loan, error)
	GetByID(id uint) (*entities.Loan, error)
	GetOpen() ([]entities.Loan, error)
	GetOverdue(now time.Time) ([]entities.Loan, error)
	GetByPatron(patronID uint) ([]entities.Loan, error)
	GetByBook(bookID uint) ([]entities.Loan, error)
	Delete(id uint) error
}

// LoanManager applies the loan lifecycle rules.
type LoanManager interface {
	Create(req services.CreateLoanRequest) (*entities.Loan, error)
	Return(loanID uint) (*entities.Loan, error)
	Renew(loanID uint) (*entities.Loan, error)
}

// AuditLogger records operational events. Satisfied by audit.Service;
// handlers treat it as optional.
type AuditLogger interface {
	LogImport(accountID uint, entityType, description string, created, failed int, success bool)
	LogLoan(accountID uint, action string, loanID uint, description string, err error)
	LogDelete(accountID uint, entityType string, entityID uint, entityName string)
}
