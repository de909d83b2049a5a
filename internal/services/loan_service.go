// Package services holds the loan lifecycle rules: reservation against
// available copies, borrower eligibility, due-date defaulting, renewal
// and the overdue sweep.
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

var (
	ErrBookNotAvailable = errors.New("book is not available for loan")
	ErrPatronInactive   = errors.New("patron is not active and cannot borrow books")
	ErrAlreadyReturned  = errors.New("loan has already been returned")
)

// LoanService applies loan business rules on top of the repositories.
type LoanService struct {
	books       BookGetter
	patrons     PatronGetter
	loans       LoanStore
	periodDays  int
	renewalDays int
}

// NewLoanService creates a loan service. periodDays and renewalDays fall
// back to the default loan period when non-positive.
func NewLoanService(books BookGetter, patrons PatronGetter, loans LoanStore, periodDays, renewalDays int) *LoanService {
	if periodDays <= 0 {
		periodDays = entities.DefaultLoanPeriodDays
	}
	if renewalDays <= 0 {
		renewalDays = entities.DefaultLoanPeriodDays
	}
	return &LoanService{
		books:       books,
		patrons:     patrons,
		loans:       loans,
		periodDays:  periodDays,
		renewalDays: renewalDays,
	}
}

// CreateLoanRequest carries the caller-supplied fields for a new loan.
// LoanDate defaults to now, DueDate to LoanDate plus the loan period.
type CreateLoanRequest struct {
	BookID   uint
	PatronID uint
	LoanDate *time.Time
	DueDate  *time.Time
	Notes    string
}

// Create reserves a copy and opens the loan. A copy is consumed exactly
// once: the guarded decrement inside the store rejects the reservation
// when another loan took the last copy in between.
func (s *LoanService) Create(req CreateLoanRequest) (*entities.Loan, error) {
	book, err := s.books.GetByID(req.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	patron, err := s.patrons.GetByID(req.PatronID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patron: %w", err)
	}

	if !book.IsAvailable() {
		return nil, ErrBookNotAvailable
	}
	if !patron.CanBorrow() {
		return nil, ErrPatronInactive
	}

	loanDate := time.Now()
	if req.LoanDate != nil {
		loanDate = *req.LoanDate
	}
	dueDate := loanDate.AddDate(0, 0, s.periodDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	loan := &entities.Loan{
		BookID:   book.ID,
		PatronID: patron.ID,
		LoanDate: loanDate,
		DueDate:  dueDate,
		Status:   entities.LoanStatusActive,
		Notes:    req.Notes,
	}

	if err := s.loans.CreateWithReservation(loan); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotAvailable
		}
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}

	return loan, nil
}

// Return marks the loan as returned and gives the copy back.
func (s *LoanService) Return(loanID uint) (*entities.Loan, error) {
	loan, err := s.loans.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status == entities.LoanStatusReturned {
		return nil, ErrAlreadyReturned
	}

	if err := s.loans.MarkReturned(loan, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to return loan: %w", err)
	}
	return loan, nil
}

// Renew pushes the due date out by the renewal period, measured from the
// current due date, and flips the status to renewed. Returned loans
// cannot be renewed.
func (s *LoanService) Renew(loanID uint) (*entities.Loan, error) {
	loan, err := s.loans.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status == entities.LoanStatusReturned {
		return nil, ErrAlreadyReturned
	}

	loan.DueDate = loan.DueDate.AddDate(0, 0, s.renewalDays)
	loan.Status = entities.LoanStatusRenewed
	if err := s.loans.Update(loan); err != nil {
		return nil, fmt.Errorf("failed to renew loan: %w", err)
	}
	return loan, nil
}

// SweepOverdue marks open loans past due as overdue and returns the
// loans that are now overdue, for notification.
func (s *LoanService) SweepOverdue(now time.Time) ([]entities.Loan, error) {
	if _, err := s.loans.MarkOverdue(now); err != nil {
		return nil, fmt.Errorf("failed to mark overdue loans: %w", err)
	}
	return s.loans.GetOverdue(now)
}
