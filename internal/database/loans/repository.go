// Package loans provides database operations for the loan lifecycle.
//
// Mutations that touch book availability run inside a transaction so the
// available-copy counter and the loan row move together.
package loans

import (
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// openStatuses are the loan states that hold a book copy.
var openStatuses = []entities.LoanStatus{
	entities.LoanStatusActive,
	entities.LoanStatusOverdue,
	entities.LoanStatusRenewed,
}

// Repository handles all loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAll retrieves all loans, most recent first, with book and patron
// preloaded.
func (r *Repository) GetAll() ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").Preload("Patron").
		Order("loan_date DESC").
		Find(&loans).Error
	return loans, err
}

// GetByID retrieves a loan by ID with book and patron preloaded.
func (r *Repository) GetByID(id uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.Preload("Book").Preload("Patron").First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetOpen retrieves all loans that still hold a copy (active, overdue or
// renewed).
func (r *Repository) GetOpen() ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").Preload("Patron").
		Where("status IN ?", openStatuses).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// GetOverdue retrieves open loans past their due date as of now.
func (r *Repository) GetOverdue(now time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").Preload("Patron").
		Where("status IN ? AND due_date < ?", openStatuses, now).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// GetByPatron retrieves all loans for one patron.
func (r *Repository) GetByPatron(patronID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").
		Where("patron_id = ?", patronID).
		Order("loan_date DESC").
		Find(&loans).Error
	return loans, err
}

// GetByBook retrieves all loans of one book.
func (r *Repository) GetByBook(bookID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Patron").
		Where("book_id = ?", bookID).
		Order("loan_date DESC").
		Find(&loans).Error
	return loans, err
}

// CreateWithReservation inserts the loan and decrements the book's
// available copies in one transaction. The caller must have checked
// availability already; the guarded UPDATE re-checks under the
// transaction so two racing loans cannot take the last copy twice.
func (r *Repository) CreateWithReservation(loan *entities.Loan) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Book{}).
			Where("id = ? AND available_quantity > 0", loan.BookID).
			UpdateColumn("available_quantity", gorm.Expr("available_quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(loan).Error
	})
}

// MarkReturned sets the return date and status and gives the copy back to
// the book, all in one transaction. The counter never exceeds the book's
// total quantity.
func (r *Repository) MarkReturned(loan *entities.Loan, returnedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		loan.Status = entities.LoanStatusReturned
		loan.ReturnDate = &returnedAt
		if err := tx.Save(loan).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Book{}).
			Where("id = ? AND available_quantity < quantity", loan.BookID).
			UpdateColumn("available_quantity", gorm.Expr("available_quantity + 1")).Error
	})
}

// Update persists changes to an existing loan.
func (r *Repository) Update(loan *entities.Loan) error {
	return r.db.Save(loan).Error
}

// Delete removes a loan record.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Loan{}, id).Error
}

// MarkOverdue flips open loans past their due date to overdue status and
// returns how many rows changed. Used by the scheduled sweep.
func (r *Repository) MarkOverdue(now time.Time) (int64, error) {
	res := r.db.Model(&entities.Loan{}).
		Where("status IN ? AND due_date < ?", []entities.LoanStatus{
			entities.LoanStatusActive, entities.LoanStatusRenewed,
		}, now).
		Update("status", entities.LoanStatusOverdue)
	return res.RowsAffected, res.Error
}
