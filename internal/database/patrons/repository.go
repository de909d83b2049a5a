// Package patrons provides database operations for library users.
package patrons

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// ErrPatronHasOpenLoans is returned when deleting a patron with books
// still out.
var ErrPatronHasOpenLoans = errors.New("patron has open loans and cannot be deleted")

// Repository handles all patron database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new patrons repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAll retrieves all patrons ordered by name.
func (r *Repository) GetAll() ([]entities.Patron, error) {
	var patrons []entities.Patron
	err := r.db.Order("full_name ASC").Find(&patrons).Error
	return patrons, err
}

// GetByID retrieves a patron by ID.
func (r *Repository) GetByID(id uint) (*entities.Patron, error) {
	var patron entities.Patron
	if err := r.db.First(&patron, id).Error; err != nil {
		return nil, err
	}
	return &patron, nil
}

// GetByRegistrationNumber retrieves a patron by their registration number.
func (r *Repository) GetByRegistrationNumber(regNum string) (*entities.Patron, error) {
	var patron entities.Patron
	if err := r.db.Where("registration_number = ?", regNum).First(&patron).Error; err != nil {
		return nil, err
	}
	return &patron, nil
}

// ExistsByRegistrationNumber reports whether a patron with the given
// registration number exists.
func (r *Repository) ExistsByRegistrationNumber(regNum string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Patron{}).
		Where("registration_number = ?", regNum).
		Count(&count).Error
	return count > 0, err
}

// ExistsByEmail reports whether a patron with the given email exists.
func (r *Repository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Patron{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// GetActive retrieves all patrons eligible to borrow.
func (r *Repository) GetActive() ([]entities.Patron, error) {
	var patrons []entities.Patron
	err := r.db.Where("is_active = ?", true).Order("full_name ASC").Find(&patrons).Error
	return patrons, err
}

// Search finds patrons by name, email or registration number
// (case-insensitive partial match).
func (r *Repository) Search(query string) ([]entities.Patron, error) {
	var patrons []entities.Patron
	pattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(full_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR registration_number LIKE ?",
			pattern, pattern, pattern).
		Order("full_name ASC").
		Find(&patrons).Error
	return patrons, err
}

// Create inserts a new patron.
func (r *Repository) Create(patron *entities.Patron) error {
	return r.db.Create(patron).Error
}

// Update persists changes to an existing patron.
func (r *Repository) Update(patron *entities.Patron) error {
	return r.db.Save(patron).Error
}

// Delete soft-deletes a patron. Patrons with open loans cannot be deleted.
func (r *Repository) Delete(id uint) error {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("patron_id = ? AND status IN ?", id, []entities.LoanStatus{
			entities.LoanStatusActive, entities.LoanStatusOverdue, entities.LoanStatusRenewed,
		}).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrPatronHasOpenLoans
	}
	return r.db.Delete(&entities.Patron{}, id).Error
}
