// Package books provides database operations for the book catalog.
//
// The repository doubles as the importer's lookup capability:
//
//	var _ importer.BookStore = (*Repository)(nil)
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAll retrieves all books ordered by title.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("title ASC").Find(&books).Error
	return books, err
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByISBN retrieves a book by its ISBN.
func (r *Repository) GetByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// ExistsByISBN reports whether a book with the given ISBN is already in
// the catalog.
func (r *Repository) ExistsByISBN(isbn string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("isbn = ?", isbn).Count(&count).Error
	return count > 0, err
}

// Search finds books whose title or author matches the query
// (case-insensitive partial match).
func (r *Repository) Search(query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// FilterByCategory retrieves books in the given category (case-insensitive
// exact match).
func (r *Repository) FilterByCategory(category string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.
		Where("LOWER(category) = LOWER(?)", category).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// GetAvailable retrieves all books with at least one loanable copy.
func (r *Repository) GetAvailable() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("available_quantity > 0").Order("title ASC").Find(&books).Error
	return books, err
}

// Create inserts a new book.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// Update persists changes to an existing book.
func (r *Repository) Update(book *entities.Book) error {
	return r.db.Save(book).Error
}

// Delete soft-deletes a book. Books with open loans cannot be deleted.
func (r *Repository) Delete(id uint) error {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("book_id = ? AND status IN ?", id, []entities.LoanStatus{
			entities.LoanStatusActive, entities.LoanStatusOverdue, entities.LoanStatusRenewed,
		}).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrBookHasOpenLoans
	}
	return r.db.Delete(&entities.Book{}, id).Error
}

// ErrBookHasOpenLoans is returned when deleting a book that is still out
// on loan.
var ErrBookHasOpenLoans = errors.New("book has open loans and cannot be deleted")
