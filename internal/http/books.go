package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
)

// BooksController serves the book catalog endpoints.
type BooksController struct {
	store BookStore
	audit AuditLogger
}

func NewBooksController(store BookStore, audit AuditLogger) *BooksController {
	return &BooksController{store: store, audit: audit}
}

// GetAllBooks lists the catalog. Supports ?q= (title/author partial
// match) and ?category= filtering; the two are mutually exclusive and
// q wins.
func (ctrl *BooksController) GetAllBooks(c *gin.Context) {
	var (
		result []entities.Book
		err    error
	)

	switch {
	case c.Query("q") != "":
		result, err = ctrl.store.Search(c.Query("q"))
	case c.Query("category") != "":
		result, err = ctrl.store.FilterByCategory(c.Query("category"))
	default:
		result, err = ctrl.store.GetAll()
	}
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": result, "count": len(result)})
}

// GetAvailableBooks lists books with at least one loanable copy.
func (ctrl *BooksController) GetAvailableBooks(c *gin.Context) {
	result, err := ctrl.store.GetAvailable()
	if err != nil {
		respondInternalError(c, err, "list available books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": result, "count": len(result)})
}

// GetBook returns a single book by ID.
func (ctrl *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

type createBookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	ISBN            string `json:"isbn" binding:"required"`
	Publisher       string `json:"publisher"`
	PublicationYear *int   `json:"publication_year"`
	Category        string `json:"category"`
	Quantity        int    `json:"quantity"`
}

// CreateBook adds a book to the catalog. Quantity defaults to 1 and all
// copies start available.
func (ctrl *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title, author and isbn are required")
		return
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	book := &entities.Book{
		Title:             strings.TrimSpace(req.Title),
		Author:            strings.TrimSpace(req.Author),
		ISBN:              strings.TrimSpace(req.ISBN),
		Publisher:         req.Publisher,
		PublicationYear:   req.PublicationYear,
		Category:          req.Category,
		Quantity:          quantity,
		AvailableQuantity: quantity,
	}

	if err := ctrl.store.Create(book); err != nil {
		if isUniqueViolation(err) {
			respondBadRequest(c, "book with this ISBN already exists")
			return
		}
		respondInternalError(c, err, "create book")
		return
	}

	respondCreated(c, book)
}

type updateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publication_year"`
	Category        *string `json:"category"`
	Quantity        *int    `json:"quantity"`
}

// UpdateBook applies a partial update. Changing total quantity shifts
// available copies by the same amount, floored at zero.
func (ctrl *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.PublicationYear != nil {
		book.PublicationYear = req.PublicationYear
	}
	if req.Category != nil {
		book.Category = *req.Category
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			respondBadRequest(c, "quantity cannot be negative")
			return
		}
		delta := *req.Quantity - book.Quantity
		book.Quantity = *req.Quantity
		book.AvailableQuantity += delta
		if book.AvailableQuantity < 0 {
			book.AvailableQuantity = 0
		}
	}

	if err := ctrl.store.Update(book); err != nil {
		if isUniqueViolation(err) {
			respondBadRequest(c, "book with this ISBN already exists")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook soft-deletes a book. Books with open loans are refused.
func (ctrl *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	if err := ctrl.store.Delete(id); err != nil {
		if errors.Is(err, books.ErrBookHasOpenLoans) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	if ctrl.audit != nil {
		ctrl.audit.LogDelete(auth.GetAccountID(c), "book", id, book.Title)
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "book deleted"})
}

// isUniqueViolation detects SQLite unique-constraint failures surfaced
// through gorm.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
