package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/patrons"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/services"
)

type loansTestEnv struct {
	db      *database.Database
	books   *books.Repository
	patrons *patrons.Repository
	loans   *loans.Repository
	router  *gin.Engine
}

func setupLoansTest(t *testing.T) (*loansTestEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_loans_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	booksRepo := books.NewRepository(db.DB)
	patronsRepo := patrons.NewRepository(db.DB)
	loansRepo := loans.NewRepository(db.DB)
	svc := services.NewLoanService(booksRepo, patronsRepo, loansRepo, 14, 14)

	controller := NewLoansController(loansRepo, svc, nil)

	router := gin.New()
	router.GET("/api/loans", controller.GetAllLoans)
	router.GET("/api/loans/active", controller.GetActiveLoans)
	router.GET("/api/loans/overdue", controller.GetOverdueLoans)
	router.POST("/api/loans", controller.CreateLoan)
	router.GET("/api/loans/:id", controller.GetLoan)
	router.DELETE("/api/loans/:id", controller.DeleteLoan)
	router.POST("/api/loans/:id/return", controller.ReturnLoan)
	router.POST("/api/loans/:id/renew", controller.RenewLoan)

	env := &loansTestEnv{db: db, books: booksRepo, patrons: patronsRepo, loans: loansRepo, router: router}
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

func (env *loansTestEnv) seed(t *testing.T, available int, active bool) (*entities.Book, *entities.Patron) {
	t.Helper()
	book := &entities.Book{
		Title: "Dune", Author: "Frank Herbert", ISBN: "1111",
		Quantity: available + 1, AvailableQuantity: available,
	}
	require.NoError(t, env.books.Create(book))

	patron := &entities.Patron{
		FullName: "Ada Lovelace", Email: "ada@example.com",
		RegistrationNumber: "REG-001", IsActive: active,
	}
	require.NoError(t, env.patrons.Create(patron))
	return book, patron
}

func (env *loansTestEnv) openLoan(t *testing.T, bookID, patronID uint) uint {
	t.Helper()
	body := fmt.Sprintf(`{"book_id": %d, "patron_id": %d}`, bookID, patronID)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/loans", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var loan entities.Loan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loan))
	return loan.ID
}

func TestLoansController_CreateLoan(t *testing.T) {
	t.Run("opens loan and consumes a copy", func(t *testing.T) {
		env, cleanup := setupLoansTest(t)
		defer cleanup()

		book, patron := env.seed(t, 2, true)
		env.openLoan(t, book.ID, patron.ID)

		updated, err := env.books.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.AvailableQuantity)
	})

	t.Run("rejects book with no available copies", func(t *testing.T) {
		env, cleanup := setupLoansTest(t)
		defer cleanup()

		book, patron := env.seed(t, 0, true)

		body := fmt.Sprintf(`{"book_id": %d, "patron_id": %d}`, book.ID, patron.ID)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/loans", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects inactive patron", func(t *testing.T) {
		env, cleanup := setupLoansTest(t)
		defer cleanup()

		book, patron := env.seed(t, 1, false)

		body := fmt.Sprintf(`{"book_id": %d, "patron_id": %d}`, book.ID, patron.ID)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/loans", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for unknown book", func(t *testing.T) {
		env, cleanup := setupLoansTest(t)
		defer cleanup()

		_, patron := env.seed(t, 1, true)

		body := fmt.Sprintf(`{"book_id": 999, "patron_id": %d}`, patron.ID)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/loans", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLoansController_ReturnLoan(t *testing.T) {
	t.Run("returns loan and restores the copy", func(t *testing.T) {
		env, cleanup := setupLoansTest(t)
		defer cleanup()

		book, patron := env.seed(t, 1, true)
		loanID := env.openLoan(t, book.ID, patron.ID)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/loans/%d/return", loanID), nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		updated, err := env.books.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.AvailableQuantity)
	})

	t.Run("rejects a second return", func(t *testing.T) {
		env, cleanup := setupLoansTest(t)
		defer cleanup()

		book, patron := env.seed(t, 1, true)
		loanID := env.openLoan(t, book.ID, patron.ID)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/loans/%d/return", loanID), nil)
		env.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("POST", fmt.Sprintf("/api/loans/%d/return", loanID), nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for unknown loan", func(t *testing.T) {
		env, cleanup := setupLoansTest(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/loans/999/return", nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLoansController_RenewLoan(t *testing.T) {
	env, cleanup := setupLoansTest(t)
	defer cleanup()

	book, patron := env.seed(t, 1, true)
	loanID := env.openLoan(t, book.ID, patron.ID)

	before, err := env.loans.GetByID(loanID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/loans/%d/renew", loanID), nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	after, err := env.loans.GetByID(loanID)
	require.NoError(t, err)
	assert.True(t, after.DueDate.After(before.DueDate))
}

func TestLoansController_ListEndpoints(t *testing.T) {
	env, cleanup := setupLoansTest(t)
	defer cleanup()

	book, patron := env.seed(t, 2, true)
	openID := env.openLoan(t, book.ID, patron.ID)
	returnedID := env.openLoan(t, book.ID, patron.ID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/loans/%d/return", returnedID), nil)
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/loans", nil)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/loans/active", nil)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", fmt.Sprintf("/api/loans/%d", openID), nil)
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoansController_DeleteLoan(t *testing.T) {
	t.Run("refuses to delete an open loan", func(t *testing.T) {
		env, cleanup := setupLoansTest(t)
		defer cleanup()

		book, patron := env.seed(t, 1, true)
		loanID := env.openLoan(t, book.ID, patron.ID)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/loans/%d", loanID), nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "still open")
	})

	t.Run("deletes a returned loan", func(t *testing.T) {
		env, cleanup := setupLoansTest(t)
		defer cleanup()

		book, patron := env.seed(t, 1, true)
		loanID := env.openLoan(t, book.ID, patron.ID)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/loans/%d/return", loanID), nil)
		env.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("DELETE", fmt.Sprintf("/api/loans/%d", loanID), nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		_, err := env.loans.GetByID(loanID)
		assert.Error(t, err)
	})
}
