package http

import (
	"bytes"
	"encoding/json"
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
	"github.com/openshelf/openshelf/internal/entities"
)

func setupBooksTest(t *testing.T) (*database.Database, *books.Repository, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, books.NewRepository(db.DB), cleanup
}

func booksRouter(repo *books.Repository) *gin.Engine {
	controller := NewBooksController(repo, nil)
	router := gin.New()
	router.GET("/api/books", controller.GetAllBooks)
	router.GET("/api/books/available", controller.GetAvailableBooks)
	router.POST("/api/books", controller.CreateBook)
	router.GET("/api/books/:id", controller.GetBook)
	router.PATCH("/api/books/:id", controller.UpdateBook)
	router.DELETE("/api/books/:id", controller.DeleteBook)
	return router
}

func TestBooksController_GetAllBooks(t *testing.T) {
	t.Run("returns empty list when no books", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(0), response["count"])
		assert.Empty(t, response["books"])
	})

	t.Run("returns books with count", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		require.NoError(t, repo.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "1111", Quantity: 1, AvailableQuantity: 1}))
		require.NoError(t, repo.Create(&entities.Book{Title: "Hyperion", Author: "Dan Simmons", ISBN: "2222", Quantity: 1, AvailableQuantity: 1}))

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(2), response["count"])
	})

	t.Run("filters by search query", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		require.NoError(t, repo.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "1111", Quantity: 1, AvailableQuantity: 1}))
		require.NoError(t, repo.Create(&entities.Book{Title: "Hyperion", Author: "Dan Simmons", ISBN: "2222", Quantity: 1, AvailableQuantity: 1}))

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books?q=dune", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Dune")
		assert.NotContains(t, w.Body.String(), "Hyperion")
	})

	t.Run("filters by category", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		require.NoError(t, repo.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "1111", Category: "sci-fi", Quantity: 1, AvailableQuantity: 1}))
		require.NoError(t, repo.Create(&entities.Book{Title: "SICP", Author: "Abelson", ISBN: "2222", Category: "programming", Quantity: 1, AvailableQuantity: 1}))

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books?category=programming", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "SICP")
		assert.NotContains(t, w.Body.String(), "Dune")
	})
}

func TestBooksController_GetAvailableBooks(t *testing.T) {
	_, repo, cleanup := setupBooksTest(t)
	defer cleanup()

	require.NoError(t, repo.Create(&entities.Book{Title: "In Stock", Author: "A", ISBN: "1111", Quantity: 2, AvailableQuantity: 1}))
	require.NoError(t, repo.Create(&entities.Book{Title: "All Out", Author: "B", ISBN: "2222", Quantity: 1, AvailableQuantity: 0}))

	router := booksRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/books/available", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "In Stock")
	assert.NotContains(t, w.Body.String(), "All Out")
}

func TestBooksController_CreateBook(t *testing.T) {
	t.Run("creates book with default quantity", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		body := `{"title": "Dune", "author": "Frank Herbert", "isbn": "978-0441172719"}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var created entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.Equal(t, "Dune", created.Title)
		assert.Equal(t, 1, created.Quantity)
		assert.Equal(t, 1, created.AvailableQuantity)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", bytes.NewBufferString(`{"title": "No Author"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects duplicate ISBN", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		require.NoError(t, repo.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "1111", Quantity: 1, AvailableQuantity: 1}))

		router := booksRouter(repo)

		body := `{"title": "Dune Again", "author": "Someone", "isbn": "1111"}`
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/books", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already exists")
	})
}

func TestBooksController_UpdateBook(t *testing.T) {
	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		book := &entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "1111", Quantity: 3, AvailableQuantity: 3}
		require.NoError(t, repo.Create(book))

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/1", bytes.NewBufferString(`{"category": "sci-fi"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		updated, err := repo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, "sci-fi", updated.Category)
		assert.Equal(t, "Dune", updated.Title)
	})

	t.Run("quantity change shifts available copies", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		book := &entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "1111", Quantity: 3, AvailableQuantity: 1}
		require.NoError(t, repo.Create(book))

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/1", bytes.NewBufferString(`{"quantity": 5}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		updated, err := repo.GetByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Quantity)
		assert.Equal(t, 3, updated.AvailableQuantity)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		require.NoError(t, repo.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "1111", Quantity: 1, AvailableQuantity: 1}))

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/1", bytes.NewBufferString(`{"quantity": -2}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for unknown book", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/api/books/999", bytes.NewBufferString(`{"title": "x"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_DeleteBook(t *testing.T) {
	t.Run("deletes existing book", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		book := &entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "1111", Quantity: 1, AvailableQuantity: 1}
		require.NoError(t, repo.Create(book))

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/books/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		_, err := repo.GetByID(book.ID)
		assert.Error(t, err)
	})

	t.Run("returns 400 for invalid id", func(t *testing.T) {
		_, repo, cleanup := setupBooksTest(t)
		defer cleanup()

		router := booksRouter(repo)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/books/abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
