package services

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/patrons"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupLoanService(t *testing.T) (*LoanService, *database.Database, func()) {
	t.Helper()

	dbPath := "./test_loans_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	svc := NewLoanService(
		books.NewRepository(db.DB),
		patrons.NewRepository(db.DB),
		loans.NewRepository(db.DB),
		14, 14,
	)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return svc, db, cleanup
}

func seedBook(t *testing.T, db *database.Database, quantity int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:             "Test Book",
		Author:            "Test Author",
		ISBN:              "9780000000001",
		Quantity:          quantity,
		AvailableQuantity: quantity,
	}
	require.NoError(t, db.DB.Create(book).Error)
	return book
}

func seedPatron(t *testing.T, db *database.Database, active bool) *entities.Patron {
	t.Helper()
	patron := &entities.Patron{
		FullName:           "Test Patron",
		Email:              "patron@example.com",
		RegistrationNumber: "REG001",
		IsActive:           active,
	}
	require.NoError(t, db.DB.Create(patron).Error)
	return patron
}

func TestLoanService_Create(t *testing.T) {
	svc, db, cleanup := setupLoanService(t)
	defer cleanup()

	book := seedBook(t, db, 2)
	patron := seedPatron(t, db, true)

	loan, err := svc.Create(CreateLoanRequest{BookID: book.ID, PatronID: patron.ID})

	require.NoError(t, err)
	assert.NotZero(t, loan.ID)
	assert.Equal(t, entities.LoanStatusActive, loan.Status)

	// Due date defaults to loan date plus the loan period
	wantDue := loan.LoanDate.AddDate(0, 0, 14)
	assert.WithinDuration(t, wantDue, loan.DueDate, time.Second)

	// Reservation consumed one copy
	var reloaded entities.Book
	require.NoError(t, db.DB.First(&reloaded, book.ID).Error)
	assert.Equal(t, 1, reloaded.AvailableQuantity)
}

func TestLoanService_Create_NoCopiesLeft(t *testing.T) {
	svc, db, cleanup := setupLoanService(t)
	defer cleanup()

	book := seedBook(t, db, 1)
	patron := seedPatron(t, db, true)

	_, err := svc.Create(CreateLoanRequest{BookID: book.ID, PatronID: patron.ID})
	require.NoError(t, err)

	_, err = svc.Create(CreateLoanRequest{BookID: book.ID, PatronID: patron.ID})
	assert.ErrorIs(t, err, ErrBookNotAvailable)
}

func TestLoanService_Create_InactivePatron(t *testing.T) {
	svc, db, cleanup := setupLoanService(t)
	defer cleanup()

	book := seedBook(t, db, 1)
	patron := seedPatron(t, db, false)

	_, err := svc.Create(CreateLoanRequest{BookID: book.ID, PatronID: patron.ID})
	assert.ErrorIs(t, err, ErrPatronInactive)

	// No copy was consumed
	var reloaded entities.Book
	require.NoError(t, db.DB.First(&reloaded, book.ID).Error)
	assert.Equal(t, 1, reloaded.AvailableQuantity)
}

func TestLoanService_Return(t *testing.T) {
	svc, db, cleanup := setupLoanService(t)
	defer cleanup()

	book := seedBook(t, db, 1)
	patron := seedPatron(t, db, true)

	loan, err := svc.Create(CreateLoanRequest{BookID: book.ID, PatronID: patron.ID})
	require.NoError(t, err)

	returned, err := svc.Return(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	var reloaded entities.Book
	require.NoError(t, db.DB.First(&reloaded, book.ID).Error)
	assert.Equal(t, 1, reloaded.AvailableQuantity)

	// Returning twice is rejected
	_, err = svc.Return(loan.ID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)
}

func TestLoanService_Return_NeverExceedsQuantity(t *testing.T) {
	svc, db, cleanup := setupLoanService(t)
	defer cleanup()

	book := seedBook(t, db, 1)
	patron := seedPatron(t, db, true)

	loan, err := svc.Create(CreateLoanRequest{BookID: book.ID, PatronID: patron.ID})
	require.NoError(t, err)

	// Someone corrected the counter by hand while the loan was out
	require.NoError(t, db.DB.Model(&entities.Book{}).
		Where("id = ?", book.ID).
		Update("available_quantity", 1).Error)

	_, err = svc.Return(loan.ID)
	require.NoError(t, err)

	var reloaded entities.Book
	require.NoError(t, db.DB.First(&reloaded, book.ID).Error)
	assert.Equal(t, 1, reloaded.AvailableQuantity)
}

func TestLoanService_Renew(t *testing.T) {
	svc, db, cleanup := setupLoanService(t)
	defer cleanup()

	book := seedBook(t, db, 1)
	patron := seedPatron(t, db, true)

	loan, err := svc.Create(CreateLoanRequest{BookID: book.ID, PatronID: patron.ID})
	require.NoError(t, err)
	originalDue := loan.DueDate

	renewed, err := svc.Renew(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.LoanStatusRenewed, renewed.Status)
	assert.WithinDuration(t, originalDue.AddDate(0, 0, 14), renewed.DueDate, time.Second)
}

func TestLoanService_SweepOverdue(t *testing.T) {
	svc, db, cleanup := setupLoanService(t)
	defer cleanup()

	book := seedBook(t, db, 2)
	patron := seedPatron(t, db, true)

	past := time.Now().AddDate(0, 0, -30)
	pastDue := past.AddDate(0, 0, 14)
	overdueLoan, err := svc.Create(CreateLoanRequest{
		BookID: book.ID, PatronID: patron.ID,
		LoanDate: &past, DueDate: &pastDue,
	})
	require.NoError(t, err)

	_, err = svc.Create(CreateLoanRequest{BookID: book.ID, PatronID: patron.ID})
	require.NoError(t, err)

	overdue, err := svc.SweepOverdue(time.Now())
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, overdueLoan.ID, overdue[0].ID)
	assert.Equal(t, entities.LoanStatusOverdue, overdue[0].Status)
}
