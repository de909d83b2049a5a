package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/services"
)

// LoansController serves the loan lifecycle endpoints.
type LoansController struct {
	reader  LoanReader
	manager LoanManager
	audit   AuditLogger
}

func NewLoansController(reader LoanReader, manager LoanManager, audit AuditLogger) *LoansController {
	return &LoansController{reader: reader, manager: manager, audit: audit}
}

// GetAllLoans lists all loans, most recent first.
func (ctrl *LoansController) GetAllLoans(c *gin.Context) {
	loans, err := ctrl.reader.GetAll()
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

// GetActiveLoans lists loans that still hold a copy.
func (ctrl *LoansController) GetActiveLoans(c *gin.Context) {
	loans, err := ctrl.reader.GetOpen()
	if err != nil {
		respondInternalError(c, err, "list active loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

// GetOverdueLoans lists open loans past their due date.
func (ctrl *LoansController) GetOverdueLoans(c *gin.Context) {
	loans, err := ctrl.reader.GetOverdue(time.Now())
	if err != nil {
		respondInternalError(c, err, "list overdue loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

// GetLoan returns a single loan with its book and patron.
func (ctrl *LoansController) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := ctrl.reader.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "loan")
			return
		}
		respondInternalError(c, err, "get loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// GetLoansByBook lists all loans of one book.
func (ctrl *LoansController) GetLoansByBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loans, err := ctrl.reader.GetByBook(id)
	if err != nil {
		respondInternalError(c, err, "list loans by book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

// GetLoansByPatron lists all loans for one patron.
func (ctrl *LoansController) GetLoansByPatron(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loans, err := ctrl.reader.GetByPatron(id)
	if err != nil {
		respondInternalError(c, err, "list loans by patron")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

type createLoanRequest struct {
	BookID   uint       `json:"book_id" binding:"required"`
	PatronID uint       `json:"patron_id" binding:"required"`
	LoanDate *time.Time `json:"loan_date"`
	DueDate  *time.Time `json:"due_date"`
	Notes    string     `json:"notes"`
}

// CreateLoan opens a loan, consuming one available copy of the book.
func (ctrl *LoansController) CreateLoan(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id and patron_id are required")
		return
	}

	loan, err := ctrl.manager.Create(services.CreateLoanRequest{
		BookID:   req.BookID,
		PatronID: req.PatronID,
		LoanDate: req.LoanDate,
		DueDate:  req.DueDate,
		Notes:    req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotAvailable),
			errors.Is(err, services.ErrPatronInactive):
			respondBadRequest(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "book or patron")
		default:
			respondInternalError(c, err, "create loan")
		}
		return
	}

	if ctrl.audit != nil {
		desc := fmt.Sprintf("Loan opened: book %d to patron %d", loan.BookID, loan.PatronID)
		ctrl.audit.LogLoan(auth.GetAccountID(c), "create", loan.ID, desc, nil)
	}

	respondCreated(c, loan)
}

// ReturnLoan marks a loan as returned and gives the copy back.
func (ctrl *LoansController) ReturnLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := ctrl.manager.Return(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyReturned):
			respondBadRequest(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "loan")
		default:
			respondInternalError(c, err, "return loan")
		}
		return
	}

	if ctrl.audit != nil {
		ctrl.audit.LogLoan(auth.GetAccountID(c), "return", loan.ID, "Loan returned", nil)
	}

	c.JSON(http.StatusOK, loan)
}

// RenewLoan pushes the due date out by the renewal period.
func (ctrl *LoansController) RenewLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := ctrl.manager.Renew(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyReturned):
			respondBadRequest(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "loan")
		default:
			respondInternalError(c, err, "renew loan")
		}
		return
	}

	if ctrl.audit != nil {
		desc := fmt.Sprintf("Loan renewed until %s", loan.DueDate.Format("2006-01-02"))
		ctrl.audit.LogLoan(auth.GetAccountID(c), "renew", loan.ID, desc, nil)
	}

	c.JSON(http.StatusOK, loan)
}

// DeleteLoan removes a loan record. Open loans cannot be deleted; they
// must be returned first so the copy counter stays consistent.
func (ctrl *LoansController) DeleteLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := ctrl.reader.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "loan")
			return
		}
		respondInternalError(c, err, "get loan")
		return
	}

	if loan.Status != entities.LoanStatusReturned {
		respondBadRequest(c, "loan is still open; return it before deleting")
		return
	}

	if err := ctrl.reader.Delete(id); err != nil {
		respondInternalError(c, err, "delete loan")
		return
	}

	if ctrl.audit != nil {
		ctrl.audit.LogDelete(auth.GetAccountID(c), "loan", id, fmt.Sprintf("loan %d", id))
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "loan deleted"})
}
