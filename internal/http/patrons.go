package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/database/patrons"
	"github.com/openshelf/openshelf/internal/entities"
)

// PatronsController serves the library-user endpoints.
type PatronsController struct {
	store PatronStore
	audit AuditLogger
}

func NewPatronsController(store PatronStore, audit AuditLogger) *PatronsController {
	return &PatronsController{store: store, audit: audit}
}

// GetAllPatrons lists patrons. Supports ?q= partial match on name,
// email or registration number.
func (ctrl *PatronsController) GetAllPatrons(c *gin.Context) {
	var (
		result []entities.Patron
		err    error
	)

	if q := c.Query("q"); q != "" {
		result, err = ctrl.store.Search(q)
	} else {
		result, err = ctrl.store.GetAll()
	}
	if err != nil {
		respondInternalError(c, err, "list patrons")
		return
	}

	c.JSON(http.StatusOK, gin.H{"patrons": result, "count": len(result)})
}

// GetActivePatrons lists patrons eligible to borrow.
func (ctrl *PatronsController) GetActivePatrons(c *gin.Context) {
	result, err := ctrl.store.GetActive()
	if err != nil {
		respondInternalError(c, err, "list active patrons")
		return
	}
	c.JSON(http.StatusOK, gin.H{"patrons": result, "count": len(result)})
}

// GetPatron returns a single patron by ID.
func (ctrl *PatronsController) GetPatron(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	patron, err := ctrl.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "patron")
			return
		}
		respondInternalError(c, err, "get patron")
		return
	}
	c.JSON(http.StatusOK, patron)
}

type createPatronRequest struct {
	FullName           string `json:"full_name" binding:"required"`
	Email              string `json:"email" binding:"required"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registration_number" binding:"required"`
	IsActive           *bool  `json:"is_active"`
}

// CreatePatron registers a new patron. is_active defaults to true.
func (ctrl *PatronsController) CreatePatron(c *gin.Context) {
	var req createPatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "full_name, email and registration_number are required")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	patron := &entities.Patron{
		FullName:           strings.TrimSpace(req.FullName),
		Email:              strings.TrimSpace(req.Email),
		Phone:              req.Phone,
		Address:            req.Address,
		RegistrationNumber: strings.TrimSpace(req.RegistrationNumber),
		IsActive:           isActive,
	}

	if err := ctrl.store.Create(patron); err != nil {
		if isUniqueViolation(err) {
			respondBadRequest(c, "patron with this email or registration number already exists")
			return
		}
		respondInternalError(c, err, "create patron")
		return
	}

	respondCreated(c, patron)
}

type updatePatronRequest struct {
	FullName           *string `json:"full_name"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
	Address            *string `json:"address"`
	RegistrationNumber *string `json:"registration_number"`
	IsActive           *bool   `json:"is_active"`
}

// UpdatePatron applies a partial update.
func (ctrl *PatronsController) UpdatePatron(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	patron, err := ctrl.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "patron")
			return
		}
		respondInternalError(c, err, "get patron")
		return
	}

	var req updatePatronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.FullName != nil {
		patron.FullName = *req.FullName
	}
	if req.Email != nil {
		patron.Email = *req.Email
	}
	if req.Phone != nil {
		patron.Phone = *req.Phone
	}
	if req.Address != nil {
		patron.Address = *req.Address
	}
	if req.RegistrationNumber != nil {
		patron.RegistrationNumber = *req.RegistrationNumber
	}
	if req.IsActive != nil {
		patron.IsActive = *req.IsActive
	}

	if err := ctrl.store.Update(patron); err != nil {
		if isUniqueViolation(err) {
			respondBadRequest(c, "patron with this email or registration number already exists")
			return
		}
		respondInternalError(c, err, "update patron")
		return
	}

	c.JSON(http.StatusOK, patron)
}

// DeletePatron soft-deletes a patron. Patrons with open loans are
// refused.
func (ctrl *PatronsController) DeletePatron(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	patron, err := ctrl.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "patron")
			return
		}
		respondInternalError(c, err, "get patron")
		return
	}

	if err := ctrl.store.Delete(id); err != nil {
		if errors.Is(err, patrons.ErrPatronHasOpenLoans) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "delete patron")
		return
	}

	if ctrl.audit != nil {
		ctrl.audit.LogDelete(auth.GetAccountID(c), "patron", id, patron.FullName)
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "patron deleted"})
}
