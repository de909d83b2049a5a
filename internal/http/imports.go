package http

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/importer"
)

// DefaultMaxUploadSize caps bulk-import uploads at 10 MiB.
const DefaultMaxUploadSize = 10 * 1024 * 1024

// BulkImportController serves the bulk-upload endpoints for books and
// patrons.
type BulkImportController struct {
	books       importer.Processor
	patrons     importer.Processor
	auditor     *audit.Auditor
	auditLog    AuditLogger
	maxFileSize int64
}

func NewBulkImportController(books, patrons importer.Processor, auditor *audit.Auditor, auditLog AuditLogger, maxFileSize int64) *BulkImportController {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxUploadSize
	}
	return &BulkImportController{
		books:       books,
		patrons:     patrons,
		auditor:     auditor,
		auditLog:    auditLog,
		maxFileSize: maxFileSize,
	}
}

// bulkImportResponse is the wire shape of both upload endpoints.
type bulkImportResponse struct {
	Message string   `json:"message"`
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

// ImportBooks handles POST /api/books/bulk-upload.
func (ctrl *BulkImportController) ImportBooks(c *gin.Context) {
	ctrl.runImport(c, ctrl.books, "book", "books")
}

// ImportPatrons handles POST /api/patrons/bulk-upload.
func (ctrl *BulkImportController) ImportPatrons(c *gin.Context) {
	ctrl.runImport(c, ctrl.patrons, "patron", "users")
}

// runImport validates the upload, feeds it through the processor and
// maps the outcome onto the HTTP contract: 201 when at least one row
// was created, 400 otherwise.
func (ctrl *BulkImportController) runImport(c *gin.Context, processor importer.Processor, entityType, plural string) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file is required")
		return
	}
	defer file.Close()

	fileType := c.PostForm("file_type")
	if err := validateUpload(header, fileType, ctrl.maxFileSize); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	// Hard cap regardless of the declared header size
	outcome := processor.ProcessFile(io.LimitReader(file, ctrl.maxFileSize+1), fileType)

	ctrl.recordOutcome(c, entityType, header.Filename, outcome)

	if outcome.Success {
		c.JSON(http.StatusCreated, bulkImportResponse{
			Message: fmt.Sprintf("Successfully imported %d %s", outcome.Created, plural),
			Created: outcome.Created,
			Errors:  outcome.Errors,
		})
		return
	}

	c.JSON(http.StatusBadRequest, bulkImportResponse{
		Message: "Failed to import " + plural,
		Created: outcome.Created,
		Errors:  outcome.Errors,
	})
}

// recordOutcome writes the raw outcome to the audit directory and logs
// an import event. Both are best-effort.
func (ctrl *BulkImportController) recordOutcome(c *gin.Context, entityType, filename string, outcome importer.Outcome) {
	if ctrl.auditor != nil {
		if _, err := ctrl.auditor.SaveJSON(map[string]any{
			"entity":   entityType,
			"filename": filename,
			"outcome":  outcome,
		}); err != nil {
			// The import itself already happened; only the paper trail is lost
			log.Printf("Failed to save import audit file: %v", err)
		}
	}

	if ctrl.auditLog != nil {
		desc := fmt.Sprintf("Imported %d %ss from %s (%d rows failed)",
			outcome.Created, entityType, filename, len(outcome.Errors))
		ctrl.auditLog.LogImport(auth.GetAccountID(c), entityType, desc,
			outcome.Created, len(outcome.Errors), outcome.Success)
	}
}

// validateUpload checks the declared file type against the extension
// and enforces the size cap.
func validateUpload(header *multipart.FileHeader, fileType string, maxSize int64) error {
	name := strings.ToLower(header.Filename)

	switch fileType {
	case importer.FileTypeText:
		if !strings.HasSuffix(name, ".txt") {
			return fmt.Errorf("File must be a .txt file")
		}
	case importer.FileTypeExcel:
		if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".xls") {
			return fmt.Errorf("File must be an Excel file (.xlsx or .xls)")
		}
	default:
		return fmt.Errorf("file_type must be txt or excel")
	}

	if header.Size > maxSize {
		return fmt.Errorf("File size cannot exceed 10MB")
	}
	return nil
}
