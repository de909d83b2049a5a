package http

import (
	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/importer"
)

// RouterConfig carries all dependencies needed to build the HTTP
// router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Books    BookStore
	Patrons  PatronStore
	Loans    LoanReader
	LoanSvc  LoanManager

	// Bulk import
	BookImporter   importer.Processor
	PatronImporter importer.Processor
	MaxUploadSize  int64

	// Audit trail (optional)
	Auditor      *audit.Auditor
	AuditService AuditLogger

	// Authentication (all optional; nil means auth disabled)
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Application info
	Version string
}
