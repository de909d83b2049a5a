package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth configured - everything runs as the default account
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyAccountID, auth.DefaultAccountID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Books, cfg.AuditService)
	patronsController := NewPatronsController(cfg.Patrons, cfg.AuditService)
	loansController := NewLoansController(cfg.Loans, cfg.LoanSvc, cfg.AuditService)
	importController := NewBulkImportController(
		cfg.BookImporter, cfg.PatronImporter,
		cfg.Auditor, cfg.AuditService, cfg.MaxUploadSize,
	)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Book endpoints. Static segments must be registered before :id.
	router.GET("/api/books", booksController.GetAllBooks)
	router.GET("/api/books/search", booksController.GetAllBooks)
	router.GET("/api/books/available", booksController.GetAvailableBooks)
	router.POST("/api/books", booksController.CreateBook)
	router.POST("/api/books/bulk-upload", importController.ImportBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.PATCH("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)
	router.GET("/api/books/:id/loans", loansController.GetLoansByBook)

	// Patron endpoints
	router.GET("/api/patrons", patronsController.GetAllPatrons)
	router.GET("/api/patrons/active", patronsController.GetActivePatrons)
	router.POST("/api/patrons", patronsController.CreatePatron)
	router.POST("/api/patrons/bulk-upload", importController.ImportPatrons)
	router.GET("/api/patrons/:id", patronsController.GetPatron)
	router.PUT("/api/patrons/:id", patronsController.UpdatePatron)
	router.PATCH("/api/patrons/:id", patronsController.UpdatePatron)
	router.DELETE("/api/patrons/:id", patronsController.DeletePatron)
	router.GET("/api/patrons/:id/loans", loansController.GetLoansByPatron)

	// Loan endpoints
	router.GET("/api/loans", loansController.GetAllLoans)
	router.GET("/api/loans/active", loansController.GetActiveLoans)
	router.GET("/api/loans/overdue", loansController.GetOverdueLoans)
	router.POST("/api/loans", loansController.CreateLoan)
	router.GET("/api/loans/:id", loansController.GetLoan)
	router.DELETE("/api/loans/:id", loansController.DeleteLoan)
	router.POST("/api/loans/:id/return", loansController.ReturnLoan)
	router.POST("/api/loans/:id/renew", loansController.RenewLoan)

	return router
}
