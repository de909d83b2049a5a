package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/config"
)

// Controller handles the login, logout and token endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	rateLimiter    *RateLimiter
}

// NewController creates an authentication controller.
func NewController(service *Service, sessionManager *SessionManager, cfg config.Auth) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		rateLimiter:    NewRateLimiter(RateLimitConfig{}),
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/login", ctrl.Login)
	router.POST("/logout", ctrl.Logout)
	router.GET("/me", ctrl.Me)
	router.POST("/api/auth/token", ctrl.GenerateToken)
	router.DELETE("/api/auth/token", ctrl.RevokeToken)
}

// Stop cleans up the rate limiter's background goroutine.
func (ctrl *Controller) Stop() {
	if ctrl.rateLimiter != nil {
		ctrl.rateLimiter.Stop()
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates credentials and opens a session.
func (ctrl *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	clientIP := c.ClientIP()

	if allowed, retryAfter := ctrl.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.String(),
		})
		return
	}

	account, err := ctrl.service.Authenticate(req.Username, req.Password)
	if err != nil {
		ctrl.rateLimiter.RecordFailure(clientIP, req.Username)
		// Same response for unknown account and wrong password
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	ctrl.rateLimiter.RecordSuccess(clientIP, req.Username)

	if ctrl.sessionManager != nil {
		if err := ctrl.sessionManager.CreateSession(c.Request, account); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       account.ID,
		"username": account.Username,
		"role":     account.Role,
	})
}

// Logout destroys the session.
func (ctrl *Controller) Logout(c *gin.Context) {
	if ctrl.sessionManager != nil {
		_ = ctrl.sessionManager.DestroySession(c.Request)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated account.
func (ctrl *Controller) Me(c *gin.Context) {
	accountID := GetAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"auth_type":     GetAuthType(c),
		})
		return
	}

	account, err := ctrl.service.GetAccountByID(accountID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	resp := gin.H{
		"authenticated": true,
		"auth_type":     GetAuthType(c),
		"id":            account.ID,
		"username":      account.Username,
		"role":          account.Role,
	}
	if account.LastLoginAt != nil {
		resp["last_login_at"] = account.LastLoginAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateToken creates a new API token for the authenticated account.
func (ctrl *Controller) GenerateToken(c *gin.Context) {
	accountID := GetAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	token, err := ctrl.service.GenerateToken(accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken revokes the API token for the authenticated account.
func (ctrl *Controller) RevokeToken(c *gin.Context) {
	accountID := GetAccountID(c)
	if accountID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := ctrl.service.RevokeToken(accountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
