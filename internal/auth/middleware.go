package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/entities"
)

// Context keys for the authenticated account
const (
	ContextKeyAccountID = "auth_account_id"
	ContextKeyUsername  = "auth_username"
	ContextKeyRole      = "auth_role"
	ContextKeyAuthType  = "auth_type"
)

// AuthType indicates how the request was authenticated.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// DefaultAccountID is used when authentication is disabled.
const DefaultAccountID = uint(0)

// Middleware authenticates HTTP requests.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	publicPaths    map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	publicPaths := map[string]bool{
		"/health": true,
		"/ping":   true,
		"/login":  true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		publicPaths:    publicPaths,
	}
}

// Handler returns a Gin middleware that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return m.noAuthHandler()
	}
	return m.authHandler()
}

// noAuthHandler injects DefaultAccountID for all requests when auth is
// disabled.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyAccountID, DefaultAccountID)
		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Set(ContextKeyAccountID, DefaultAccountID)
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		// Bearer token first (API clients)
		if account := m.tryBearerAuth(c); account != nil {
			m.setAccountContext(c, account, AuthTypeBearer)
			c.Next()
			return
		}

		// Session cookie (browser clients)
		if account := m.trySessionAuth(c); account != nil {
			m.setAccountContext(c, account, AuthTypeSession)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

// tryBearerAuth attempts to authenticate from "Authorization: Bearer <token>".
func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.Account {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}

	account, err := m.service.ValidateToken(parts[1])
	if err != nil {
		return nil
	}
	return account
}

// trySessionAuth attempts to authenticate from the session cookie.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.Account {
	if m.sessionManager == nil {
		return nil
	}

	accountID := m.sessionManager.GetAccountID(c.Request)
	if accountID == 0 {
		return nil
	}

	account, err := m.service.GetAccountByID(accountID)
	if err != nil {
		return nil
	}
	return account
}

func (m *Middleware) setAccountContext(c *gin.Context, account *entities.Account, authType AuthType) {
	c.Set(ContextKeyAccountID, account.ID)
	c.Set(ContextKeyUsername, account.Username)
	c.Set(ContextKeyRole, account.Role)
	c.Set(ContextKeyAuthType, authType)
}

// RequireRole returns a middleware that restricts a route to the given
// roles. A no-op when auth is disabled.
func (m *Middleware) RequireRole(roles ...entities.AccountRole) gin.HandlerFunc {
	roleSet := make(map[entities.AccountRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if m.config.Mode == config.AuthModeNone {
			c.Next()
			return
		}

		if !roleSet[GetAccountRole(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// GetAccountID retrieves the authenticated account's ID from the
// context. Returns DefaultAccountID if unauthenticated or auth is
// disabled.
func GetAccountID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyAccountID); exists {
		if accountID, ok := id.(uint); ok {
			return accountID
		}
	}
	return DefaultAccountID
}

// GetUsername retrieves the authenticated account's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetAccountRole retrieves the authenticated account's role from the context.
func GetAccountRole(c *gin.Context) entities.AccountRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.AccountRole); ok {
			return role
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
