package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/entities"
)

// Session data keys
const (
	SessionKeyAccountID = "account_id"
	SessionKeyUsername  = "username"
	SessionKeyRole      = "role"
	SessionKeyLoginAt   = "login_at"
)

func init() {
	gob.Register(entities.AccountRole(""))
	gob.Register(time.Time{})
}

// SessionManager wraps scs.SessionManager with account-aware helpers.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager backed by the
// SQLite database. sqlDB is the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession opens a new session after successful authentication.
func (sm *SessionManager) CreateSession(r *http.Request, account *entities.Account) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	// Stored as int to match GetInt retrieval
	sm.Put(r.Context(), SessionKeyAccountID, int(account.ID))
	sm.Put(r.Context(), SessionKeyUsername, account.Username)
	sm.Put(r.Context(), SessionKeyRole, account.Role)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())

	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetAccountID retrieves the account ID from the session.
// Returns 0 if not authenticated.
func (sm *SessionManager) GetAccountID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyAccountID))
}

// GetUsername retrieves the username from the session.
func (sm *SessionManager) GetUsername(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUsername)
}

// GetAccountRole retrieves the account role from the session.
func (sm *SessionManager) GetAccountRole(r *http.Request) entities.AccountRole {
	role, ok := sm.Get(r.Context(), SessionKeyRole).(entities.AccountRole)
	if !ok {
		return ""
	}
	return role
}

// IsAuthenticated returns true if the request has a valid session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetAccountID(r) != 0
}
