package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/entities"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountExists    = errors.New("account already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrAuthRequired     = errors.New("authentication required")
	ErrInvalidRole      = errors.New("invalid role")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// Service handles staff account management and credential checks.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateAccount creates a new staff account with password authentication.
func (s *Service) CreateAccount(username, email, password string, role entities.AccountRole) (*entities.Account, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	// RFC 5321 caps addresses at 254 bytes
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	switch role {
	case entities.AccountRoleAdmin, entities.AccountRoleLibrarian:
	default:
		return nil, ErrInvalidRole
	}

	var existing entities.Account
	err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, ErrAccountExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &entities.Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Authenticate validates credentials and returns the account.
func (s *Service) Authenticate(username, password string) (*entities.Account, error) {
	var account entities.Account
	err := s.db.Where("username = ? OR email = ?", username, username).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if err := CheckPassword(password, account.PasswordHash); err != nil {
		return nil, err
	}

	now := time.Now()
	s.db.Model(&account).Update("last_login_at", now)
	account.LastLoginAt = &now

	return &account, nil
}

// GetAccountByID retrieves an account by its ID.
func (s *Service) GetAccountByID(id uint) (*entities.Account, error) {
	var account entities.Account
	err := s.db.First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// ValidateToken checks a plaintext API token and returns the associated
// account. Only the SHA-256 hash of the token is stored.
func (s *Service) ValidateToken(token string) (*entities.Account, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var account entities.Account
	err := s.db.Where("token_hash = ?", HashToken(token)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &account, nil
}

// GenerateToken creates a new API token for an account and returns the
// plaintext once. Any previous token is invalidated.
func (s *Service) GenerateToken(accountID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	result := s.db.Model(&entities.Account{}).Where("id = ?", accountID).Update("token_hash", hash)
	if result.Error != nil {
		return "", fmt.Errorf("failed to save token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", ErrAccountNotFound
	}

	return plaintext, nil
}

// RevokeToken removes an account's API token.
func (s *Service) RevokeToken(accountID uint) error {
	result := s.db.Model(&entities.Account{}).Where("id = ?", accountID).Update("token_hash", "")
	if result.Error != nil {
		return fmt.Errorf("failed to revoke token: %w", result.Error)
	}
	return nil
}

// ChangePassword updates an account's password after verifying the old one.
func (s *Service) ChangePassword(accountID uint, oldPassword, newPassword string) error {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return err
	}

	if err := CheckPassword(oldPassword, account.PasswordHash); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}

	return s.db.Model(account).Update("password_hash", newHash).Error
}

// HasAccounts returns true if any staff accounts exist.
func (s *Service) HasAccounts() (bool, error) {
	var count int64
	err := s.db.Model(&entities.Account{}).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}
