package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/openshelf/openshelf/internal/database/audit"
	"github.com/openshelf/openshelf/internal/entities"
)

// Service provides high-level audit logging on top of the repository.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogImport records a bulk import event with per-run counters.
func (s *Service) LogImport(accountID uint, entityType, description string, created, failed int, success bool) {
	event := &entities.AuditEvent{
		AccountID:   accountID,
		EventType:   entities.AuditEventImport,
		Action:      entityType + "_import",
		Description: description,
		EntityType:  entityType,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"created": created,
		"failed":  failed,
	}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogLoan records a loan lifecycle event (created, returned, renewed,
// marked overdue).
func (s *Service) LogLoan(accountID uint, action string, loanID uint, description string, err error) {
	event := &entities.AuditEvent{
		AccountID:   accountID,
		EventType:   entities.AuditEventLoan,
		Action:      "loan_" + action,
		Description: description,
		EntityType:  "loan",
		EntityID:    &loanID,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogDelete records a deletion event.
func (s *Service) LogDelete(accountID uint, entityType string, entityID uint, entityName string) {
	event := &entities.AuditEvent{
		AccountID:   accountID,
		EventType:   entities.AuditEventDelete,
		Action:      entityType + "_delete",
		Description: "Deleted " + entityType + ": " + entityName,
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(accountID uint, action, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		AccountID: accountID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// GetRecent retrieves the most recent audit events.
func (s *Service) GetRecent(limit int) ([]entities.AuditEvent, error) {
	return s.repo.GetRecent(limit)
}

// GetByType retrieves recent audit events of one type.
func (s *Service) GetByType(eventType entities.AuditEventType, limit int) ([]entities.AuditEvent, error) {
	return s.repo.GetByType(eventType, limit)
}

// DeleteOldEvents removes events older than the retention window.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(retention)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
