// Package audit provides database operations for audit events.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles audit event persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new audit repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent stores a single audit event.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	return r.db.Create(event).Error
}

// GetRecent retrieves the most recent events, newest first.
func (r *Repository) GetRecent(limit int) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

// GetByType retrieves recent events of one type.
func (r *Repository) GetByType(eventType entities.AuditEventType, limit int) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.Where("event_type = ?", eventType).
		Order("created_at DESC").Limit(limit).
		Find(&events).Error
	return events, err
}

// DeleteOldEvents removes events older than the retention window and
// returns how many were deleted.
func (r *Repository) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	return res.RowsAffected, res.Error
}
