package auditlog

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jan-server/services/engage-api/internal/domain/audit"
	"jan-server/services/engage-api/internal/infrastructure/database/entities"
)

// GormWriter stores audit events in the audit_events table.
type GormWriter struct {
	db *gorm.DB
}

// NewGormWriter creates a writer on db.
func NewGormWriter(db *gorm.DB) *GormWriter {
	return &GormWriter{db: db}
}

// Write inserts events in one statement.
func (w *GormWriter) Write(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]entities.AuditEvent, 0, len(events))
	for _, ev := range events {
		rows = append(rows, entities.AuditEvent{
			ID:        ev.ID,
			Event:     ev.Name,
			UserID:    ev.UserID,
			Metadata:  datatypes.JSONMap(ev.Metadata),
			Timestamp: ev.Timestamp,
		})
	}
	if err := w.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert audit events: %w", err)
	}
	return nil
}
