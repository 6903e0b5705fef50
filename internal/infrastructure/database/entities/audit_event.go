package entities

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent is the durable copy of a compliance audit event.
type AuditEvent struct {
	ID        string            `gorm:"size:40;primaryKey"`
	Event     string            `gorm:"size:64;index"`
	UserID    string            `gorm:"size:64;index"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	Timestamp time.Time         `gorm:"index"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
