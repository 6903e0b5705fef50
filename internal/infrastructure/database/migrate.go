package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jan-server/services/engage-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies the analytics and audit schema.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Call{},
		&entities.Message{},
		&entities.Intent{},
		&entities.AuditEvent{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
