package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"audiotable/internal/models"
)

// MigrationManager manages database migrations
type MigrationManager struct {
	db     *gorm.DB
	logger *zerolog.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger *zerolog.Logger) *MigrationManager {
	return &MigrationManager{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the users, audios and rows tables
func (m *MigrationManager) Migrate() error {
	// audios before rows, the rows table references it
	if err := m.db.AutoMigrate(
		&models.User{},
		&models.AudioAsset{},
		&models.TableRow{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}

	if m.logger != nil {
		m.logger.Info().Msg("Database migrations completed successfully")
	}
	return nil
}
