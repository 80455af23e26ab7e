package database

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"audiotable/internal/config"
	"audiotable/internal/models"
	"audiotable/internal/utils"
)

// SeedAdmin creates the configured admin account unless a user with that
// name already exists. An existing account is never modified.
func SeedAdmin(db *gorm.DB, cfg config.AdminConfig, logger *zerolog.Logger) (bool, error) {
	if cfg.Username == "" {
		return false, fmt.Errorf("admin username cannot be empty")
	}

	var existing models.User
	err := db.Where("username = ?", cfg.Username).First(&existing).Error
	if err == nil {
		if logger != nil {
			logger.Debug().Str("username", cfg.Username).Msg("Admin already exists, skipping seed")
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hash := cfg.PasswordHash
	if hash == "" {
		hash, err = utils.HashPassword(cfg.Password)
		if err != nil {
			return false, fmt.Errorf("failed to hash admin password: %w", err)
		}
	} else if !utils.IsBcryptHash(hash) {
		return false, fmt.Errorf("admin password_hash is not a bcrypt hash")
	}

	if err := db.Create(&models.User{Username: cfg.Username, PasswordHash: hash}).Error; err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	if logger != nil {
		logger.Info().Str("username", cfg.Username).Msg("Seeded default admin")
	}
	return true, nil
}
