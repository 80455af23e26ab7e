package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"audiotable/internal/database"
	"audiotable/internal/models"
	"audiotable/internal/utils"
)

// GetTestDB opens a private in-memory SQLite database with the schema
// migrated. The returned function closes it.
func GetTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.NewMigrationManager(db, nil).Migrate())

	tearDown := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return db, tearDown
}

// CreateTestUser creates a user with a bcrypt hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	hashedPassword, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	}
	require.NoError(t, db.Create(user).Error)

	return user
}

// CreateTestAsset stores an asset record without touching the filesystem
func CreateTestAsset(t *testing.T, db *gorm.DB, id int64, filename, path string) *models.AudioAsset {
	t.Helper()

	asset := &models.AudioAsset{
		ID:       id,
		Filename: filename,
		Filepath: path,
		Mime:     "audio/wav",
	}
	require.NoError(t, db.Create(asset).Error)

	return asset
}

// WriteFile writes content to dir/name and returns the path
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

// WriteWAV writes a short mono 16-bit PCM WAV file to dir/name
func WriteWAV(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	const sampleRate = 8000
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, sampleRate/10),
		SourceBitDepth: 16,
	}
	for i := range buf.Data {
		buf.Data[i] = (i % 64) * 256
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())

	return path
}
