package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"audiotable/internal/catalog"
)

func setupTestDBWithMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func TestImport_PostgresRowFailureRollsBack(t *testing.T) {
	gormDB, mock := setupTestDBWithMock(t)
	repo := NewRepository(gormDB)
	importer := catalog.NewImporter(repo, catalog.NewDirectory(t.TempDir()), nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "audios"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "filepath", "mime", "created_at"}).
			AddRow(7, "moon.wav", "/audio/moon.wav", "audio/wav", time.Now()))
	mock.ExpectQuery(`INSERT INTO "rows"`).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	result, err := importer.Import(context.Background(), []catalog.RowDescriptor{
		{Col1: "a", Col2: "b", Filename: "moon.wav"},
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, catalog.IsStoreFailure(err))
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_PostgresAssetListFailure(t *testing.T) {
	gormDB, mock := setupTestDBWithMock(t)
	repo := NewRepository(gormDB)
	importer := catalog.NewImporter(repo, catalog.NewDirectory(t.TempDir()), nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "audios"`).WillReturnError(errors.New("server closed the connection"))
	mock.ExpectRollback()

	_, err := importer.Import(context.Background(), []catalog.RowDescriptor{{Col1: "a"}})

	require.Error(t, err)
	assert.True(t, catalog.IsStoreFailure(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
