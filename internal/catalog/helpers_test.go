package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"audiotable/internal/catalog"
	"audiotable/internal/models"
	"audiotable/internal/services"
	"audiotable/internal/test"
)

// fixture is a migrated database plus an audio directory holding
// moon.wav (registered as id 7) and sun.wav (disk only).
type fixture struct {
	db   *gorm.DB
	repo *services.Repository
	dir  *catalog.Directory
	root string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, tearDown := test.GetTestDB(t)
	t.Cleanup(tearDown)

	root := t.TempDir()
	dir := catalog.NewDirectory(root)

	moon := test.WriteWAV(t, root, "moon.wav")
	test.WriteWAV(t, root, "sun.wav")
	test.CreateTestAsset(t, db, 7, "moon.wav", moon)

	return &fixture{
		db:   db,
		repo: services.NewRepository(db),
		dir:  dir,
		root: root,
	}
}

func (f *fixture) assetCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.AudioAsset{}).Count(&n).Error)
	return n
}

func (f *fixture) rows(t *testing.T) []models.TableRow {
	t.Helper()
	var rows []models.TableRow
	require.NoError(t, f.db.Order("id ASC").Find(&rows).Error)
	return rows
}

// countingStore records writes made through it
type countingStore struct {
	catalog.Store
	assetsCreated int
	rowsCreated   int
}

func (s *countingStore) CreateAsset(ctx context.Context, asset *models.AudioAsset) error {
	s.assetsCreated++
	return s.Store.CreateAsset(ctx, asset)
}

func (s *countingStore) CreateRow(ctx context.Context, row *models.TableRow) error {
	s.rowsCreated++
	return s.Store.CreateRow(ctx, row)
}

// countingTransactor hands a countingStore to every transaction
type countingTransactor struct {
	inner catalog.Transactor
	store *countingStore
	calls int
}

func (c *countingTransactor) Transaction(ctx context.Context, fn func(tx catalog.Store) error) error {
	c.calls++
	return c.inner.Transaction(ctx, func(tx catalog.Store) error {
		c.store = &countingStore{Store: tx}
		return fn(c.store)
	})
}
