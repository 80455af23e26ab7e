package catalog

import (
	"context"

	"audiotable/internal/models"
)

// AssetStore is the persisted set of known audio assets
type AssetStore interface {
	ListAssets(ctx context.Context) ([]models.AudioAsset, error)
	CreateAsset(ctx context.Context, asset *models.AudioAsset) error
}

// Store is the view of the database that import and sync write through
type Store interface {
	AssetStore
	CreateRow(ctx context.Context, row *models.TableRow) error
}

// Transactor runs fn inside one atomic unit. If fn returns an error nothing
// it wrote is committed.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
