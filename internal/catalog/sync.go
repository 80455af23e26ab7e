package catalog

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"audiotable/internal/logging"
	"audiotable/internal/metrics"
	"audiotable/internal/tracing"
)

// Syncer registers every file in the audio directory that has no record under
// its exact filename.
type Syncer struct {
	tx      Transactor
	dir     *Directory
	metrics *metrics.Metrics
}

// NewSyncer creates a syncer. m may be nil.
func NewSyncer(tx Transactor, dir *Directory, m *metrics.Metrics) *Syncer {
	return &Syncer{
		tx:      tx,
		dir:     dir,
		metrics: m,
	}
}

// Sync returns the number of assets added. All registrations commit together.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	if err := s.dir.Ensure(); err != nil {
		return 0, err
	}
	names, err := s.dir.ListFiles()
	if err != nil {
		return 0, err
	}

	ctx, _, done := tracing.WithTracingContext(ctx, "catalog.sync", tracing.CatalogAttrs("sync", len(names))...)
	defer done()

	added := 0
	err = s.tx.Transaction(ctx, func(tx Store) error {
		added = 0

		assets, err := tx.ListAssets(ctx)
		if err != nil {
			return storeFailure("list assets", err)
		}
		known := make(map[string]struct{}, len(assets))
		for _, asset := range assets {
			known[asset.Filename] = struct{}{}
		}

		for _, name := range names {
			if name == "" {
				continue
			}
			if _, ok := known[name]; ok {
				continue
			}
			path := s.dir.PathFor(name)
			if !s.dir.Exists(path) {
				continue
			}
			if _, err := registerAsset(ctx, tx, name, path); err != nil {
				return err
			}
			known[name] = struct{}{}
			added++
		}
		return nil
	})
	if err != nil {
		if !IsStoreFailure(err) {
			err = storeFailure("transaction", err)
		}
		tracing.SetSpanError(ctx, err)
		return 0, err
	}

	s.metrics.RecordSync(added)
	tracing.AddAttributes(ctx, attribute.Int("catalog.added", added))
	logging.WithModuleContext(ctx, "catalog").Info().Int("added", added).Msg("Audio directory synced")

	return added, nil
}
