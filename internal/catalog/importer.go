package catalog

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"audiotable/internal/logging"
	"audiotable/internal/metrics"
	"audiotable/internal/models"
	"audiotable/internal/tracing"
)

// ImportResult is the outcome of one bulk import
type ImportResult struct {
	Created   int      `json:"created"`
	Unmatched []string `json:"unmatched"`
}

// Importer creates table rows in bulk, matching audio by filename
type Importer struct {
	tx      Transactor
	dir     *Directory
	metrics *metrics.Metrics
}

// NewImporter creates an importer. m may be nil.
func NewImporter(tx Transactor, dir *Directory, m *metrics.Metrics) *Importer {
	return &Importer{
		tx:      tx,
		dir:     dir,
		metrics: m,
	}
}

type importStats struct {
	matched    int
	explicit   int
	unresolved int
	none       int
	registered int
}

// Import creates one row per descriptor inside a single transaction. Rows
// whose filename cannot be resolved are still created without audio and the
// filename is reported in Unmatched. Only a store failure returns an error, in
// which case nothing is committed.
func (im *Importer) Import(ctx context.Context, rows []RowDescriptor) (*ImportResult, error) {
	if len(rows) == 0 {
		return &ImportResult{Unmatched: []string{}}, nil
	}

	ctx, _, done := tracing.WithTracingContext(ctx, "catalog.import", tracing.CatalogAttrs("import", len(rows))...)
	defer done()

	var (
		result *ImportResult
		stats  importStats
	)
	err := im.tx.Transaction(ctx, func(tx Store) error {
		result = &ImportResult{Unmatched: []string{}}
		stats = importStats{}

		index, err := BuildIndex(ctx, tx, im.dir)
		if err != nil {
			return err
		}
		resolver := NewResolver(tx, im.dir, index)
		reported := make(map[string]struct{})

		for i := range rows {
			d := &rows[i]
			row := &models.TableRow{Col1: d.Col1, Col2: d.Col2}

			switch {
			case d.AudioID != nil:
				id := *d.AudioID
				row.AudioID = &id
				stats.explicit++
			case d.Filename != "":
				id, err := resolver.Resolve(ctx, d.Filename)
				switch {
				case err == nil:
					row.AudioID = &id
					stats.matched++
				case IsMiss(err):
					stats.unresolved++
					key := Canonicalize(d.Filename)
					if _, dup := reported[key]; !dup {
						reported[key] = struct{}{}
						result.Unmatched = append(result.Unmatched, displayName(d.Filename))
					}
				default:
					return err
				}
			default:
				stats.none++
			}

			if err := tx.CreateRow(ctx, row); err != nil {
				return storeFailure("create row", err)
			}
			result.Created++
		}

		stats.registered = resolver.Registered()
		return nil
	})
	if err != nil {
		if !IsStoreFailure(err) {
			err = storeFailure("transaction", err)
		}
		im.metrics.RecordImportFailure()
		tracing.SetSpanError(ctx, err)
		logging.WithModuleContext(ctx, "catalog").Error().Err(err).Int("rows", len(rows)).Msg("Bulk import rolled back")
		return nil, err
	}

	im.metrics.RecordImport(stats.matched, stats.explicit, stats.unresolved, stats.none, stats.registered)
	tracing.AddAttributes(ctx,
		attribute.Int("catalog.created", result.Created),
		attribute.Int("catalog.unmatched", len(result.Unmatched)),
		attribute.Int("catalog.registered", stats.registered),
	)
	logging.WithModuleContext(ctx, "catalog").Info().
		Int("created", result.Created).
		Int("unmatched", len(result.Unmatched)).
		Int("registered", stats.registered).
		Msg("Bulk import committed")

	return result, nil
}
