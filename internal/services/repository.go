package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"audiotable/internal/catalog"
	"audiotable/internal/models"
)

// exportBatchSize bounds the rows held in memory while exporting
const exportBatchSize = 500

// Repository handles database operations for models
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository instance
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// Transaction runs fn against a repository bound to one database transaction
func (r *Repository) Transaction(ctx context.Context, fn func(tx catalog.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return sqlDB.PingContext(ctx)
}

// Audio asset operations

// ListAssets returns every asset in id order
func (r *Repository) ListAssets(ctx context.Context) ([]models.AudioAsset, error) {
	var assets []models.AudioAsset
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&assets).Error; err != nil {
		return nil, errors.Wrap(err, "list assets")
	}
	return assets, nil
}

func (r *Repository) CreateAsset(ctx context.Context, asset *models.AudioAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *Repository) GetAsset(ctx context.Context, id int64) (*models.AudioAsset, error) {
	var asset models.AudioAsset
	if err := r.db.WithContext(ctx).First(&asset, id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindAssetByFilename returns the oldest asset stored under exactly filename
func (r *Repository) FindAssetByFilename(ctx context.Context, filename string) (*models.AudioAsset, error) {
	var asset models.AudioAsset
	err := r.db.WithContext(ctx).Where("filename = ?", filename).Order("id ASC").First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *Repository) SaveAsset(ctx context.Context, asset *models.AudioAsset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

// Row operations

func (r *Repository) CreateRow(ctx context.Context, row *models.TableRow) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) GetRow(ctx context.Context, id int64) (*models.TableRow, error) {
	var row models.TableRow
	if err := r.db.WithContext(ctx).Preload("Audio").First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// RowUpdate lists the fields of a partial row update. Nil fields are left
// alone; SetAudio with a nil AudioID clears the reference.
type RowUpdate struct {
	Col1     *string
	Col2     *string
	SetAudio bool
	AudioID  *int64
}

// UpdateRow applies a partial update. It returns gorm.ErrRecordNotFound when
// the row does not exist.
func (r *Repository) UpdateRow(ctx context.Context, id int64, update RowUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.TableRow
		if err := tx.Select("id").First(&row, id).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if update.Col1 != nil {
			changes["col1"] = *update.Col1
		}
		if update.Col2 != nil {
			changes["col2"] = *update.Col2
		}
		if update.SetAudio {
			changes["audio_id"] = update.AudioID
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&models.TableRow{}).Where("id = ?", id).Updates(changes).Error
	})
}

// DeleteRow removes a row. The referenced asset is kept.
func (r *Repository) DeleteRow(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.TableRow{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListRows returns one page of rows ordered by id, filtered by q against
// col1, col2 and the audio filename, case-insensitively.
func (r *Repository) ListRows(ctx context.Context, q string, limit, offset int) ([]models.TableRow, int64, error) {
	var (
		rows  []models.TableRow
		total int64
	)

	query := r.db.WithContext(ctx).Model(&models.TableRow{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.
			Joins("LEFT JOIN audios ON audios.id = rows.audio_id").
			Where("LOWER(rows.col1) LIKE ? OR LOWER(rows.col2) LIKE ? OR LOWER(audios.filename) LIKE ?", like, like, like)
	}

	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count rows")
	}

	err := query.Select("rows.*").
		Preload("Audio").
		Order("rows.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list rows")
	}

	return rows, total, nil
}

// EachRow calls fn for every row in primary key order, loading rows in
// batches
func (r *Repository) EachRow(ctx context.Context, fn func(row *models.TableRow) error) error {
	var batch []models.TableRow
	result := r.db.WithContext(ctx).
		Preload("Audio").
		FindInBatches(&batch, exportBatchSize, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				if err := fn(&batch[i]); err != nil {
					return err
				}
			}
			return nil
		})
	return result.Error
}
