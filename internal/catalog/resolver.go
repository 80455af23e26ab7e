package catalog

import (
	"context"

	"audiotable/internal/media"
	"audiotable/internal/models"
)

// Resolver turns raw filenames into asset ids against one index, registering
// disk-only files on first use.
type Resolver struct {
	store AssetStore
	dir   *Directory
	index *Index

	registered int
}

// NewResolver creates a resolver over index. Writes go to store.
func NewResolver(store AssetStore, dir *Directory, index *Index) *Resolver {
	return &Resolver{
		store: store,
		dir:   dir,
		index: index,
	}
}

// Resolve returns the asset id for raw. Only the base name is significant.
// A miss is reported as ErrResolutionMiss or ErrStaleDiskEntry; any other
// error is a store failure.
func (r *Resolver) Resolve(ctx context.Context, raw string) (int64, error) {
	key := Canonicalize(baseName(raw))
	if key == "" {
		return 0, ErrResolutionMiss
	}

	entry, ok := r.index.Lookup(key)
	if !ok {
		return 0, ErrResolutionMiss
	}
	if entry.Registered() {
		return entry.ID, nil
	}

	path := r.dir.PathFor(entry.Filename)
	if !r.dir.Exists(path) {
		return 0, ErrStaleDiskEntry
	}

	asset, err := registerAsset(ctx, r.store, entry.Filename, path)
	if err != nil {
		return 0, err
	}
	r.index.markRegistered(key, asset.ID, asset.Filename)
	r.registered++

	return asset.ID, nil
}

// Registered returns how many assets this resolver created
func (r *Resolver) Registered() int {
	return r.registered
}

func registerAsset(ctx context.Context, store AssetStore, filename, path string) (*models.AudioAsset, error) {
	asset := &models.AudioAsset{
		Filename: filename,
		Filepath: path,
		Mime:     media.DetectMimeType(path),
	}
	if err := store.CreateAsset(ctx, asset); err != nil {
		return nil, storeFailure("create asset", err)
	}
	return asset, nil
}
