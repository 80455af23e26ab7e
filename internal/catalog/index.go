package catalog

import (
	"context"

	"audiotable/internal/logging"
)

// unregisteredID marks a file that is present on disk but has no record yet
const unregisteredID int64 = -1

// Entry is what the index knows about one canonical filename
type Entry struct {
	// ID is the asset id, or unregisteredID for a disk-only file
	ID int64
	// Filename is the stored filename, or the on-disk name for a disk-only file
	Filename string
}

// Registered reports whether the entry refers to a persisted asset
func (e Entry) Registered() bool {
	return e.ID > 0
}

// Index maps canonical filenames to audio identities. It is built for one
// operation, mutated as lazy registrations happen and then discarded.
type Index struct {
	entries map[string]Entry
}

// NewIndex returns an empty index
func NewIndex() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// BuildIndex merges the store's assets with the directory listing. Store
// entries win over bare disk presence; among duplicates the first one seen
// wins.
func BuildIndex(ctx context.Context, store AssetStore, dir *Directory) (*Index, error) {
	assets, err := store.ListAssets(ctx)
	if err != nil {
		return nil, storeFailure("list assets", err)
	}

	index := NewIndex()
	for _, asset := range assets {
		if asset.ID <= 0 {
			continue
		}
		index.insert(Canonicalize(asset.Filename), Entry{ID: asset.ID, Filename: asset.Filename})
	}

	names, err := dir.ListFiles()
	if err != nil {
		// A store-only index is still usable.
		logging.WithModule("catalog").Warn().Err(err).Msg("Audio directory listing failed, using store only")
		names = nil
	}
	for _, name := range names {
		index.insert(Canonicalize(name), Entry{ID: unregisteredID, Filename: name})
	}

	return index, nil
}

func (ix *Index) insert(key string, entry Entry) {
	if key == "" {
		return
	}
	if _, exists := ix.entries[key]; exists {
		return
	}
	ix.entries[key] = entry
}

// Lookup returns the entry stored under a canonical key
func (ix *Index) Lookup(key string) (Entry, bool) {
	entry, ok := ix.entries[key]
	return entry, ok
}

// markRegistered records a lazy registration so later lookups reuse it
func (ix *Index) markRegistered(key string, id int64, filename string) {
	ix.entries[key] = Entry{ID: id, Filename: filename}
}

// Len returns the number of canonical keys in the index
func (ix *Index) Len() int {
	return len(ix.entries)
}
