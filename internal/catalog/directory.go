package catalog

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Directory is the configured audio storage directory
type Directory struct {
	root string
}

// NewDirectory creates a directory scanner rooted at root
func NewDirectory(root string) *Directory {
	return &Directory{root: root}
}

// Root returns the directory path
func (d *Directory) Root() string {
	return d.root
}

// Ensure creates the directory if it does not exist yet
func (d *Directory) Ensure() error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return errors.Wrapf(err, "create audio dir %s", d.root)
	}
	return nil
}

// ListFiles returns the names of the non-directory entries in the directory,
// sorted by name. A missing directory yields an empty listing.
func (d *Directory) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "list audio dir %s", d.root)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// PathFor returns the absolute path a file with the given name would have
func (d *Directory) PathFor(name string) string {
	p := filepath.Join(d.root, filepath.Base(name))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Exists reports whether path currently names a regular file
func (d *Directory) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
