package catalog

import (
	"github.com/pkg/errors"
)

var (
	// ErrResolutionMiss means a filename matched neither a stored asset nor a
	// file on disk.
	ErrResolutionMiss = errors.New("audio file not found")

	// ErrStaleDiskEntry means the index saw the file on disk but it was gone
	// by the time it was registered.
	ErrStaleDiskEntry = errors.New("audio file vanished before registration")

	// ErrMalformedIdentifier is returned for an explicit audio reference that
	// is neither an integer nor a clear signal.
	ErrMalformedIdentifier = errors.New("audio_id must be integer or empty")
)

// StoreError wraps a persistence failure. It aborts the whole operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "store failure: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeFailure(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsMiss reports whether err is a recoverable resolution miss.
func IsMiss(err error) bool {
	return errors.Is(err, ErrResolutionMiss) || errors.Is(err, ErrStaleDiskEntry)
}

// IsStoreFailure reports whether err came from the persistence layer.
func IsStoreFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
