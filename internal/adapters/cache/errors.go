package cache

import "errors"

var (
	// ErrNilDatasets is returned when Set is called without datasets.
	ErrNilDatasets = errors.New("datasets cannot be nil")
	// ErrBackend wraps failures of the storage backend.
	ErrBackend = errors.New("cache backend error")
)
