package repository

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithOnPublish registers a callback invoked with the contributor count after
// every Replace.
func WithOnPublish(fn func(count int)) Option {
	return func(s *SnapshotStore) {
		if fn != nil {
			s.onPublish = fn
		}
	}
}
