package repository

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithMaxOpenConns caps the connection pool. Batch runs are
// single-threaded, so the default of 1 also serializes stray callers.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.db.SetMaxOpenConns(n)
		}
	}
}
