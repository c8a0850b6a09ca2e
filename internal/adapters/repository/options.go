package repository

const defaultRetention = 32

// Option applies a configuration option to a snapshot store.
type Option func(*settings)

type settings struct {
	retention int
}

func newSettings(opts []Option) settings {
	s := settings{retention: defaultRetention}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithRetention caps how many snapshots are kept; the oldest are dropped
// first. A value <= 0 keeps every snapshot.
func WithRetention(n int) Option {
	return func(s *settings) {
		s.retention = n
	}
}
