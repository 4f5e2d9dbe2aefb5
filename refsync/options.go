package refsync

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxConcurrentFetches bounds concurrent fetches when no option is given.
const DefaultMaxConcurrentFetches = 4

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics registers the synchronizer metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Synchronizer) {
		s.metrics = NewMetrics(reg)
	}
}

// WithMaxConcurrentFetches bounds the number of fetches running at once.
// Values below 1 are ignored.
func WithMaxConcurrentFetches(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.maxFetches = n
		}
	}
}

// WithFetchTimeout limits the duration of a single fetch. Zero disables it.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d >= 0 {
			s.fetchTimeout = d
		}
	}
}
