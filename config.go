package layerfilter

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hugr-lab/layerfilter/feature"
	"github.com/hugr-lab/layerfilter/refsync"
)

// Config contains configuration for a reference-layer synchronizer.
type Config struct {
	// Fetcher loads reference-layer features for spatial filters.
	// REQUIRED: MUST NOT be nil.
	Fetcher feature.Fetcher

	// Sink receives groups with refreshed spatial filters.
	// REQUIRED: MUST NOT be nil.
	// If it also implements refsync.Snapshotter, merges start from its
	// latest copy of each group.
	Sink refsync.GroupSink

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored.
	LogLevel *slog.Level

	// MaxConcurrentFetches bounds fetches running at once.
	// OPTIONAL: If 0, uses refsync.DefaultMaxConcurrentFetches.
	MaxConcurrentFetches int

	// FetchTimeout limits a single fetch.
	// OPTIONAL: If 0, fetches are bounded only by the caller context.
	FetchTimeout time.Duration

	// MetricsRegisterer receives the synchronizer collectors.
	// OPTIONAL: If nil, collectors are created but not registered.
	MetricsRegisterer prometheus.Registerer
}

// Standard errors returned by layerfilter package.
var (
	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid synchronizer config")
)
