package layerfilter

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hugr-lab/layerfilter/refsync"
)

// NewSynchronizer validates config and creates a reference-layer synchronizer.
//
// Returns an error wrapping ErrInvalidConfig if a required field is missing
// or a limit is negative. The synchronizer is idle until Sync or Run is called.
//
// Example:
//
//	groups := store.NewMemory()
//	s, err := layerfilter.NewSynchronizer(layerfilter.Config{
//	    Fetcher: client,
//	    Sink:    groups,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go s.Run(ctx, groups.Subscribe(ctx))
func NewSynchronizer(config Config) (*refsync.Synchronizer, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := newLogger(config)
	s := refsync.New(config.Fetcher, config.Sink, SynchronizerOptions(config, logger)...)

	_, snapshots := config.Sink.(refsync.Snapshotter)
	logger.Info("Reference layer synchronizer created",
		"max_concurrent_fetches", config.MaxConcurrentFetches,
		"fetch_timeout", config.FetchTimeout,
		"sink_snapshots", snapshots,
		"has_metrics", config.MetricsRegisterer != nil,
	)
	return s, nil
}

// SynchronizerOptions translates config into refsync options.
func SynchronizerOptions(config Config, logger *slog.Logger) []refsync.Option {
	opts := []refsync.Option{refsync.WithLogger(logger)}
	if config.MaxConcurrentFetches > 0 {
		opts = append(opts, refsync.WithMaxConcurrentFetches(config.MaxConcurrentFetches))
	}
	if config.FetchTimeout > 0 {
		opts = append(opts, refsync.WithFetchTimeout(config.FetchTimeout))
	}
	if config.MetricsRegisterer != nil {
		opts = append(opts, refsync.WithMetrics(config.MetricsRegisterer))
	}
	return opts
}

// validateConfig checks that required Config fields are valid.
func validateConfig(config Config) error {
	if config.Fetcher == nil {
		return fmt.Errorf("fetcher is required")
	}
	if config.Sink == nil {
		return fmt.Errorf("sink is required")
	}
	if config.MaxConcurrentFetches < 0 {
		return fmt.Errorf("max concurrent fetches must not be negative")
	}
	if config.FetchTimeout < 0 {
		return fmt.Errorf("fetch timeout must not be negative")
	}
	return nil
}

func newLogger(config Config) *slog.Logger {
	if config.Logger != nil {
		return config.Logger
	}
	if config.LogLevel != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *config.LogLevel}))
	}
	return slog.Default()
}
