package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/layerfilter"
	"github.com/hugr-lab/layerfilter/filter"
	"github.com/hugr-lab/layerfilter/flight"
	"github.com/hugr-lab/layerfilter/refsync"
	"github.com/hugr-lab/layerfilter/store"
)

const defaultMaxPasses = 8

var syncCmd = &cobra.Command{
	Use:   "sync [forest.json]",
	Short: "Fill reference-layer spatial filters from a Flight layer service",
	Long: `Reads a forest snapshot, fetches the geometries of every spatial
filter that references another layer and prints the updated snapshot.

Passes repeat until one dispatches no fetch, so reference chains settle:
geometries merged into one layer's filter change the predicate of every
filter referencing that layer.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().String("address", "localhost:50051", "Flight layer service address")
	syncCmd.Flags().String("token", "", "bearer token for the layer service")
	syncCmd.Flags().String("id-column", flight.DefaultIDColumn, "feature identifier column")
	syncCmd.Flags().Int("max-concurrent-fetches", 0, "concurrent fetch limit (0 uses the default)")
	syncCmd.Flags().Duration("fetch-timeout", 0, "timeout of a single fetch (0 disables it)")
	syncCmd.Flags().Int("max-passes", defaultMaxPasses, "maximum sync passes before giving up on convergence")
	syncCmd.Flags().StringP("output", "o", "", "write the snapshot to this file instead of stdout")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	forest, err := filter.ParseForest(data)
	if err != nil {
		return err
	}

	client, err := flight.NewClient(flight.ClientConfig{
		Address:  cfg.Address,
		Token:    cfg.Token,
		IDColumn: cfg.IDColumn,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	groups := store.NewMemory(forest.Groups()...)
	s, err := layerfilter.NewSynchronizer(layerfilter.Config{
		Fetcher:              client,
		Sink:                 groups,
		Logger:               logger,
		MaxConcurrentFetches: cfg.MaxConcurrentFetches,
		FetchTimeout:         cfg.FetchTimeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if err := converge(ctx, s, groups, cfg.MaxPasses, logger); err != nil {
		return err
	}

	out, err := filter.MarshalForest(groups.Snapshot())
	if err != nil {
		return err
	}
	out = append(out, '\n')

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		return os.WriteFile(path, out, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// converge syncs groups until a pass dispatches no fetch.
func converge(ctx context.Context, s *refsync.Synchronizer, groups *store.Memory, maxPasses int, logger *slog.Logger) error {
	if maxPasses < 1 {
		maxPasses = 1
	}
	for pass := 1; pass <= maxPasses; pass++ {
		n := s.Sync(ctx, groups.Snapshot())
		s.Wait()
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sync interrupted: %w", err)
		}
		logger.Debug("Sync pass completed", "pass", pass, "fetches", n)
		if n == 0 {
			return nil
		}
	}
	return fmt.Errorf("reference layers did not settle after %d passes", maxPasses)
}
