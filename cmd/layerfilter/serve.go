package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/hugr-lab/layerfilter/auth"
	"github.com/hugr-lab/layerfilter/feature"
	"github.com/hugr-lab/layerfilter/flight"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve layers from a features file over Arrow Flight",
	Long: `Starts a reference Flight layer service. Layers are loaded from a
JSON features file:

  {"layers": [{"id": "buildings", "columns": ["geom"],
    "features": [{"id": "b1", "geometry": "POINT(1 1)"}],
    "filtered": {"(height > 10)": [{"id": "b1", "geometry": "POINT(1 1)"}]}}]}

The service does not evaluate CQL. A request returns the "filtered" entry
matching its predicate exactly, or all features of the layer.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", ":50051", "address to listen on")
	serveCmd.Flags().String("features", "", "path to the JSON features file (required)")
	serveCmd.Flags().StringSlice("tokens", nil, "accepted bearer tokens as token=identity pairs")
	serveCmd.Flags().Int("max-message-size", 16*1024*1024, "maximum gRPC message size in bytes")
}

type featuresFile struct {
	Layers []struct {
		ID       string                   `json:"id"`
		Columns  []string                 `json:"columns"`
		Features []jsonFeature            `json:"features"`
		Filtered map[string][]jsonFeature `json:"filtered"`
	} `json:"layers"`
}

type jsonFeature struct {
	ID       string `json:"id"`
	Geometry string `json:"geometry"`
}

func toFeatures(in []jsonFeature) []feature.Feature {
	out := make([]feature.Feature, len(in))
	for i, f := range in {
		out[i] = feature.Feature{ID: f.ID, Geometry: f.Geometry}
	}
	return out
}

// loadFeatures builds a static source from a features file.
func loadFeatures(path string) (*feature.Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading features file: %w", err)
	}
	var doc featuresFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing features file %s: %w", path, err)
	}

	src := feature.NewStatic()
	for _, l := range doc.Layers {
		if l.ID == "" {
			return nil, fmt.Errorf("features file %s: layer id is required", path)
		}
		src.AddLayer(l.ID, l.Columns, toFeatures(l.Features))
		for predicate, features := range l.Filtered {
			if err := src.SetFiltered(l.ID, predicate, toFeatures(features)); err != nil {
				return nil, err
			}
		}
	}
	return src, nil
}

// parseTokens turns token=identity pairs into a token table.
func parseTokens(pairs []string) (map[string]string, error) {
	tokens := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		token, identity, ok := strings.Cut(pair, "=")
		if !ok || token == "" || identity == "" {
			return nil, fmt.Errorf("invalid token %q, expected token=identity", pair)
		}
		tokens[token] = identity
	}
	return tokens, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.Features == "" {
		return fmt.Errorf("--features is required")
	}

	src, err := loadFeatures(cfg.Features)
	if err != nil {
		return err
	}

	config := flight.ServerConfig{
		Store:          &flight.FeatureLayers{Fetcher: src, Meta: src, SRID: 4326},
		Logger:         logger,
		MaxMessageSize: cfg.MaxMessageSize,
	}
	if len(cfg.Tokens) > 0 {
		tokens, err := parseTokens(cfg.Tokens)
		if err != nil {
			return err
		}
		config.Auth = auth.StaticTokens(tokens, nil)
	}

	grpcServer := grpc.NewServer(flight.ServerOptions(config)...)
	if _, err := flight.NewServer(grpcServer, config); err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down layer server")
		grpcServer.GracefulStop()
	}()

	logger.Info("Layer server listening", "address", lis.Addr().String(), "has_auth", config.Auth != nil)
	return grpcServer.Serve(lis)
}
