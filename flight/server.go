// Package flight carries layer features over Arrow Flight.
//
// Client implements feature.Fetcher and feature.MetadataSource against a
// Flight service. Server is a reference service exposing a LayerStore:
// DoGet streams the features of one layer matching a CQL filter, and
// GetSchema describes a layer so clients can find its geometry columns.
package flight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/layerfilter/auth"
	"github.com/hugr-lab/layerfilter/feature"
	"github.com/hugr-lab/layerfilter/internal/recovery"
	"github.com/hugr-lab/layerfilter/internal/ticket"
)

// LayerStore supplies the layers served by Server.
// Implementations MUST be goroutine-safe.
type LayerStore interface {
	// Schema returns the Arrow schema of layer. Geometry columns are tagged
	// with GeometryField. Returns feature.ErrLayerNotFound for unknown layers.
	Schema(ctx context.Context, layer string) (*arrow.Schema, error)

	// Scan returns the records of layer matching the CQL filter, projected
	// to columns when non-empty. Caller must release the reader.
	Scan(ctx context.Context, layer, filter string, columns []string) (array.RecordReader, error)
}

// Server implements the Flight service handlers for a LayerStore.
// Embeds BaseFlightServer for forward compatibility with protocol changes.
type Server struct {
	flight.BaseFlightServer

	store     LayerStore
	allocator memory.Allocator
	logger    *slog.Logger
}

// NewServer registers the layer Flight service on grpcServer.
//
// Does NOT start the gRPC server; the caller controls its lifecycle. For
// authentication create grpcServer with ServerOptions(config).
//
// Example:
//
//	config := flight.ServerConfig{Store: layers}
//	grpcServer := grpc.NewServer(flight.ServerOptions(config)...)
//	if _, err := flight.NewServer(grpcServer, config); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config ServerConfig) (*Server, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	allocator := config.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}

	s := &Server{
		store:     config.Store,
		allocator: allocator,
		logger:    newLogger(config.Logger, config.LogLevel),
	}
	flight.RegisterFlightServiceServer(grpcServer, s)

	s.logger.Info("Layer Flight server registered",
		"has_auth", config.Auth != nil,
		"max_message_size", config.MaxMessageSize,
	)
	return s, nil
}

// ServerOptions returns gRPC server options with authentication interceptors
// and message size limits from config.
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	var opts []grpc.ServerOption
	if config.Auth != nil {
		opts = append(opts,
			grpc.UnaryInterceptor(auth.UnaryServerInterceptor(config.Auth, requestLayer)),
			grpc.StreamInterceptor(auth.StreamServerInterceptor(config.Auth, requestLayer)),
		)
	}
	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}
	return opts
}

// requestLayer names the layer read by a GetSchema descriptor or a DoGet
// ticket, for layer authorization in the auth interceptors.
func requestLayer(msg any) (string, bool) {
	switch m := msg.(type) {
	case *flight.FlightDescriptor:
		if m.GetType() != flight.DescriptorPATH || len(m.GetPath()) != 1 {
			return "", false
		}
		return m.GetPath()[0], true
	case *flight.Ticket:
		req, err := ticket.Decode(m.GetTicket())
		if err != nil {
			return "", false
		}
		return req.Layer, true
	default:
		return "", false
	}
}

// layerSchema looks up a layer schema, mapping failures to gRPC status.
func (s *Server) layerSchema(ctx context.Context, layer string) (*arrow.Schema, error) {
	schema, err := recovery.RecoverToValue(s.logger, "Schema", func() (*arrow.Schema, error) {
		return s.store.Schema(ctx, layer)
	})
	if err != nil {
		return nil, storeStatus(err, layer)
	}
	if schema == nil {
		return nil, status.Errorf(codes.Internal, "layer %s has nil Arrow schema", layer)
	}
	return schema, nil
}

func storeStatus(err error, layer string) error {
	switch {
	case errors.Is(err, feature.ErrLayerNotFound):
		return status.Errorf(codes.NotFound, "layer not found: %s", layer)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request deadline exceeded")
	default:
		return status.Errorf(codes.Internal, "layer %s: %v", layer, err)
	}
}
