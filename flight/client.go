package flight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/layerfilter/auth"
	"github.com/hugr-lab/layerfilter/feature"
	"github.com/hugr-lab/layerfilter/geometry"
	"github.com/hugr-lab/layerfilter/internal/ticket"
)

// ClientConfig configures a layer Flight client.
type ClientConfig struct {
	// Address is the host:port of the Flight service.
	// REQUIRED.
	Address string

	// Token is sent as a bearer token with every call.
	// OPTIONAL.
	Token string

	// IDColumn names the feature identifier column.
	// OPTIONAL: Defaults to DefaultIDColumn.
	IDColumn string

	// Logger receives client logs.
	// OPTIONAL: Defaults to slog.Default().
	Logger *slog.Logger

	// DialOptions are appended to the default options. Without a
	// transport credentials option the connection is insecure.
	// OPTIONAL.
	DialOptions []grpc.DialOption
}

// Client fetches layer features from a Flight service.
// It implements feature.Fetcher and feature.MetadataSource.
type Client struct {
	conn     *grpc.ClientConn
	client   flight.FlightServiceClient
	idColumn string
	logger   *slog.Logger

	// geometry column names by layer
	mu      sync.Mutex
	columns map[string][]string
}

var (
	_ feature.Fetcher        = (*Client)(nil)
	_ feature.MetadataSource = (*Client)(nil)
)

// NewClient creates a client for the Flight service at config.Address.
// The connection is established lazily on the first call.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if config.Token != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(auth.BearerCredentials{Token: config.Token}))
	}
	opts = append(opts, config.DialOptions...)

	conn, err := grpc.NewClient(config.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client: %w", err)
	}

	idColumn := config.IDColumn
	if idColumn == "" {
		idColumn = DefaultIDColumn
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		conn:     conn,
		client:   flight.NewFlightServiceClient(conn),
		idColumn: idColumn,
		logger:   logger,
		columns:  make(map[string][]string),
	}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// GeometryColumns implements feature.MetadataSource.
// Results are cached per layer for the life of the client.
func (c *Client) GeometryColumns(ctx context.Context, layerID string) ([]string, error) {
	c.mu.Lock()
	cols, ok := c.columns[layerID]
	c.mu.Unlock()
	if ok {
		return cols, nil
	}

	res, err := c.client.GetSchema(ctx, &flight.FlightDescriptor{
		Type: flight.DescriptorPATH,
		Path: []string{layerID},
	})
	if err != nil {
		return nil, callError(err, layerID)
	}
	schema, err := flight.DeserializeSchema(res.GetSchema(), memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema of layer %s: %w", layerID, err)
	}

	cols = GeometryColumnNames(schema)
	c.mu.Lock()
	c.columns[layerID] = cols
	c.mu.Unlock()
	return cols, nil
}

// FetchFilteredGeometries implements feature.Fetcher.
//
// It streams the identifier column and the first geometry column of the
// layer and converts WKB geometries to WKT. Null geometries yield features
// with an empty Geometry.
func (c *Client) FetchFilteredGeometries(ctx context.Context, layerID, cqlFilter string) ([]feature.Feature, error) {
	geomCols, err := c.GeometryColumns(ctx, layerID)
	if err != nil {
		return nil, err
	}
	if len(geomCols) == 0 {
		return nil, fmt.Errorf("layer %s has no geometry column", layerID)
	}
	geomCol := geomCols[0]

	data, err := ticket.Encode(ticket.Ticket{
		Layer:   layerID,
		Filter:  cqlFilter,
		Columns: []string{c.idColumn, geomCol},
	})
	if err != nil {
		return nil, err
	}

	stream, err := c.client.DoGet(ctx, &flight.Ticket{Ticket: data})
	if err != nil {
		return nil, callError(err, layerID)
	}
	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		return nil, callError(err, layerID)
	}
	defer reader.Release()

	schema := reader.Schema()
	idIdx := schema.FieldIndices(c.idColumn)
	geomIdx := schema.FieldIndices(geomCol)
	if len(idIdx) == 0 || len(geomIdx) == 0 {
		return nil, fmt.Errorf("layer %s: response lacks %s or %s column", layerID, c.idColumn, geomCol)
	}

	var features []feature.Feature
	for reader.Next() {
		record := reader.RecordBatch()
		ids := stringColumn(record.Column(idIdx[0]))
		geoms, err := wkbColumn(record.Column(geomIdx[0]))
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", layerID, err)
		}
		for i := 0; i < int(record.NumRows()); i++ {
			f := feature.Feature{ID: ids(i)}
			if !geoms.IsNull(i) {
				text, err := geometry.FromWKB(geoms.Value(i))
				if err != nil {
					c.logger.Warn("Skipping feature geometry",
						"layer", layerID,
						"feature", f.ID,
						"error", err,
					)
				}
				f.Geometry = text
			}
			features = append(features, f)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, callError(err, layerID)
	}

	c.logger.Debug("Fetched layer features",
		"layer", layerID,
		"filter_len", len(cqlFilter),
		"features", len(features),
	)
	return features, nil
}

// callError maps gRPC status errors to package errors.
func callError(err error, layerID string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", feature.ErrLayerNotFound, layerID)
	case codes.Canceled:
		return fmt.Errorf("%w: %v", context.Canceled, err)
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	default:
		return fmt.Errorf("layer %s: %w", layerID, err)
	}
}
