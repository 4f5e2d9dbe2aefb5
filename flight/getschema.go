package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetSchema returns the Arrow schema of the layer named by a PATH descriptor
// with a single element.
func (s *Server) GetSchema(ctx context.Context, desc *flight.FlightDescriptor) (*flight.SchemaResult, error) {
	if desc.GetType() != flight.DescriptorPATH || len(desc.GetPath()) != 1 {
		return nil, status.Error(codes.InvalidArgument, "descriptor must be a PATH with the layer name")
	}
	layer := desc.GetPath()[0]

	schema, err := s.layerSchema(ctx, layer)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("GetSchema", "layer", layer, "num_fields", schema.NumFields())
	return &flight.SchemaResult{
		Schema: flight.SerializeSchema(schema, s.allocator),
	}, nil
}
