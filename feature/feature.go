// Package feature defines the ports through which layer features and layer
// metadata reach the filter core, together with simple implementations.
package feature

import (
	"context"
	"errors"
)

var (
	// ErrLayerNotFound indicates the requested layer is unknown to the source.
	ErrLayerNotFound = errors.New("layer not found")
)

// Feature is a single feature of a layer reduced to what spatial filters need.
type Feature struct {
	// ID is the feature identifier, unique within its layer.
	ID string

	// Geometry is the feature geometry as WKT text.
	// Empty when the feature has no geometry.
	Geometry string
}

// Fetcher retrieves the features of a layer matching a CQL filter.
// Implementations MUST be goroutine-safe.
type Fetcher interface {
	// FetchFilteredGeometries returns the features of layerID matching cqlFilter.
	// An empty cqlFilter means unfiltered.
	FetchFilteredGeometries(ctx context.Context, layerID, cqlFilter string) ([]Feature, error)
}

// MetadataSource supplies layer metadata needed to build spatial filters.
// Implementations MUST be goroutine-safe.
type MetadataSource interface {
	// GeometryColumns returns the geometry column names of layerID in
	// declaration order. A layer without geometry returns an empty slice.
	GeometryColumns(ctx context.Context, layerID string) ([]string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, layerID, cqlFilter string) ([]Feature, error)

// FetchFilteredGeometries implements Fetcher.
func (f FetcherFunc) FetchFilteredGeometries(ctx context.Context, layerID, cqlFilter string) ([]Feature, error) {
	return f(ctx, layerID, cqlFilter)
}
