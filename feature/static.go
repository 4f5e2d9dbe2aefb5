package feature

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Request records a single FetchFilteredGeometries call made against Static.
type Request struct {
	LayerID string
	Filter  string
}

// Static is an in-memory Fetcher and MetadataSource.
//
// Static cannot evaluate CQL. A fetch returns the features registered for the
// exact (layer, filter) pair when one exists, and the layer's unfiltered
// features otherwise. Every call is recorded and can be inspected via Requests.
type Static struct {
	mu       sync.Mutex
	layers   map[string]*staticLayer
	requests []Request
}

type staticLayer struct {
	columns  []string
	features []Feature
	filtered map[string][]Feature
}

// NewStatic creates an empty static source.
func NewStatic() *Static {
	return &Static{
		layers: make(map[string]*staticLayer),
	}
}

// AddLayer registers a layer with its geometry columns and unfiltered features.
// Adding an existing layer replaces it.
func (s *Static) AddLayer(layerID string, columns []string, features []Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[layerID] = &staticLayer{
		columns:  slices.Clone(columns),
		features: slices.Clone(features),
		filtered: make(map[string][]Feature),
	}
}

// SetFiltered registers the features returned for layerID under cqlFilter.
func (s *Static) SetFiltered(layerID, cqlFilter string, features []Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[layerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, layerID)
	}
	l.filtered[cqlFilter] = slices.Clone(features)
	return nil
}

// FetchFilteredGeometries implements Fetcher.
func (s *Static) FetchFilteredGeometries(ctx context.Context, layerID, cqlFilter string) ([]Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{LayerID: layerID, Filter: cqlFilter})

	l, ok := s.layers[layerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, layerID)
	}
	if features, ok := l.filtered[cqlFilter]; ok {
		return slices.Clone(features), nil
	}
	return slices.Clone(l.features), nil
}

// GeometryColumns implements MetadataSource.
func (s *Static) GeometryColumns(ctx context.Context, layerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[layerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, layerID)
	}
	return slices.Clone(l.columns), nil
}

// Requests returns a copy of all recorded fetch calls in call order.
func (s *Static) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}
