package filter

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hugr-lab/layerfilter/feature"
)

// NewGroup creates a root group with a fresh id.
func NewGroup(source string, layerIDs []string, op Operator, filters ...Filter) Group {
	if op == "" {
		op = OperatorAnd
	}
	return Group{
		ID:       uuid.NewString(),
		Source:   source,
		LayerIDs: layerIDs,
		Operator: op,
		Filters:  filters,
	}
}

// NewSpatialFilter creates a spatial filter applying to layerIDs.
//
// The geometry columns of every layer are looked up through meta. Layers
// without geometry columns are skipped. Returns an error if any lookup fails.
func NewSpatialFilter(ctx context.Context, meta feature.MetadataSource, layerIDs []string, geometries []Geometry) (*SpatialFilter, error) {
	sf := &SpatialFilter{
		BaseFilter: BaseFilter{ID: uuid.NewString()},
		Geometries: geometries,
	}
	for _, layerID := range layerIDs {
		columns, err := meta.GeometryColumns(ctx, layerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get geometry columns of layer %s: %w", layerID, err)
		}
		if len(columns) == 0 {
			continue
		}
		sf.GeometryColumns = append(sf.GeometryColumns, GeometryColumns{
			LayerID: layerID,
			Columns: columns,
		})
	}
	return sf, nil
}
