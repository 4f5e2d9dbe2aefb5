package refsync

import (
	"github.com/hugr-lab/layerfilter/feature"
	"github.com/hugr-lab/layerfilter/filter"
)

// Merge returns a copy of g where, in every enabled spatial filter referencing
// layerID, the geometries originating from layerID are replaced by geoms.
// Geometries of other origins keep their order and come first.
// The boolean reports whether any filter referenced the layer.
func Merge(g filter.Group, layerID string, geoms []filter.Geometry) (filter.Group, bool) {
	out := g.Clone()
	matched := false
	for _, sf := range out.SpatialFilters() {
		if sf.Disabled || sf.ReferenceLayerID != layerID {
			continue
		}
		kept := make([]filter.Geometry, 0, len(sf.Geometries)+len(geoms))
		for _, geom := range sf.Geometries {
			if geom.OriginLayerID != layerID {
				kept = append(kept, geom)
			}
		}
		sf.Geometries = append(kept, geoms...)
		matched = true
	}
	return out, matched
}

// toGeometries tags fetched features with their origin layer.
// Features without geometry are skipped.
func toGeometries(layerID string, features []feature.Feature) []filter.Geometry {
	out := make([]filter.Geometry, 0, len(features))
	for _, f := range features {
		if f.Geometry == "" {
			continue
		}
		out = append(out, filter.Geometry{ID: f.ID, Text: f.Geometry, OriginLayerID: layerID})
	}
	return out
}
