package cql

import (
	"github.com/hugr-lab/layerfilter/filter"
	"github.com/hugr-lab/layerfilter/geometry"
)

// Compile returns the CQL predicate for layerID, or "" if no enabled filter
// applies to the layer.
//
// Root groups of the layer are joined with AND. Within a group, own filters
// and child group results are each joined with the group operator and then
// combined with it once more.
func Compile(f *filter.Forest, layerID string) string {
	var parts []string
	for _, g := range f.Roots(layerID) {
		if s := compileGroup(f, g, layerID); s != "" {
			parts = append(parts, s)
		}
	}
	return join(parts, string(filter.OperatorAnd))
}

// CompileAll compiles every layer referenced by a group of the forest.
// Layers without an effective filter map to "".
func CompileAll(f *filter.Forest) map[string]string {
	layers := f.LayerIDs()
	out := make(map[string]string, len(layers))
	for _, layerID := range layers {
		out[layerID] = Compile(f, layerID)
	}
	return out
}

func compileGroup(f *filter.Forest, g filter.Group, layerID string) string {
	if g.Disabled {
		return ""
	}
	op := string(g.Operator)

	var own []string
	for _, flt := range g.Filters {
		if s := compileFilter(flt, layerID); s != "" {
			own = append(own, s)
		}
	}

	var children []string
	for _, child := range f.Children(g.ID) {
		if s := compileGroup(f, child, layerID); s != "" {
			children = append(children, s)
		}
	}

	var parts []string
	if s := join(own, op); s != "" {
		parts = append(parts, s)
	}
	if s := join(children, op); s != "" {
		parts = append(parts, s)
	}
	return join(parts, op)
}

func compileFilter(flt filter.Filter, layerID string) string {
	if flt.IsDisabled() {
		return ""
	}
	switch ft := flt.(type) {
	case *filter.AttributeFilter:
		return compileAttribute(ft)
	case *filter.SpatialFilter:
		return compileSpatial(ft, layerID)
	default:
		return ""
	}
}

// compileSpatial matches the layer's geometry columns against the rendered
// filter geometries. Returns "" when either side is empty.
func compileSpatial(f *filter.SpatialFilter, layerID string) string {
	columns := f.ColumnsForLayer(layerID)
	if len(columns) == 0 {
		return ""
	}
	texts := make([]string, 0, len(f.Geometries))
	for _, g := range f.Geometries {
		texts = append(texts, g.Text)
	}
	return geometry.Intersect(columns, geometry.Render(texts, f.Buffer))
}
