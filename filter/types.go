package filter

import "slices"

// Operator combines the predicates of a group.
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

// FilterType discriminates the members of the Filter sum type.
type FilterType string

const (
	TypeAttribute FilterType = "ATTRIBUTE"
	TypeSpatial   FilterType = "SPATIAL"
)

// AttributeType is the data type of the attribute an AttributeFilter tests.
type AttributeType string

const (
	AttributeTypeString    AttributeType = "STRING"
	AttributeTypeInteger   AttributeType = "INTEGER"
	AttributeTypeDouble    AttributeType = "DOUBLE"
	AttributeTypeBoolean   AttributeType = "BOOLEAN"
	AttributeTypeDate      AttributeType = "DATE"
	AttributeTypeTimestamp AttributeType = "TIMESTAMP"
)

// IsNumeric reports whether values of t are emitted as bare numbers.
func (t AttributeType) IsNumeric() bool {
	return t == AttributeTypeInteger || t == AttributeTypeDouble
}

// IsTemporal reports whether t is a date or timestamp type.
func (t AttributeType) IsTemporal() bool {
	return t == AttributeTypeDate || t == AttributeTypeTimestamp
}

// Filter is the interface implemented by all filter kinds.
// Use a type switch on *AttributeFilter and *SpatialFilter to access data.
type Filter interface {
	// Type returns the filter kind.
	Type() FilterType

	// FilterID returns the filter identifier.
	FilterID() string

	// IsDisabled reports whether the filter is switched off.
	IsDisabled() bool

	clone() Filter

	// filterMarker is a marker method to prevent external implementation.
	filterMarker()
}

// BaseFilter contains the fields shared by all filter kinds.
type BaseFilter struct {
	ID       string
	Disabled bool
}

// FilterID returns the filter identifier.
func (b *BaseFilter) FilterID() string { return b.ID }

// IsDisabled reports whether the filter is switched off.
func (b *BaseFilter) IsDisabled() bool { return b.Disabled }

func (b *BaseFilter) filterMarker() {}

// AttributeFilter tests a single feature attribute against a condition.
type AttributeFilter struct {
	BaseFilter
	Attribute       string
	AttributeType   AttributeType
	Condition       Condition
	InvertCondition bool
	CaseSensitive   bool

	// Value holds the condition operands; its length follows Arity.
	Value []string
}

// Type returns TypeAttribute.
func (f *AttributeFilter) Type() FilterType { return TypeAttribute }

func (f *AttributeFilter) clone() Filter {
	c := *f
	c.Value = slices.Clone(f.Value)
	return &c
}

// GeometryColumns names the geometry columns of one layer a spatial filter tests.
type GeometryColumns struct {
	LayerID string
	Columns []string
}

// Geometry is one shape of a spatial filter in WKT-like text.
type Geometry struct {
	ID   string
	Text string

	// OriginLayerID is set for geometries pulled from a reference layer.
	// Such geometries are owned by the reference-layer synchronizer.
	OriginLayerID string
}

// SpatialFilter selects features whose geometry intersects a set of shapes.
type SpatialFilter struct {
	BaseFilter
	GeometryColumns []GeometryColumns
	Geometries      []Geometry

	// ReferenceLayerID, when set, names the layer whose filtered features
	// supply geometries to this filter.
	ReferenceLayerID string

	// Buffer widens every shape by the given distance. Nil means no buffer.
	Buffer *float64
}

// Type returns TypeSpatial.
func (f *SpatialFilter) Type() FilterType { return TypeSpatial }

// ColumnsForLayer returns the geometry column names declared for layerID.
func (f *SpatialFilter) ColumnsForLayer(layerID string) []string {
	var columns []string
	for _, gc := range f.GeometryColumns {
		if gc.LayerID == layerID {
			columns = append(columns, gc.Columns...)
		}
	}
	return columns
}

func (f *SpatialFilter) clone() Filter {
	c := *f
	c.GeometryColumns = make([]GeometryColumns, len(f.GeometryColumns))
	for i, gc := range f.GeometryColumns {
		c.GeometryColumns[i] = GeometryColumns{LayerID: gc.LayerID, Columns: slices.Clone(gc.Columns)}
	}
	c.Geometries = slices.Clone(f.Geometries)
	if f.Buffer != nil {
		b := *f.Buffer
		c.Buffer = &b
	}
	return &c
}

// Group combines filters, and the groups below it, with one operator.
//
// Groups form a forest through ParentID. A group without a parent, or whose
// parent is missing from the forest, is a root.
type Group struct {
	ID string

	// Source tags the collaborator that created the group (e.g. "PRESET", "DRAWN").
	Source string

	LayerIDs []string
	Operator Operator
	Filters  []Filter
	Disabled bool
	ParentID string
}

// HasLayer reports whether the group applies to layerID.
func (g Group) HasLayer(layerID string) bool {
	return slices.Contains(g.LayerIDs, layerID)
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	c := g
	c.LayerIDs = slices.Clone(g.LayerIDs)
	if g.Filters != nil {
		c.Filters = make([]Filter, len(g.Filters))
		for i, f := range g.Filters {
			c.Filters[i] = f.clone()
		}
	}
	return c
}

// SpatialFilters returns the spatial filters of the group in declaration order.
func (g Group) SpatialFilters() []*SpatialFilter {
	var out []*SpatialFilter
	for _, f := range g.Filters {
		if sf, ok := f.(*SpatialFilter); ok {
			out = append(out, sf)
		}
	}
	return out
}
