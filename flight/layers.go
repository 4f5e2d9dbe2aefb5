package flight

import (
	"context"
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/layerfilter/feature"
	"github.com/hugr-lab/layerfilter/geometry"
)

// DefaultIDColumn names the feature identifier column.
const DefaultIDColumn = "id"

// FeatureLayers is a LayerStore serving the layers of a feature source.
//
// Every layer has a string identifier column followed by one WKB column per
// geometry column reported by Meta. Filtering is delegated to Fetcher.
type FeatureLayers struct {
	Fetcher feature.Fetcher
	Meta    feature.MetadataSource

	// SRID tags geometry columns. Zero omits the CRS.
	SRID int

	// Allocator defaults to memory.DefaultAllocator.
	Allocator memory.Allocator
}

// Schema implements LayerStore.
func (l *FeatureLayers) Schema(ctx context.Context, layer string) (*arrow.Schema, error) {
	columns, err := l.Meta.GeometryColumns(ctx, layer)
	if err != nil {
		return nil, err
	}
	fields := make([]arrow.Field, 0, 1+len(columns))
	fields = append(fields, arrow.Field{Name: DefaultIDColumn, Type: arrow.BinaryTypes.String})
	for _, col := range columns {
		fields = append(fields, GeometryField(col, true, l.SRID))
	}
	return arrow.NewSchema(fields, nil), nil
}

// Scan implements LayerStore.
func (l *FeatureLayers) Scan(ctx context.Context, layer, filter string, columns []string) (array.RecordReader, error) {
	schema, err := l.Schema(ctx, layer)
	if err != nil {
		return nil, err
	}
	schema, err = project(schema, columns)
	if err != nil {
		return nil, err
	}

	features, err := l.Fetcher.FetchFilteredGeometries(ctx, layer, filter)
	if err != nil {
		return nil, err
	}

	allocator := l.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	builder := array.NewRecordBuilder(allocator, schema)
	defer builder.Release()

	wkbs := make([][]byte, len(features))
	for i, f := range features {
		wkbs[i] = featureWKB(f)
	}

	for i, field := range schema.Fields() {
		if IsGeometryField(field) {
			b := builder.Field(i).(*array.BinaryBuilder)
			for _, data := range wkbs {
				if data == nil {
					b.AppendNull()
					continue
				}
				b.Append(data)
			}
			continue
		}
		b := builder.Field(i).(*array.StringBuilder)
		for _, f := range features {
			b.Append(f.ID)
		}
	}

	record := builder.NewRecordBatch()
	defer record.Release()
	return array.NewRecordReader(schema, []arrow.RecordBatch{record})
}

// featureWKB encodes a feature geometry, or returns nil when it has none or
// it cannot be parsed.
func featureWKB(f feature.Feature) []byte {
	if f.Geometry == "" {
		return nil
	}
	g, err := geometry.ParseWKT(f.Geometry)
	if err != nil {
		return nil
	}
	data, err := geometry.ToWKB(g)
	if err != nil {
		return nil
	}
	return data
}

// project keeps the named fields of schema in schema order.
func project(schema *arrow.Schema, columns []string) (*arrow.Schema, error) {
	if len(columns) == 0 {
		return schema, nil
	}
	for _, col := range columns {
		if !schema.HasField(col) {
			return nil, fmt.Errorf("unknown column %q", col)
		}
	}
	var fields []arrow.Field
	for _, f := range schema.Fields() {
		if slices.Contains(columns, f.Name) {
			fields = append(fields, f)
		}
	}
	return arrow.NewSchema(fields, nil), nil
}
