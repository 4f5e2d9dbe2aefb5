package flight

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

const (
	extensionNameKey     = "ARROW:extension:name"
	extensionMetadataKey = "ARROW:extension:metadata"

	// WKBExtensionName tags Binary columns holding WKB geometries.
	WKBExtensionName = "geoarrow.wkb"
)

// GeometryMetadata is the GeoArrow metadata of a geometry column.
// Stored in Arrow field metadata as JSON.
type GeometryMetadata struct {
	// CRS is the coordinate reference system (PROJJSON subset).
	CRS *CRS `json:"crs,omitempty"`

	// Edges indicates edge interpretation ("planar" or "spherical").
	Edges string `json:"edges,omitempty"`
}

// CRS identifies a coordinate reference system.
type CRS struct {
	ID *CRSID `json:"id,omitempty"`
}

// CRSID is a CRS authority code such as EPSG:4326.
type CRSID struct {
	Authority string `json:"authority"`
	Code      int    `json:"code"`
}

// GeometryField creates a Binary field tagged as a GeoArrow WKB column.
// A zero srid omits the CRS.
func GeometryField(name string, nullable bool, srid int) arrow.Field {
	meta := GeometryMetadata{Edges: "planar"}
	if srid != 0 {
		meta.CRS = &CRS{ID: &CRSID{Authority: "EPSG", Code: srid}}
	}
	metaJSON, _ := json.Marshal(meta)

	return arrow.Field{
		Name:     name,
		Type:     arrow.BinaryTypes.Binary,
		Nullable: nullable,
		Metadata: arrow.MetadataFrom(map[string]string{
			extensionNameKey:     WKBExtensionName,
			extensionMetadataKey: string(metaJSON),
			"srid":               strconv.Itoa(srid),
		}),
	}
}

// IsGeometryField reports whether f holds WKB geometries, either through a
// registered extension type or through extension field metadata.
func IsGeometryField(f arrow.Field) bool {
	if ext, ok := f.Type.(arrow.ExtensionType); ok {
		return ext.ExtensionName() == WKBExtensionName
	}
	name, ok := f.Metadata.GetValue(extensionNameKey)
	return ok && name == WKBExtensionName
}

// GeometryColumnNames returns the geometry fields of schema in field order.
func GeometryColumnNames(schema *arrow.Schema) []string {
	names := []string{}
	for _, f := range schema.Fields() {
		if IsGeometryField(f) {
			names = append(names, f.Name)
		}
	}
	return names
}

// binaryColumn gives uniform access to Binary and LargeBinary WKB storage.
type binaryColumn interface {
	IsNull(i int) bool
	Value(i int) []byte
}

func wkbColumn(arr arrow.Array) (binaryColumn, error) {
	if ext, ok := arr.(array.ExtensionArray); ok {
		arr = ext.Storage()
	}
	switch col := arr.(type) {
	case *array.Binary:
		return col, nil
	case *array.LargeBinary:
		return col, nil
	default:
		return nil, fmt.Errorf("geometry column has type %s, expected binary", arr.DataType())
	}
}

// stringColumn renders the identifier column of a feature record.
func stringColumn(arr arrow.Array) func(i int) string {
	switch col := arr.(type) {
	case *array.String:
		return col.Value
	case *array.LargeString:
		return col.Value
	default:
		return arr.ValueStr
	}
}
