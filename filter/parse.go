package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseForest parses a JSON forest snapshot.
//
// Accepted shapes are {"groups": [...]} and a bare array of groups. Filters are
// discriminated by their "type" field ("ATTRIBUTE" or "SPATIAL").
//
// Error conditions:
//   - Invalid JSON syntax
//   - Missing group or filter id
//   - Unknown filter type or operator
//   - Attribute filter values not matching the condition arity
func ParseForest(data []byte) (*Forest, error) {
	groups, err := ParseGroups(data)
	if err != nil {
		return nil, err
	}
	return NewForest(groups), nil
}

// ParseGroups parses a JSON forest snapshot into groups in document order.
func ParseGroups(data []byte) ([]Group, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var raws []rawGroup
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("filter: invalid JSON: %w", err)
		}
	} else {
		var doc rawForest
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("filter: invalid JSON: %w", err)
		}
		raws = doc.Groups
	}

	groups := make([]Group, 0, len(raws))
	for i, raw := range raws {
		g, err := parseGroup(raw)
		if err != nil {
			return nil, fmt.Errorf("filter: error parsing group %d: %w", i, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// MarshalForest encodes a forest in the {"groups": [...]} shape.
func MarshalForest(f *Forest) ([]byte, error) {
	return MarshalGroups(f.Groups())
}

// MarshalGroups encodes groups in the {"groups": [...]} shape.
func MarshalGroups(groups []Group) ([]byte, error) {
	doc := rawForest{Groups: make([]rawGroup, 0, len(groups))}
	for _, g := range groups {
		raw, err := encodeGroup(g)
		if err != nil {
			return nil, err
		}
		doc.Groups = append(doc.Groups, raw)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("filter: failed to encode forest: %w", err)
	}
	return data, nil
}

// rawForest is the intermediate structure for JSON parsing.
type rawForest struct {
	Groups []rawGroup `json:"groups"`
}

type rawGroup struct {
	ID          string            `json:"id"`
	Source      string            `json:"source,omitempty"`
	LayerIDs    []string          `json:"layerIds"`
	Operator    string            `json:"operator"`
	Filters     []json.RawMessage `json:"filters"`
	Disabled    bool              `json:"disabled,omitempty"`
	ParentGroup string            `json:"parentGroup,omitempty"`
}

// rawFilterHeader is used for two-phase parsing to determine the filter type.
type rawFilterHeader struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type rawAttributeFilter struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Disabled        bool     `json:"disabled,omitempty"`
	Attribute       string   `json:"attribute"`
	AttributeType   string   `json:"attributeType"`
	Condition       string   `json:"condition"`
	InvertCondition bool     `json:"invertCondition,omitempty"`
	CaseSensitive   bool     `json:"caseSensitive,omitempty"`
	Value           []string `json:"value"`
}

type rawGeometryColumns struct {
	LayerID string   `json:"layerId"`
	Columns []string `json:"columns"`
}

type rawGeometry struct {
	ID            string `json:"id"`
	Geometry      string `json:"geometry"`
	OriginLayerID string `json:"originLayerId,omitempty"`
}

type rawSpatialFilter struct {
	ID               string               `json:"id"`
	Type             string               `json:"type"`
	Disabled         bool                 `json:"disabled,omitempty"`
	GeometryColumns  []rawGeometryColumns `json:"geometryColumns"`
	Geometries       []rawGeometry        `json:"geometries"`
	ReferenceLayerID string               `json:"referenceLayerId,omitempty"`
	Buffer           *float64             `json:"buffer,omitempty"`
}

func parseGroup(raw rawGroup) (Group, error) {
	if raw.ID == "" {
		return Group{}, fmt.Errorf("group id is required")
	}

	op := Operator(raw.Operator)
	switch op {
	case OperatorAnd, OperatorOr:
	case "":
		op = OperatorAnd
	default:
		return Group{}, fmt.Errorf("group %s: unknown operator %q", raw.ID, raw.Operator)
	}

	g := Group{
		ID:       raw.ID,
		Source:   raw.Source,
		LayerIDs: raw.LayerIDs,
		Operator: op,
		Disabled: raw.Disabled,
		ParentID: raw.ParentGroup,
		Filters:  make([]Filter, 0, len(raw.Filters)),
	}
	for i, data := range raw.Filters {
		f, err := parseFilter(data)
		if err != nil {
			return Group{}, fmt.Errorf("group %s: error parsing filter %d: %w", raw.ID, i, err)
		}
		g.Filters = append(g.Filters, f)
	}
	return g, nil
}

// parseFilter parses a single filter from raw JSON.
func parseFilter(data json.RawMessage) (Filter, error) {
	var header rawFilterHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if header.ID == "" {
		return nil, fmt.Errorf("filter id is required")
	}

	switch FilterType(header.Type) {
	case TypeAttribute:
		return parseAttributeFilter(data)
	case TypeSpatial:
		return parseSpatialFilter(data)
	default:
		return nil, fmt.Errorf("filter %s: unknown filter type %q", header.ID, header.Type)
	}
}

func parseAttributeFilter(data json.RawMessage) (*AttributeFilter, error) {
	var raw rawAttributeFilter
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid attribute filter: %w", err)
	}

	f := &AttributeFilter{
		BaseFilter:      BaseFilter{ID: raw.ID, Disabled: raw.Disabled},
		Attribute:       raw.Attribute,
		AttributeType:   AttributeType(raw.AttributeType),
		Condition:       Condition(raw.Condition),
		InvertCondition: raw.InvertCondition,
		CaseSensitive:   raw.CaseSensitive,
		Value:           raw.Value,
	}
	if f.Attribute == "" {
		return nil, fmt.Errorf("attribute filter %s: attribute is required", raw.ID)
	}
	if err := ValidateArity(f); err != nil {
		return nil, fmt.Errorf("attribute filter %s: %w", raw.ID, err)
	}
	return f, nil
}

func parseSpatialFilter(data json.RawMessage) (*SpatialFilter, error) {
	var raw rawSpatialFilter
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid spatial filter: %w", err)
	}

	f := &SpatialFilter{
		BaseFilter:       BaseFilter{ID: raw.ID, Disabled: raw.Disabled},
		ReferenceLayerID: raw.ReferenceLayerID,
		Buffer:           raw.Buffer,
	}
	for _, gc := range raw.GeometryColumns {
		f.GeometryColumns = append(f.GeometryColumns, GeometryColumns{LayerID: gc.LayerID, Columns: gc.Columns})
	}
	for _, geom := range raw.Geometries {
		f.Geometries = append(f.Geometries, Geometry{ID: geom.ID, Text: geom.Geometry, OriginLayerID: geom.OriginLayerID})
	}
	return f, nil
}

func encodeGroup(g Group) (rawGroup, error) {
	raw := rawGroup{
		ID:          g.ID,
		Source:      g.Source,
		LayerIDs:    g.LayerIDs,
		Operator:    string(g.Operator),
		Disabled:    g.Disabled,
		ParentGroup: g.ParentID,
		Filters:     make([]json.RawMessage, 0, len(g.Filters)),
	}
	if raw.LayerIDs == nil {
		raw.LayerIDs = []string{}
	}
	for _, f := range g.Filters {
		var v any
		switch ft := f.(type) {
		case *AttributeFilter:
			v = rawAttributeFilter{
				ID:              ft.ID,
				Type:            string(TypeAttribute),
				Disabled:        ft.Disabled,
				Attribute:       ft.Attribute,
				AttributeType:   string(ft.AttributeType),
				Condition:       string(ft.Condition),
				InvertCondition: ft.InvertCondition,
				CaseSensitive:   ft.CaseSensitive,
				Value:           nonNil(ft.Value),
			}
		case *SpatialFilter:
			sf := rawSpatialFilter{
				ID:               ft.ID,
				Type:             string(TypeSpatial),
				Disabled:         ft.Disabled,
				ReferenceLayerID: ft.ReferenceLayerID,
				Buffer:           ft.Buffer,
				GeometryColumns:  []rawGeometryColumns{},
				Geometries:       []rawGeometry{},
			}
			for _, gc := range ft.GeometryColumns {
				sf.GeometryColumns = append(sf.GeometryColumns, rawGeometryColumns{LayerID: gc.LayerID, Columns: nonNil(gc.Columns)})
			}
			for _, geom := range ft.Geometries {
				sf.Geometries = append(sf.Geometries, rawGeometry{ID: geom.ID, Geometry: geom.Text, OriginLayerID: geom.OriginLayerID})
			}
			v = sf
		default:
			return rawGroup{}, fmt.Errorf("filter: group %s: unsupported filter %T", g.ID, f)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return rawGroup{}, fmt.Errorf("filter: group %s: failed to encode filter %s: %w", g.ID, f.FilterID(), err)
		}
		raw.Filters = append(raw.Filters, data)
	}
	return raw, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
