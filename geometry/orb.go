package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"
)

// FromOrb renders an orb geometry as WKT text.
func FromOrb(g orb.Geometry) (string, error) {
	if g == nil {
		return "", nil
	}
	switch g.(type) {
	case orb.Point, orb.MultiPoint, orb.LineString, orb.MultiLineString,
		orb.Polygon, orb.MultiPolygon, orb.Collection, orb.Ring, orb.Bound:
		return wkt.MarshalString(g), nil
	default:
		return "", fmt.Errorf("unsupported geometry type: %T", g)
	}
}

// FromWKB decodes a WKB geometry and renders it as WKT text.
// A nil or empty payload yields "".
func FromWKB(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode WKB: %w", err)
	}
	return FromOrb(g)
}

// ToWKB encodes an orb geometry as WKB.
func ToWKB(g orb.Geometry) ([]byte, error) {
	data, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode WKB: %w", err)
	}
	return data, nil
}

// ParseWKT decodes WKT text into an orb geometry.
func ParseWKT(text string) (orb.Geometry, error) {
	g, err := wkt.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode WKT: %w", err)
	}
	return g, nil
}
