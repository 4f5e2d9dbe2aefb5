package geometry

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Kind is the classification of a geometry text.
type Kind int

const (
	// KindUnknown marks text that is ignored by rendering.
	KindUnknown Kind = iota
	// KindBase marks a standard WKT geometry.
	KindBase
	// KindCircle marks the CIRCLE(x y r) shorthand.
	KindCircle
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindCircle:
		return "circle"
	default:
		return "unknown"
	}
}

const circlePrefix = "CIRCLE("

var basePrefixes = []string{
	"MULTIPOINT",
	"MULTILINESTRING",
	"MULTIPOLYGON",
	"POINT",
	"LINESTRING",
	"POLYGON",
}

// Circle is a center point with a radius.
type Circle struct {
	Center orb.Point
	Radius float64
}

// Classify returns the kind of a geometry text. It never fails.
func Classify(text string) Kind {
	if strings.HasPrefix(text, circlePrefix) {
		if _, ok := ParseCircle(text); ok {
			return KindCircle
		}
		return KindUnknown
	}
	for _, p := range basePrefixes {
		if strings.HasPrefix(text, p) {
			return KindBase
		}
	}
	return KindUnknown
}

// ParseCircle parses CIRCLE(x y r). The payload must hold exactly three
// whitespace separated numbers.
func ParseCircle(text string) (Circle, bool) {
	if !strings.HasPrefix(text, circlePrefix) {
		return Circle{}, false
	}
	payload := strings.TrimPrefix(text, circlePrefix)
	payload, ok := strings.CutSuffix(strings.TrimSpace(payload), ")")
	if !ok {
		return Circle{}, false
	}
	parts := strings.Fields(payload)
	if len(parts) != 3 {
		return Circle{}, false
	}
	var nums [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Circle{}, false
		}
		nums[i] = v
	}
	return Circle{Center: orb.Point{nums[0], nums[1]}, Radius: nums[2]}, true
}
