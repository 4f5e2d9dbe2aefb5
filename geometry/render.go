package geometry

import (
	"strconv"
	"strings"
)

// Render turns geometry texts into CQL geometry expressions.
//
// All base geometries collapse into one expression, a GEOMETRYCOLLECTION when
// there are several. Every circle becomes its own buffered point. With a
// buffer the base expression is wrapped in BUFFER and circle radii are
// widened by it. Unknown texts are dropped.
func Render(texts []string, buffer *float64) []string {
	var bases []string
	var circles []Circle
	for _, t := range texts {
		switch Classify(t) {
		case KindBase:
			bases = append(bases, t)
		case KindCircle:
			c, _ := ParseCircle(t)
			circles = append(circles, c)
		}
	}

	out := make([]string, 0, 1+len(circles))
	if len(bases) > 0 {
		base := bases[0]
		if len(bases) > 1 {
			base = "GEOMETRYCOLLECTION(" + strings.Join(bases, ",") + ")"
		}
		if buffer != nil {
			base = "BUFFER(" + base + ", " + formatNumber(*buffer) + ")"
		}
		out = append(out, base)
	}

	var extra float64
	if buffer != nil {
		extra = *buffer
	}
	for _, c := range circles {
		out = append(out, "BUFFER(POINT("+formatNumber(c.Center.X())+" "+formatNumber(c.Center.Y())+"), "+
			formatNumber(c.Radius+extra)+")")
	}
	return out
}

// formatNumber emits the shortest representation that round-trips.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
