// Package geometry renders filter geometries into CQL spatial expressions.
//
// Geometries arrive as WKT-like text. Besides the standard WKT base types a
// CIRCLE(x y r) shorthand is accepted; circles are emitted as buffered points,
// leaving the actual geometric computation to the query engine.
//
// Example:
//
//	exprs := geometry.Render([]string{"POINT(1 2)", "CIRCLE(0 0 5)"}, nil)
//	clause := geometry.Intersect([]string{"the_geom"}, exprs)
package geometry
