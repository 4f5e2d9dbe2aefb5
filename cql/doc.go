// Package cql compiles filter forests into one CQL predicate per map layer.
//
// Compilation is pure and total: anything that cannot be expressed, such as
// an unknown condition or a spatial filter without geometry columns for the
// layer, renders as the empty string and drops out of its enclosing group.
// The empty string as a whole means "no filter".
//
// Example:
//
//	forest, err := filter.ParseForest(data)
//	if err != nil {
//		return err
//	}
//	where := cql.Compile(forest, "parcels")
package cql
