package geometry

import "strings"

// Intersect builds the clause matching any of columns intersecting any of exprs.
// Returns "" if either list is empty.
func Intersect(columns []string, exprs []string) string {
	if len(columns) == 0 || len(exprs) == 0 {
		return ""
	}
	perColumn := make([]string, 0, len(columns))
	for _, col := range columns {
		clauses := make([]string, 0, len(exprs))
		for _, e := range exprs {
			clauses = append(clauses, "INTERSECTS("+col+", "+e+")")
		}
		perColumn = append(perColumn, orJoin(clauses))
	}
	return orJoin(perColumn)
}

func orJoin(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
