package cql

import "strings"

// escapeString escapes single quotes in a string value for CQL.
func escapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteLiteral returns a CQL string literal with proper escaping.
func quoteLiteral(s string) string {
	return "'" + escapeString(s) + "'"
}

// likePattern returns a quoted LIKE pattern with the escaped value placed
// between prefix and suffix wildcards.
func likePattern(prefix, value, suffix string) string {
	return "'" + prefix + escapeString(value) + suffix + "'"
}

// not returns the NOT keyword, with a leading space, when invert is set.
func not(invert bool) string {
	if invert {
		return " NOT"
	}
	return ""
}

// join combines parts with op, wrapping in parentheses when more than one
// part remains. Returns "" for no parts.
func join(parts []string, op string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, " "+op+" ") + ")"
	}
}
