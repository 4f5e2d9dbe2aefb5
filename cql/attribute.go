package cql

import (
	"strings"

	"github.com/hugr-lab/layerfilter/filter"
)

const (
	startOfDay = "T00:00:00Z"
	endOfDay   = "T23:59:59Z"
)

var numericOperators = map[filter.Condition]string{
	filter.ConditionNumberEquals:            "=",
	filter.ConditionNumberNotEquals:         "<>",
	filter.ConditionNumberLargerThan:        ">",
	filter.ConditionNumberSmallerThan:       "<",
	filter.ConditionNumberLargerEqualsThan:  ">=",
	filter.ConditionNumberSmallerEqualsThan: "<=",
}

// invertedOperators negates a comparison operator.
var invertedOperators = map[string]string{
	"=":  "<>",
	"<>": "=",
	">":  "<=",
	"<=": ">",
	"<":  ">=",
	">=": "<",
}

// compileAttribute renders an attribute filter wrapped in parentheses,
// or "" if the filter cannot be expressed.
func compileAttribute(f *filter.AttributeFilter) string {
	s := attributeExpression(f)
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

func attributeExpression(f *filter.AttributeFilter) string {
	if f.Attribute == "" {
		return ""
	}
	switch f.Condition {
	case filter.ConditionNull:
		return f.Attribute + " IS" + not(f.InvertCondition) + " NULL"
	case filter.ConditionUniqueValues:
		return inExpression(f)
	}

	switch {
	case f.AttributeType.IsNumeric():
		return numericExpression(f)
	case f.AttributeType == filter.AttributeTypeString:
		return stringExpression(f)
	case f.AttributeType.IsTemporal():
		return dateExpression(f)
	case f.AttributeType == filter.AttributeTypeBoolean:
		return booleanExpression(f)
	default:
		return ""
	}
}

func inExpression(f *filter.AttributeFilter) string {
	if len(f.Value) == 0 {
		return ""
	}
	quoted := f.AttributeType == filter.AttributeTypeString || f.AttributeType.IsTemporal()
	values := make([]string, len(f.Value))
	for i, v := range f.Value {
		if quoted {
			v = quoteLiteral(v)
		}
		values[i] = v
	}
	return f.Attribute + not(f.InvertCondition) + " IN (" + strings.Join(values, ",") + ")"
}

func numericExpression(f *filter.AttributeFilter) string {
	if f.Condition == filter.ConditionNumberBetween {
		if len(f.Value) < 2 {
			return ""
		}
		return f.Attribute + not(f.InvertCondition) + " BETWEEN " + f.Value[0] + " AND " + f.Value[1]
	}

	op, ok := numericOperators[f.Condition]
	if !ok || len(f.Value) < 1 {
		return ""
	}
	if f.InvertCondition {
		op = invertedOperators[op]
	}
	return f.Attribute + " " + op + " " + f.Value[0]
}

func stringExpression(f *filter.AttributeFilter) string {
	if len(f.Value) < 1 {
		return ""
	}
	v := f.Value[0]

	var pattern string
	switch f.Condition {
	case filter.ConditionStringEquals:
		pattern = likePattern("", v, "")
	case filter.ConditionStringLike:
		pattern = likePattern("%", v, "%")
	case filter.ConditionStringStartsWith:
		pattern = likePattern("", v, "%")
	case filter.ConditionStringEndsWith:
		pattern = likePattern("%", v, "")
	default:
		return ""
	}

	keyword := "ILIKE"
	if f.CaseSensitive {
		keyword = "LIKE"
	}
	return f.Attribute + not(f.InvertCondition) + " " + keyword + " " + pattern
}

// dateExpression compares DATE and TIMESTAMP attributes by calendar day.
// A time component in a value is dropped: ON and BETWEEN cover whole days,
// AFTER starts after the end of the day and BEFORE ends at its start.
func dateExpression(f *filter.AttributeFilter) string {
	switch f.Condition {
	case filter.ConditionDateOn:
		if len(f.Value) < 1 {
			return ""
		}
		return dateRange(f.Attribute, f.InvertCondition, f.Value[0], f.Value[0])
	case filter.ConditionDateBetween:
		if len(f.Value) < 2 {
			return ""
		}
		return dateRange(f.Attribute, f.InvertCondition, f.Value[0], f.Value[1])
	}

	if len(f.Value) < 1 {
		return ""
	}
	after := f.Condition == filter.ConditionDateAfter
	if f.InvertCondition {
		after = !after
	}
	if after {
		return f.Attribute + " AFTER " + datePart(f.Value[0]) + endOfDay
	}
	return f.Attribute + " BEFORE " + datePart(f.Value[0]) + startOfDay
}

// dateRange covers whole days from the start of from to the end of until.
func dateRange(attr string, invert bool, from, until string) string {
	return attr + not(invert) + " BETWEEN " + datePart(from) + startOfDay + " AND " + datePart(until) + endOfDay
}

// datePart strips a time component from a date or timestamp value.
func datePart(v string) string {
	if i := strings.IndexByte(v, 'T'); i >= 0 {
		return v[:i]
	}
	return v
}

func booleanExpression(f *filter.AttributeFilter) string {
	var value bool
	switch f.Condition {
	case filter.ConditionBooleanTrue:
		value = true
	case filter.ConditionBooleanFalse:
	default:
		return ""
	}
	if value != f.InvertCondition {
		return f.Attribute + " = true"
	}
	return f.Attribute + " = false"
}
