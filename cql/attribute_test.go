package cql

import (
	"strings"
	"testing"

	"github.com/hugr-lab/layerfilter/filter"
)

func TestCompileAttribute(t *testing.T) {
	tests := []struct {
		name   string
		filter *filter.AttributeFilter
		invert bool
		want   string
	}{
		// Numeric
		{"number equals", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionNumberEquals, "5"), false, "(n = 5)"},
		{"number equals inverted", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionNumberEquals, "5"), true, "(n <> 5)"},
		{"number not equals inverted", attr("f", "n", filter.AttributeTypeDouble, filter.ConditionNumberNotEquals, "5"), true, "(n = 5)"},
		{"larger than", attr("f", "n", filter.AttributeTypeDouble, filter.ConditionNumberLargerThan, "1.5"), false, "(n > 1.5)"},
		{"larger than inverted", attr("f", "n", filter.AttributeTypeDouble, filter.ConditionNumberLargerThan, "1.5"), true, "(n <= 1.5)"},
		{"smaller equals inverted", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionNumberSmallerEqualsThan, "2"), true, "(n > 2)"},
		{"smaller than inverted", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionNumberSmallerThan, "2"), true, "(n >= 2)"},
		{"larger equals inverted", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionNumberLargerEqualsThan, "2"), true, "(n < 2)"},
		{"number between", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionNumberBetween, "1", "9"), false, "(n BETWEEN 1 AND 9)"},
		{"number between inverted", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionNumberBetween, "1", "9"), true, "(n NOT BETWEEN 1 AND 9)"},
		{"number with string condition", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionStringLike, "1"), false, ""},
		{"number missing value", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionNumberEquals), false, ""},

		// Any type
		{"null", attr("f", "n", filter.AttributeTypeString, filter.ConditionNull), false, "(n IS NULL)"},
		{"not null", attr("f", "n", filter.AttributeTypeDate, filter.ConditionNull), true, "(n IS NOT NULL)"},
		{"unique strings", attr("f", "s", filter.AttributeTypeString, filter.ConditionUniqueValues, "a", "b'c"), false, "(s IN ('a','b''c'))"},
		{"unique numbers inverted", attr("f", "n", filter.AttributeTypeInteger, filter.ConditionUniqueValues, "1", "2"), true, "(n NOT IN (1,2))"},
		{"unique dates", attr("f", "d", filter.AttributeTypeDate, filter.ConditionUniqueValues, "2024-01-01"), false, "(d IN ('2024-01-01'))"},
		{"unique booleans", attr("f", "b", filter.AttributeTypeBoolean, filter.ConditionUniqueValues, "true"), false, "(b IN (true))"},
		{"unique empty", attr("f", "s", filter.AttributeTypeString, filter.ConditionUniqueValues), false, ""},

		// String
		{"string equals", attr("f", "s", filter.AttributeTypeString, filter.ConditionStringEquals, "v"), false, "(s ILIKE 'v')"},
		{"string like", attr("f", "s", filter.AttributeTypeString, filter.ConditionStringLike, "v"), false, "(s ILIKE '%v%')"},
		{"string starts with", attr("f", "s", filter.AttributeTypeString, filter.ConditionStringStartsWith, "v"), false, "(s ILIKE 'v%')"},
		{"string ends with inverted", attr("f", "s", filter.AttributeTypeString, filter.ConditionStringEndsWith, "v"), true, "(s NOT ILIKE '%v')"},
		{"string with numeric condition", attr("f", "s", filter.AttributeTypeString, filter.ConditionNumberEquals, "v"), false, ""},

		// Date
		{"date on", attr("f", "d", filter.AttributeTypeDate, filter.ConditionDateOn, "2024-05-01"), false,
			"(d BETWEEN 2024-05-01T00:00:00Z AND 2024-05-01T23:59:59Z)"},
		{"date on inverted", attr("f", "d", filter.AttributeTypeDate, filter.ConditionDateOn, "2024-05-01"), true,
			"(d NOT BETWEEN 2024-05-01T00:00:00Z AND 2024-05-01T23:59:59Z)"},
		{"date between", attr("f", "d", filter.AttributeTypeTimestamp, filter.ConditionDateBetween, "2024-01-01", "2024-12-31"), false,
			"(d BETWEEN 2024-01-01T00:00:00Z AND 2024-12-31T23:59:59Z)"},
		{"timestamp value truncated", attr("f", "d", filter.AttributeTypeTimestamp, filter.ConditionDateOn, "2024-05-01T10:30:00Z"), false,
			"(d BETWEEN 2024-05-01T00:00:00Z AND 2024-05-01T23:59:59Z)"},
		{"timestamp after compares by day", attr("f", "d", filter.AttributeTypeTimestamp, filter.ConditionDateAfter, "2024-05-01T10:30:00Z"), false, "(d AFTER 2024-05-01T23:59:59Z)"},
		{"date after", attr("f", "d", filter.AttributeTypeDate, filter.ConditionDateAfter, "2024-05-01"), false, "(d AFTER 2024-05-01T23:59:59Z)"},
		{"date after inverted", attr("f", "d", filter.AttributeTypeDate, filter.ConditionDateAfter, "2024-05-01"), true, "(d BEFORE 2024-05-01T00:00:00Z)"},
		{"date before", attr("f", "d", filter.AttributeTypeDate, filter.ConditionDateBefore, "2024-05-01"), false, "(d BEFORE 2024-05-01T00:00:00Z)"},
		{"date before inverted", attr("f", "d", filter.AttributeTypeDate, filter.ConditionDateBefore, "2024-05-01"), true, "(d AFTER 2024-05-01T23:59:59Z)"},
		{"date other condition", attr("f", "d", filter.AttributeTypeDate, filter.ConditionNumberEquals, "2024-05-01"), false, "(d BEFORE 2024-05-01T00:00:00Z)"},
		{"date other condition inverted", attr("f", "d", filter.AttributeTypeDate, filter.ConditionNumberEquals, "2024-05-01"), true, "(d AFTER 2024-05-01T23:59:59Z)"},
		{"date between missing value", attr("f", "d", filter.AttributeTypeDate, filter.ConditionDateBetween, "2024-05-01"), false, ""},

		// Boolean
		{"boolean true", attr("f", "b", filter.AttributeTypeBoolean, filter.ConditionBooleanTrue), false, "(b = true)"},
		{"boolean true inverted", attr("f", "b", filter.AttributeTypeBoolean, filter.ConditionBooleanTrue), true, "(b = false)"},
		{"boolean false", attr("f", "b", filter.AttributeTypeBoolean, filter.ConditionBooleanFalse), false, "(b = false)"},
		{"boolean false inverted", attr("f", "b", filter.AttributeTypeBoolean, filter.ConditionBooleanFalse), true, "(b = true)"},
		{"boolean other condition", attr("f", "b", filter.AttributeTypeBoolean, filter.ConditionStringEquals, "x"), false, ""},

		// Degenerate
		{"unknown type", attr("f", "x", filter.AttributeType("BLOB"), filter.ConditionNumberEquals, "1"), false, ""},
		{"missing attribute", attr("f", "", filter.AttributeTypeInteger, filter.ConditionNumberEquals, "1"), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.InvertCondition = tt.invert
			if got := compileAttribute(tt.filter); got != tt.want {
				t.Errorf("expected '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func TestCaseSensitiveUsesLike(t *testing.T) {
	f := attr("f", "s", filter.AttributeTypeString, filter.ConditionStringStartsWith, "Ab")
	f.CaseSensitive = true
	if got := compileAttribute(f); got != "(s LIKE 'Ab%')" {
		t.Errorf("expected '(s LIKE 'Ab%%')', got '%s'", got)
	}
}

func TestStringEqualsQuotingRoundTrip(t *testing.T) {
	values := []string{"plain", "O'Brien", "''", "it's 'quoted'", "", "trailing'"}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			f := attr("f", "s", filter.AttributeTypeString, filter.ConditionStringEquals, v)
			got := compileAttribute(f)

			prefix := "(s ILIKE '"
			if !strings.HasPrefix(got, prefix) || !strings.HasSuffix(got, "')") {
				t.Fatalf("unexpected predicate '%s'", got)
			}
			literal := strings.TrimSuffix(strings.TrimPrefix(got, prefix), "')")
			if strings.Count(literal, "'")%2 != 0 {
				t.Errorf("expected doubled quotes in '%s'", literal)
			}
			if back := strings.ReplaceAll(literal, "''", "'"); back != v {
				t.Errorf("expected '%s', got '%s'", v, back)
			}
		})
	}
}
