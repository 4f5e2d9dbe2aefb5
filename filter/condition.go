package filter

import (
	"errors"
	"fmt"
)

// Condition identifies how an AttributeFilter compares its attribute.
type Condition string

const (
	// Generic conditions, valid for every attribute type.
	ConditionNull         Condition = "NULL"
	ConditionUniqueValues Condition = "UNIQUE_VALUES"

	// String conditions
	ConditionStringEquals     Condition = "STRING_EQUALS"
	ConditionStringLike       Condition = "STRING_LIKE"
	ConditionStringStartsWith Condition = "STRING_STARTS_WITH"
	ConditionStringEndsWith   Condition = "STRING_ENDS_WITH"

	// Numeric conditions
	ConditionNumberEquals            Condition = "NUMBER_EQUALS"
	ConditionNumberNotEquals         Condition = "NUMBER_NOT_EQUALS"
	ConditionNumberLargerThan        Condition = "NUMBER_LARGER_THAN"
	ConditionNumberSmallerThan       Condition = "NUMBER_SMALLER_THAN"
	ConditionNumberLargerEqualsThan  Condition = "NUMBER_LARGER_EQUALS_THAN"
	ConditionNumberSmallerEqualsThan Condition = "NUMBER_SMALLER_EQUALS_THAN"
	ConditionNumberBetween           Condition = "NUMBER_BETWEEN"

	// Date and timestamp conditions
	ConditionDateOn      Condition = "DATE_ON"
	ConditionDateAfter   Condition = "DATE_AFTER"
	ConditionDateBefore  Condition = "DATE_BEFORE"
	ConditionDateBetween Condition = "DATE_BETWEEN"

	// Boolean conditions
	ConditionBooleanTrue  Condition = "BOOLEAN_TRUE"
	ConditionBooleanFalse Condition = "BOOLEAN_FALSE"
)

// Variadic marks conditions taking one or more values.
const Variadic = -1

// Arity is the number of values each condition requires.
var Arity = map[Condition]int{
	ConditionNull:                    0,
	ConditionUniqueValues:            Variadic,
	ConditionStringEquals:            1,
	ConditionStringLike:              1,
	ConditionStringStartsWith:        1,
	ConditionStringEndsWith:          1,
	ConditionNumberEquals:            1,
	ConditionNumberNotEquals:         1,
	ConditionNumberLargerThan:        1,
	ConditionNumberSmallerThan:       1,
	ConditionNumberLargerEqualsThan:  1,
	ConditionNumberSmallerEqualsThan: 1,
	ConditionNumberBetween:           2,
	ConditionDateOn:                  1,
	ConditionDateAfter:               1,
	ConditionDateBefore:              1,
	ConditionDateBetween:             2,
	ConditionBooleanTrue:             0,
	ConditionBooleanFalse:            0,
}

var (
	// ErrUnknownCondition indicates a condition missing from the Arity table.
	ErrUnknownCondition = errors.New("unknown condition")

	// ErrInvalidArity indicates a filter value count not matching its condition.
	ErrInvalidArity = errors.New("invalid number of values for condition")
)

// ValidateArity checks that the number of values of f matches its condition.
func ValidateArity(f *AttributeFilter) error {
	want, ok := Arity[f.Condition]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCondition, f.Condition)
	}
	got := len(f.Value)
	if want == Variadic {
		if got == 0 {
			return fmt.Errorf("%w: %s requires at least one value, has 0", ErrInvalidArity, f.Condition)
		}
		return nil
	}
	// Stale values left on zero-arity conditions are ignored.
	if want == 0 {
		return nil
	}
	if got != want {
		return fmt.Errorf("%w: %s requires %d values, has %d", ErrInvalidArity, f.Condition, want, got)
	}
	return nil
}

// ConditionsFor returns the conditions a filter on an attribute of type t can use.
func ConditionsFor(t AttributeType) []Condition {
	switch {
	case t == AttributeTypeString:
		return []Condition{
			ConditionStringEquals, ConditionStringLike,
			ConditionStringStartsWith, ConditionStringEndsWith,
			ConditionUniqueValues, ConditionNull,
		}
	case t.IsNumeric():
		return []Condition{
			ConditionNumberEquals, ConditionNumberNotEquals,
			ConditionNumberLargerThan, ConditionNumberSmallerThan,
			ConditionNumberLargerEqualsThan, ConditionNumberSmallerEqualsThan,
			ConditionNumberBetween, ConditionUniqueValues, ConditionNull,
		}
	case t.IsTemporal():
		return []Condition{
			ConditionDateOn, ConditionDateAfter, ConditionDateBefore, ConditionDateBetween,
			ConditionNull,
		}
	case t == AttributeTypeBoolean:
		return []Condition{ConditionBooleanTrue, ConditionBooleanFalse, ConditionNull}
	default:
		return []Condition{ConditionNull}
	}
}
