package clean

import (
	"strings"
	"time"

	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/helper"
)

// CellFunc transforms a single cell value. Returning an error means the cell
// failed its grammar; the owning step's failure policy decides what happens
// to the row. Absent cells (nil) pass through untouched unless stated
// otherwise, so pipelines stay idempotent on their own output.
type CellFunc func(v interface{}) (interface{}, error)

// dateLayouts is the best-effort date grammar. The legacy sources mix ISO
// dates with several free-text forms, e.g. "2006 September 03" and
// "July 1973 14".
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006 January 02",
	"January 2006 02",
	"02 January 2006",
	time.RFC3339,
}

// TrimString converts the cell to a string with surrounding space removed.
func TrimString() CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		return strings.TrimSpace(helper.ValueToString(v)), nil
	}
}

// ToString converts the cell to its canonical string form.
func ToString() CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		return helper.ValueToString(v), nil
	}
}

// DigitsOnly strips every character that is not a decimal digit.
// A value with no digits at all becomes an empty string, not an absent value;
// callers decide whether to re-validate afterwards.
func DigitsOnly() CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		s := helper.ValueToString(v)
		b := strings.Builder{}
		for _, r := range s {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String(), nil
	}
}

// RequireDigits passes the cell through only if it consists entirely of
// decimal digits; anything else, including an absent cell, is an error.
func RequireDigits() CellFunc {
	return func(v interface{}) (interface{}, error) {
		s := helper.ValueToString(v)
		if !helper.StringIsAllDigits(s) {
			return nil, UnparseableValueError{Value: s, Reason: "expected decimal digits only"}
		}
		return s, nil
	}
}

// ParseDate parses the cell against the best-effort date grammar.
// Already-parsed time.Time values pass through so re-running a pipeline on
// its own output is stable.
func ParseDate() CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		if t, ok := v.(time.Time); ok { // if the cell is already a date...
			return t, nil
		}
		s := strings.TrimSpace(helper.ValueToString(v))
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, UnparseableValueError{Value: s, Reason: "no date layout matched"}
	}
}

// ParseFloat coerces the cell to a float64.
func ParseFloat() CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		f, ok := helper.ValueToFloat(v)
		if !ok {
			return nil, UnparseableValueError{Value: helper.ValueToString(v), Reason: "not a number"}
		}
		return f, nil
	}
}

// ParseInt coerces the cell to an int64.
func ParseInt() CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		i, ok := helper.ValueToInt(v)
		if !ok {
			return nil, UnparseableValueError{Value: helper.ValueToString(v), Reason: "not an integer"}
		}
		return i, nil
	}
}

// StripCurrency removes leading currency symbols from the cell.
func StripCurrency() CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		s := strings.TrimSpace(helper.ValueToString(v))
		s = strings.TrimLeft(s, "£$€ ")
		return s, nil
	}
}

// WeightToKg parses a weight spec string to kilograms.
// Already-parsed numeric values pass through unchanged.
func WeightToKg() CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		if f, ok := v.(float64); ok { // if the cell is already in kilograms...
			return f, nil
		}
		kg, err := ParseWeightKg(helper.ValueToString(v))
		if err != nil {
			return nil, err
		}
		return kg, nil
	}
}

// ExactLength passes the cell through only if its string form has exactly n
// characters; the value itself is preserved verbatim.
func ExactLength(n int) CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		s := helper.ValueToString(v)
		if len(s) != n {
			return nil, UnparseableValueError{Value: s, Reason: "unexpected identifier length"}
		}
		return s, nil
	}
}
