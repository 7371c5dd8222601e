package helper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/starpipe/starpipe/constants"
)

// ValueToString will convert an interface{} cell value to a string.
// Dates are rendered with a stable layout so string comparisons of the same
// value are repeatable across runs.
func ValueToString(input interface{}) (retval string) {
	switch v := input.(type) {
	case int, int16, int32, int64, int8, uint8:
		retval = fmt.Sprintf("%d", v)
	case string:
		retval = v
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32) // use 'f' to convert float to string without an exponent i.e. preserve all decimal points.
	case float64:
		retval = strconv.FormatFloat(v, 'f', -1, 64) // use 'f' to convert float to string without an exponent i.e. preserve all decimal points.
	case time.Time:
		retval = v.Format(constants.TimeFormatDateTime)
	case []uint8:
		retval = string(v)
	case bool:
		retval = fmt.Sprintf("%v", v)
	case nil:
		retval = ""
	default:
		retval = fmt.Sprintf("%v", v)
	}
	return
}

// ValueToFloat converts an interface{} cell value to a float64.
// The second return value is false if the value cannot represent a number.
func ValueToFloat(input interface{}) (float64, bool) {
	switch v := input.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case []uint8:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ValueToInt converts an interface{} cell value to an int64.
// The second return value is false if the value cannot represent an integer.
func ValueToInt(input interface{}) (int64, bool) {
	switch v := input.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) { // if there is no fractional part...
			return int64(v), true
		}
		return 0, false
	case []uint8:
		i, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// StringIsAllDigits reports whether s is non-empty and made of decimal digits only.
func StringIsAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
