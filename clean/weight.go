package clean

import (
	"regexp"
	"strconv"
	"strings"
)

// multiplierWeightRegexp matches the multi-pack form "<N> x <M><unit>",
// e.g. "12 x 100g" or "3 x 90 ml".
var multiplierWeightRegexp = regexp.MustCompile(`^(\d+)\s*x\s*(\d+(?:\.\d+)?)\s*(g|ml)$`)

// ParseWeightKg converts a free-text weight spec to kilograms.
// Recognised grammars, checked in this order:
//  1. multiplier form "<N> x <M><unit>" for unit g|ml -> N * M / 1000
//  2. suffix "kg" -> value as-is
//  3. suffix "ml" -> value / 1000 (density-equivalent to grams)
//  4. suffix "g"  -> value / 1000
//  5. suffix "l"  -> value as-is (litres assumed density 1)
//
// The suffix checks are ordered so that "kg" is consumed before "g" and "ml"
// before the bare "l" fallback; a litre value like "2l" must not be
// misclassified as millilitres.
func ParseWeightKg(spec string) (float64, error) {
	w := strings.ToLower(strings.TrimSpace(spec))
	if m := multiplierWeightRegexp.FindStringSubmatch(w); m != nil { // if this is the multi-pack form...
		n, err1 := strconv.ParseFloat(m[1], 64)
		v, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return 0, UnparseableValueError{Value: spec, Reason: "bad multiplier weight"}
		}
		return n * v / 1000, nil
	}
	parseNumber := func(s string) (float64, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, UnparseableValueError{Value: spec, Reason: "weight is not numeric"}
		}
		return f, nil
	}
	switch {
	case strings.HasSuffix(w, "kg"):
		return parseNumber(strings.TrimSuffix(w, "kg"))
	case strings.HasSuffix(w, "ml"):
		v, err := parseNumber(strings.TrimSuffix(w, "ml"))
		return v / 1000, err
	case strings.HasSuffix(w, "g"):
		v, err := parseNumber(strings.TrimSuffix(w, "g"))
		return v / 1000, err
	case strings.HasSuffix(w, "l"):
		return parseNumber(strings.TrimSuffix(w, "l"))
	}
	return 0, UnparseableValueError{Value: spec, Reason: "unrecognised weight format"}
}
