package clean

import (
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/constants"
	"github.com/starpipe/starpipe/helper"
)

// WeightClassForKg derives the categorical shipping class for a weight in
// kilograms. A weight exactly at a breakpoint belongs to the upper band.
func WeightClassForKg(kg float64) string {
	switch {
	case kg < 2:
		return constants.WeightClassLight
	case kg < 40:
		return constants.WeightClassMidSized
	case kg < 140:
		return constants.WeightClassHeavy
	default:
		return constants.WeightClassTruckRequired
	}
}

// WeightClass converts a numeric kilogram cell to its categorical label.
func WeightClass() CellFunc {
	return func(v interface{}) (interface{}, error) {
		if batch.IsAbsent(v) {
			return v, nil
		}
		kg, ok := helper.ValueToFloat(v)
		if !ok {
			return nil, UnparseableValueError{Value: helper.ValueToString(v), Reason: "weight is not numeric"}
		}
		return WeightClassForKg(kg), nil
	}
}
