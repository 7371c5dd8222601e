package clean

import (
	"github.com/starpipe/starpipe/batch"
)

// The entity pipelines below are configuration, not behaviour: each is an
// ordered list of rules for one warehouse entity. Column names follow the
// legacy source systems.

// CardPipeline cleans card details extracted from the card PDF.
// Rows with any null are dropped, card numbers are deduplicated keeping the
// first occurrence and must be entirely decimal digits, and rows whose
// payment-confirmation date fails to parse are dropped.
func CardPipeline() Pipeline {
	return Pipeline{
		Name: "card-details",
		Rules: []Rule{
			NullNormalize{},
			DropAnyNull{},
			Dedupe{Column: "card_number"},
			Step{Column: "card_number", Fn: RequireDigits(), OnFailure: DropRow, Kind: batch.KindString, StepName: "require-digits-card_number"},
			Step{Column: "date_payment_confirmed", Fn: ParseDate(), OnFailure: DropRow, Kind: batch.KindDate},
		},
	}
}

// StorePipeline cleans store details fetched from the stores API.
// No rows are dropped; unparseable dates and coordinates persist as nulls.
func StorePipeline() Pipeline {
	return Pipeline{
		Name: "store-details",
		Rules: []Rule{
			NullNormalize{},
			Step{Column: "opening_date", Fn: ParseDate(), OnFailure: CoerceToAbsent, Kind: batch.KindDate},
			Step{Column: "staff_number", Fn: DigitsOnly(), OnFailure: CoerceToAbsent, Kind: batch.KindString},
			Step{Column: "longitude", Fn: ParseFloat(), OnFailure: CoerceToAbsent, Kind: batch.KindFloat},
			Step{Column: "latitude", Fn: ParseFloat(), OnFailure: CoerceToAbsent, Kind: batch.KindFloat},
		},
	}
}

// UserPipeline cleans the legacy users table. No rows are dropped.
func UserPipeline() Pipeline {
	return Pipeline{
		Name: "users",
		Rules: []Rule{
			NullNormalize{},
			Step{Column: "first_name", Fn: TrimString(), OnFailure: CoerceToAbsent, Kind: batch.KindString},
			Step{Column: "last_name", Fn: TrimString(), OnFailure: CoerceToAbsent, Kind: batch.KindString},
			Step{Column: "date_of_birth", Fn: ParseDate(), OnFailure: CoerceToAbsent, Kind: batch.KindDate},
			Step{Column: "join_date", Fn: ParseDate(), OnFailure: CoerceToAbsent, Kind: batch.KindDate},
			Step{Column: "country_code", Fn: ToString(), OnFailure: CoerceToAbsent, Kind: batch.KindString},
			Step{Column: "user_uuid", Fn: ToString(), OnFailure: CoerceToAbsent, Kind: batch.KindString},
		},
	}
}

// ProductPipeline cleans the products CSV: weight specs are converted to
// kilograms, prices lose their currency symbol and become numeric, and a
// categorical weight class is derived from the kilogram weight.
//
// The weight column is required; a batch without it aborts the run.
// strictWeights selects the failure policy for unrecognised weight grammars:
// false (the default) coerces them to the absent value, true aborts the run.
func ProductPipeline(strictWeights bool) Pipeline {
	weightPolicy := CoerceToAbsent
	if strictWeights {
		weightPolicy = Fatal
	}
	return Pipeline{
		Name: "products",
		Rules: []Rule{
			NullNormalize{},
			Step{Column: "weight", Fn: WeightToKg(), OnFailure: weightPolicy, Required: true, Kind: batch.KindFloat},
			Step{Column: "product_price", Fn: StripCurrency(), OnFailure: CoerceToAbsent, StepName: "strip-currency-product_price"},
			Step{Column: "product_price", Fn: ParseFloat(), OnFailure: CoerceToAbsent, Kind: batch.KindFloat, StepName: "parse-float-product_price"},
			Derive{Source: "weight", Target: "weight_class", Fn: WeightClass(), Kind: batch.KindString},
		},
	}
}

// OrdersPipeline removes columns the fact table does not carry.
// Absence of any of them is not an error.
func OrdersPipeline() Pipeline {
	return Pipeline{
		Name: "orders",
		Rules: []Rule{
			DropColumns{Columns: []string{"first_name", "last_name", "1"}},
		},
	}
}

// OrderTimePipeline cleans the order-time dataset the strict way: rows with
// any null are dropped, day/month/year are coerced to numeric and rows where
// any of them failed coercion are dropped.
func OrderTimePipeline() Pipeline {
	return Pipeline{
		Name: "order-time",
		Rules: []Rule{
			NullNormalize{},
			DropAnyNull{},
			Step{Column: "day", Fn: ParseInt(), OnFailure: CoerceToAbsent, Kind: batch.KindInt},
			Step{Column: "month", Fn: ParseInt(), OnFailure: CoerceToAbsent, Kind: batch.KindInt},
			Step{Column: "year", Fn: ParseInt(), OnFailure: CoerceToAbsent, Kind: batch.KindInt},
			DropAbsent{Columns: []string{"day", "month", "year"}},
		},
	}
}

// DateTimesPipeline cleans the date-times dimension the lenient way: the
// calendar columns are stringified and identifiers whose length is not
// exactly 36 characters become absent. No rows are dropped.
func DateTimesPipeline() Pipeline {
	return Pipeline{
		Name: "date-times",
		Rules: []Rule{
			NullNormalize{},
			Step{Column: "month", Fn: ToString(), OnFailure: CoerceToAbsent, Kind: batch.KindString},
			Step{Column: "year", Fn: ToString(), OnFailure: CoerceToAbsent, Kind: batch.KindString},
			Step{Column: "day", Fn: ToString(), OnFailure: CoerceToAbsent, Kind: batch.KindString},
			Step{Column: "time_period", Fn: ToString(), OnFailure: CoerceToAbsent, Kind: batch.KindString},
			Step{Column: "date_uuid", Fn: ExactLength(36), OnFailure: CoerceToAbsent, Kind: batch.KindString},
		},
	}
}
