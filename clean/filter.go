package clean

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/logger"
)

// JsonLogicFilter keeps only the rows for which the JSON Logic rule returns
// true. The rule is applied to each row marshalled as a JSON object keyed by
// column name. None of the stock entity pipelines use this; it exists so ad
// hoc row predicates can be expressed declaratively without a new rule type.
type JsonLogicFilter struct {
	rule string
}

// NewJsonLogicFilter validates the rule and returns the filter.
func NewJsonLogicFilter(rule string) (*JsonLogicFilter, error) {
	if !jsonlogic.IsValid(strings.NewReader(rule)) {
		return nil, fmt.Errorf("invalid JSON Logic rule: %v", rule)
	}
	return &JsonLogicFilter{rule: rule}, nil
}

func (r *JsonLogicFilter) Name() string { return "jsonlogic-filter" }

func (r *JsonLogicFilter) Apply(log logger.Logger, b *batch.Batch) error {
	var applyErr error
	var result bytes.Buffer
	b.FilterRows(func(row int) bool {
		if applyErr != nil { // if a prior row failed, keep everything; the error aborts the run anyway.
			return true
		}
		keep, err := r.rowMatches(b.Row(row), &result)
		if err != nil {
			applyErr = err
			return true
		}
		return keep
	})
	return applyErr
}

// rowMatches marshals the row to JSON and applies the rule to it.
func (r *JsonLogicFilter) rowMatches(row map[string]interface{}, result *bytes.Buffer) (bool, error) {
	jsonData, err := json.Marshal(row)
	if err != nil {
		return false, fmt.Errorf("error marshalling row before applying JSON logic: %v", err)
	}
	result.Reset()
	if err := jsonlogic.Apply(strings.NewReader(r.rule), bytes.NewReader(jsonData), result); err != nil {
		return false, fmt.Errorf("error applying JSON logic: %v", err)
	}
	return strings.TrimSpace(result.String()) == "true", nil
}
