package clean

import "fmt"

// MissingColumnError denotes a required column absent from the batch.
// It aborts the pipeline run for that entity; the engine wraps it with the
// pipeline and rule names.
type MissingColumnError struct {
	Column string
}

func (e MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q is missing from the batch", e.Column)
}

// UnparseableValueError denotes a single cell that failed its grammar.
// Whether this is fatal depends on the failure policy of the step that
// produced it.
type UnparseableValueError struct {
	Column string
	Value  string
	Reason string
}

func (e UnparseableValueError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("unparseable value %q in column %q: %v", e.Value, e.Column, e.Reason)
	}
	return fmt.Sprintf("unparseable value %q: %v", e.Value, e.Reason)
}
