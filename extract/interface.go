// Package extract converts external sources (relational tables, PDF
// documents, S3 objects, JSON endpoints and a paginated REST API) into
// in-memory batches. Acquirers perform I/O only; all cleaning policy lives
// in package clean.
package extract

import (
	"fmt"

	"github.com/starpipe/starpipe/batch"
)

// TableSource is the relational acquirer contract, implemented by
// rdbms.Connector.
type TableSource interface {
	ListTables() ([]string, error)
	FetchTable(name string) (*batch.Batch, error)
	Close()
}

// SourceUnavailableError denotes an acquisition I/O or parse failure.
// It is fatal for single-shot fetches; the paginated fetch records failures
// per unit instead.
type SourceUnavailableError struct {
	Locator string
	Err     error
}

func (e SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", e.Locator, e.Err)
}

func (e SourceUnavailableError) Unwrap() error {
	return e.Err
}

// UnitError records the failure of a single unit of a paginated fetch.
type UnitError struct {
	Unit int
	Err  error
}

func (e UnitError) Error() string {
	return fmt.Sprintf("unit %v: %v", e.Unit, e.Err)
}

func (e UnitError) Unwrap() error {
	return e.Err
}
