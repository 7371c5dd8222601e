// Package load writes batches to warehouse tables.
package load

import (
	"fmt"
	"strings"
	"time"

	om "github.com/cevaris/ordered_map"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/helper"
	"github.com/starpipe/starpipe/logger"
	"github.com/starpipe/starpipe/rdbms"
)

// Mode controls what Persist does when the target table already exists.
type Mode int

const (
	// ModeReplace drops and recreates the target table.
	ModeReplace Mode = iota
	// ModeAppend creates the table if missing and adds rows to it.
	ModeAppend
	// ModeFail aborts with a WriteConflictError if the table exists.
	ModeFail
)

func (m Mode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeAppend:
		return "append"
	case ModeFail:
		return "fail"
	default:
		return fmt.Sprintf("unknown mode %d", int(m))
	}
}

// ParseMode converts a mode flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "replace":
		return ModeReplace, nil
	case "append":
		return ModeAppend, nil
	case "fail":
		return ModeFail, nil
	default:
		return ModeReplace, errors.Errorf("unsupported write mode %q: expected replace, append or fail", s)
	}
}

// WriteConflictError is returned when mode fail finds the target table
// already present.
type WriteConflictError struct {
	Table string
}

func (e WriteConflictError) Error() string {
	return fmt.Sprintf("table %q already exists", e.Table)
}

// TableWriter persists batches to tables on one target database.
type TableWriter struct {
	log  logger.Logger
	conn *rdbms.Connector
}

func NewTableWriter(log logger.Logger, conn *rdbms.Connector) *TableWriter {
	return &TableWriter{log: log, conn: conn}
}

// Persist writes b to the named table per the given mode. All rows go in
// via COPY inside a single transaction so a failure part way through leaves
// nothing behind.
func (w *TableWriter) Persist(b *batch.Batch, table string, mode Mode) error {
	exists, err := w.tableExists(table)
	if err != nil {
		return err
	}
	switch mode {
	case ModeFail:
		if exists {
			return WriteConflictError{Table: table}
		}
	case ModeReplace:
		if exists {
			w.log.Debug("dropping table ", table)
			if _, err := w.conn.DB().Exec("DROP TABLE " + pq.QuoteIdentifier(table)); err != nil {
				return errors.Wrapf(err, "error dropping table %q", table)
			}
			exists = false
		}
	}
	if !exists {
		ddl := createTableSql(table, columnDefs(b))
		w.log.Debug("creating table: ", ddl)
		if _, err := w.conn.DB().Exec(ddl); err != nil {
			return errors.Wrapf(err, "error creating table %q", table)
		}
	}
	if err := w.copyRows(b, table); err != nil {
		return err
	}
	w.log.Info("persisted ", b.NumRows(), " rows to table ", table, " (mode ", mode, ")")
	return nil
}

func (w *TableWriter) tableExists(table string) (bool, error) {
	tables, err := w.conn.ListTables()
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		if t == table {
			return true, nil
		}
	}
	return false, nil
}

func (w *TableWriter) copyRows(b *batch.Batch, table string) error {
	tx, err := w.conn.DB().Begin()
	if err != nil {
		return errors.Wrapf(err, "error starting transaction for table %q", table)
	}
	names := b.ColumnNames()
	stmt, err := tx.Prepare(pq.CopyIn(table, names...))
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "error preparing bulk insert for table %q", table)
	}
	for rowIdx := 0; rowIdx < b.NumRows(); rowIdx++ {
		values := make([]interface{}, len(names))
		for i, name := range names {
			values[i] = copyValue(b.Cell(name, rowIdx))
		}
		if _, err := stmt.Exec(values...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return errors.Wrapf(err, "error buffering row %v for table %q", rowIdx, table)
		}
	}
	if _, err := stmt.Exec(); err != nil { // flush the COPY buffer...
		_ = stmt.Close()
		_ = tx.Rollback()
		return errors.Wrapf(err, "error flushing bulk insert for table %q", table)
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "error closing bulk insert for table %q", table)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "error committing rows to table %q", table)
	}
	return nil
}

// copyValue maps a cell to a driver value. Absent cells become SQL NULL;
// raw cells are rendered as their string form.
func copyValue(v interface{}) interface{} {
	if batch.IsAbsent(v) {
		return nil
	}
	switch v.(type) {
	case string, int64, float64, bool, time.Time:
		return v
	}
	return helper.ValueToString(v)
}

// columnDefs maps batch columns to SQL types, preserving column order.
func columnDefs(b *batch.Batch) *om.OrderedMap {
	defs := om.NewOrderedMap()
	for _, name := range b.ColumnNames() {
		col, _ := b.Column(name)
		defs.Set(name, sqlTypeForKind(col.Kind))
	}
	return defs
}

func createTableSql(table string, defs *om.OrderedMap) string {
	cols := make([]string, 0, defs.Len())
	iter := defs.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		cols = append(cols, fmt.Sprintf("%v %v", pq.QuoteIdentifier(kv.Key.(string)), kv.Value))
	}
	return fmt.Sprintf("CREATE TABLE %v (%v)", pq.QuoteIdentifier(table), strings.Join(cols, ", "))
}

func sqlTypeForKind(k batch.Kind) string {
	switch k {
	case batch.KindInt:
		return "bigint"
	case batch.KindFloat:
		return "double precision"
	case batch.KindDate:
		return "timestamp"
	case batch.KindBool:
		return "boolean"
	default: // string and raw columns land as text.
		return "text"
	}
}
