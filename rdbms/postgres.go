package rdbms

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // postgres driver for database/sql.
	"github.com/pkg/errors"
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/logger"
)

// TableNotFoundError denotes a table absent from the source's table listing.
type TableNotFoundError struct {
	Table     string
	Available []string
}

func (e TableNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found in the database; available tables: %v", e.Table, strings.Join(e.Available, ", "))
}

// Connector wraps a Go SQL connection to a postgres database and converts
// tables to and from batches.
type Connector struct {
	log logger.Logger
	db  *sql.DB
	dsn string
}

// NewPostgresConnector opens a connection using the supplied details and
// verifies it with a ping. Connection failure is a source-unavailable
// condition and is fatal to the caller's run.
func NewPostgresConnector(log logger.Logger, c *ConnectionDetails) (*Connector, error) {
	dsn, err := PostgresDsn(c)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening connection %q", c.LogicalName)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "source unavailable: connection %q failed ping", c.LogicalName)
	}
	log.Debug("connection ", c.LogicalName, " opened")
	return &Connector{log: log, db: db, dsn: dsn}, nil
}

// DB exposes the underlying Go SQL handle for collaborators like the table
// writer that share this connection.
func (c *Connector) DB() *sql.DB {
	return c.db
}

func (c *Connector) Close() {
	_ = c.db.Close()
}

// ListTables returns the table names in the public schema.
func (c *Connector) ListTables() ([]string, error) {
	rows, err := c.db.Query(`select table_name from information_schema.tables where table_schema = 'public' order by table_name`)
	if err != nil {
		return nil, errors.Wrap(err, "error listing tables")
	}
	defer func() { _ = rows.Close() }()
	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "error scanning table name")
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// FetchTable reads a whole table into a batch. The table must appear in the
// source's table listing else a TableNotFoundError is returned.
func (c *Connector) FetchTable(name string) (*batch.Batch, error) {
	tables, err := c.ListTables()
	if err != nil {
		return nil, err
	}
	found := false
	for _, t := range tables {
		if t == name {
			found = true
			break
		}
	}
	if !found {
		return nil, TableNotFoundError{Table: name, Available: tables}
	}
	rows, err := c.db.Query(fmt.Sprintf(`select * from %q`, name))
	if err != nil {
		return nil, errors.Wrapf(err, "error reading table %q", name)
	}
	defer func() { _ = rows.Close() }()
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching columns of table %q", name)
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrapf(err, "error fetching column types of table %q", name)
	}
	values := make([][]interface{}, len(cols)) // one value slice per column.
	scan := make([]interface{}, len(cols))
	for rows.Next() {
		row := make([]interface{}, len(cols))
		for i := range row {
			scan[i] = &row[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, errors.Wrapf(err, "error scanning row of table %q", name)
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok { // the driver returns text columns as []byte.
				values[i] = append(values[i], string(b))
			} else {
				values[i] = append(values[i], v)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "error iterating table %q", name)
	}
	b := batch.New()
	for i, colName := range cols {
		if values[i] == nil { // if the table is empty...
			values[i] = make([]interface{}, 0)
		}
		if err := b.AddColumn(colName, kindForDatabaseType(colTypes[i].DatabaseTypeName()), values[i]); err != nil {
			return nil, errors.Wrapf(err, "error building batch for table %q", name)
		}
	}
	c.log.Info("fetched table ", name, " with ", b.NumRows(), " rows")
	return b, nil
}

// kindForDatabaseType maps a postgres type name to a batch column kind.
func kindForDatabaseType(dbType string) batch.Kind {
	switch strings.ToUpper(dbType) {
	case "INT2", "INT4", "INT8", "BIGINT", "INTEGER", "SMALLINT":
		return batch.KindInt
	case "FLOAT4", "FLOAT8", "NUMERIC", "DECIMAL", "DOUBLE PRECISION", "REAL":
		return batch.KindFloat
	case "DATE", "TIMESTAMP", "TIMESTAMPTZ":
		return batch.KindDate
	case "BOOL", "BOOLEAN":
		return batch.KindBool
	case "TEXT", "VARCHAR", "BPCHAR", "CHAR", "UUID":
		return batch.KindString
	default:
		return batch.KindRaw
	}
}
