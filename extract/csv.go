package extract

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
	"github.com/starpipe/starpipe/batch"
)

// CsvToBatch parses CSV data into a batch of raw string columns.
// The first record is the header; duplicate header names are an error since
// batch column names must be unique.
func CsvToBatch(r io.Reader) (*batch.Batch, error) {
	c := csv.NewReader(r)
	header, err := c.Read()
	if err == io.EOF {
		return batch.New(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "error reading CSV header")
	}
	values := make([][]interface{}, len(header))
	for {
		record, err := c.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading CSV record")
		}
		for i := range header {
			values[i] = append(values[i], record[i])
		}
	}
	b := batch.New()
	for i, name := range header {
		if values[i] == nil {
			values[i] = make([]interface{}, 0)
		}
		if err := b.AddColumn(name, batch.KindRaw, values[i]); err != nil {
			return nil, errors.Wrap(err, "error building batch from CSV")
		}
	}
	return b, nil
}
