package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/logger"
)

// FetchJsonDocument downloads a JSON document over HTTP and decodes it into
// a batch. Both layouts produced by common exporters are supported:
//
//	records:  [ {"col": value, ...}, ... ]
//	columns:  { "col": {"0": value, "1": value, ...}, ... }
func FetchJsonDocument(log logger.Logger, client *resty.Client, url string) (*batch.Batch, error) {
	if client == nil {
		client = resty.New()
	}
	log.Debug("fetching JSON document ", url)
	resp, err := client.R().Get(url)
	if err != nil {
		return nil, SourceUnavailableError{Locator: url, Err: err}
	}
	if resp.IsError() {
		return nil, SourceUnavailableError{Locator: url, Err: fmt.Errorf("HTTP status %v", resp.StatusCode())}
	}
	b, err := DecodeJson(resp.Body())
	if err != nil {
		return nil, SourceUnavailableError{Locator: url, Err: err}
	}
	log.Info("fetched ", b.NumRows(), " rows from ", url)
	return b, nil
}

// DecodeJson decodes a records-oriented or column-oriented JSON document
// into a batch of raw columns.
func DecodeJson(data []byte) (*batch.Batch, error) {
	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err == nil {
		return recordsToBatch(records)
	}
	var columns map[string]map[string]interface{}
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, fmt.Errorf("document is neither records-oriented nor column-oriented JSON: %v", err)
	}
	return columnsToBatch(columns)
}

func recordsToBatch(records []map[string]interface{}) (*batch.Batch, error) {
	// Union of keys across all records, in first-seen order.
	names := make([]string, 0)
	seen := make(map[string]bool)
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	b := batch.New()
	for _, name := range names {
		values := make([]interface{}, len(records))
		for i, rec := range records {
			values[i] = rec[name] // absent keys stay nil.
		}
		if err := b.AddColumn(name, batch.KindRaw, values); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func columnsToBatch(columns map[string]map[string]interface{}) (*batch.Batch, error) {
	names := make([]string, 0, len(columns))
	numRows := 0
	for name, cells := range columns {
		names = append(names, name)
		if len(cells) > numRows {
			numRows = len(cells)
		}
	}
	sort.Strings(names)
	b := batch.New()
	for _, name := range names {
		values := make([]interface{}, numRows)
		for idx, v := range columns[name] {
			i, err := strconv.Atoi(idx)
			if err != nil || i < 0 || i >= numRows {
				return nil, fmt.Errorf("column %q has unusable row index %q", name, idx)
			}
			values[i] = v
		}
		if err := b.AddColumn(name, batch.KindRaw, values); err != nil {
			return nil, err
		}
	}
	return b, nil
}
