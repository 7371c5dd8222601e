package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/ledongthuc/pdf"
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/logger"
)

// cellGap is the horizontal whitespace (in text-space units) that separates
// one table cell from the next. Gaps inside a cell are word spacing and stay
// well below this.
const cellGap = 10.0

// FetchPdfTables reads every page of the document at locator (a local path
// or an http(s) URL), treats each page as a table and concatenates the rows
// into one batch. The first row of the first page is the header; repeats of
// the header on later pages are dropped.
func FetchPdfTables(log logger.Logger, locator string) (*batch.Batch, error) {
	r, cleanup, err := openPdf(locator)
	if err != nil {
		return nil, SourceUnavailableError{Locator: locator, Err: err}
	}
	defer cleanup()
	var header []string
	var rows [][]string
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		p := r.Page(pageNum)
		if p.V.IsNull() {
			continue
		}
		pageRows, err := p.GetTextByRow()
		if err != nil {
			return nil, SourceUnavailableError{Locator: locator, Err: fmt.Errorf("page %v: %v", pageNum, err)}
		}
		for _, row := range pageRows {
			cells := splitRowCells(row.Content)
			if len(cells) == 0 {
				continue
			}
			if header == nil {
				header = cells
				continue
			}
			if equalCells(cells, header) { // repeated header on a later page...
				continue
			}
			rows = append(rows, fitToHeader(log, cells, len(header)))
		}
	}
	if header == nil {
		return nil, SourceUnavailableError{Locator: locator, Err: fmt.Errorf("document contains no table rows")}
	}
	b := batch.New()
	for i, name := range header {
		values := make([]interface{}, len(rows))
		for j, row := range rows {
			if row[i] != "" {
				values[j] = row[i]
			}
		}
		if err := b.AddColumn(name, batch.KindRaw, values); err != nil {
			return nil, SourceUnavailableError{Locator: locator, Err: err}
		}
	}
	log.Info("fetched ", b.NumRows(), " rows from ", locator)
	return b, nil
}

func openPdf(locator string) (*pdf.Reader, func(), error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		resp, err := resty.New().R().Get(locator)
		if err != nil {
			return nil, nil, err
		}
		if resp.IsError() {
			return nil, nil, fmt.Errorf("HTTP status %v", resp.StatusCode())
		}
		data := resp.Body()
		r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, nil, err
		}
		return r, func() {}, nil
	}
	f, r, err := pdf.Open(locator)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { _ = f.Close() }, nil
}

// splitRowCells groups the text fragments of one visual row into cells,
// starting a new cell wherever the horizontal gap exceeds cellGap.
func splitRowCells(texts pdf.TextHorizontal) []string {
	sort.Sort(texts)
	cells := make([]string, 0)
	var cell strings.Builder
	lastEnd := 0.0
	for i, t := range texts {
		if i > 0 && t.X-lastEnd > cellGap {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		}
		cell.WriteString(t.S)
		lastEnd = t.X + t.W
	}
	if cell.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cell.String()))
	}
	return cells
}

func fitToHeader(log logger.Logger, cells []string, width int) []string {
	if len(cells) == width {
		return cells
	}
	if len(cells) > width {
		log.Debug("row has ", len(cells), " cells, truncating to ", width)
		return cells[:width]
	}
	padded := make([]string, width)
	copy(padded, cells)
	return padded
}

func equalCells(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
