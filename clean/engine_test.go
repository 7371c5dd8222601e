package clean

import (
	"errors"
	"strings"
	"testing"

	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/logger"
	"github.com/starpipe/starpipe/stats"
)

func TestNullNormalize(t *testing.T) {
	log := logger.NewLogger("starpipe", "info", false)
	b := batch.New()
	_ = b.AddColumn("a", batch.KindRaw, []interface{}{"NULL", "", "x"})
	if err := (NullNormalize{}).Apply(log, b); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if !batch.IsAbsent(b.Cell("a", 0)) {
		t.Fatal("sentinel should become absent")
	}
	// The empty string is not the sentinel and must survive.
	if b.Cell("a", 1) != "" {
		t.Fatal("empty string should be preserved; got ", b.Cell("a", 1))
	}
	if b.Cell("a", 2) != "x" {
		t.Fatal("ordinary value should be preserved; got ", b.Cell("a", 2))
	}
}

func TestStepMissingColumn(t *testing.T) {
	log := logger.NewLogger("starpipe", "info", false)
	b := batch.New()
	_ = b.AddColumn("present", batch.KindRaw, []interface{}{"1"})

	// A missing optional column is skipped.
	s := Step{Column: "missing", Fn: ToString(), OnFailure: CoerceToAbsent}
	if err := s.Apply(log, b); err != nil {
		t.Fatal("optional missing column should be skipped; got ", err)
	}

	// A missing required column is fatal.
	s.Required = true
	err := s.Apply(log, b)
	var mc MissingColumnError
	if !errors.As(err, &mc) {
		t.Fatal("expected MissingColumnError; got ", err)
	}
	if mc.Column != "missing" || !strings.Contains(mc.Error(), `"missing"`) {
		t.Fatal("expected error to carry the column name; got ", mc.Error())
	}
}

func TestStepPolicies(t *testing.T) {
	log := logger.NewLogger("starpipe", "info", false)

	// CoerceToAbsent keeps the row and nils the cell.
	b := batch.New()
	_ = b.AddColumn("n", batch.KindRaw, []interface{}{"1", "junk"})
	s := Step{Column: "n", Fn: ParseFloat(), OnFailure: CoerceToAbsent, Kind: batch.KindFloat}
	if err := s.Apply(log, b); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if b.NumRows() != 2 || !batch.IsAbsent(b.Cell("n", 1)) {
		t.Fatal("expected coerced absent cell; got ", b.Cell("n", 1))
	}
	if col, _ := b.Column("n"); col.Kind != batch.KindFloat {
		t.Fatal("expected column kind to be set; got ", col.Kind)
	}

	// DropRow removes only the failing row.
	b = batch.New()
	_ = b.AddColumn("n", batch.KindRaw, []interface{}{"1", "junk", "3"})
	_ = b.AddColumn("other", batch.KindRaw, []interface{}{"a", "b", "c"})
	s = Step{Column: "n", Fn: ParseFloat(), OnFailure: DropRow}
	if err := s.Apply(log, b); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if b.NumRows() != 2 || b.Cell("other", 1) != "c" {
		t.Fatal("expected failing row to be dropped with alignment preserved")
	}

	// Fatal aborts.
	b = batch.New()
	_ = b.AddColumn("n", batch.KindRaw, []interface{}{"junk"})
	s = Step{Column: "n", Fn: ParseFloat(), OnFailure: Fatal}
	if err := s.Apply(log, b); err == nil {
		t.Fatal("expected fatal error")
	}
}

func TestEngineRunEmitsEvents(t *testing.T) {
	log := logger.NewLogger("starpipe", "info", false)
	w := stats.NewRunWatcher(log, "order-time")
	e := NewEngine(log, w)
	b := batch.New()
	_ = b.AddColumn("day", batch.KindRaw, []interface{}{"1", "NULL", "3"})
	_ = b.AddColumn("month", batch.KindRaw, []interface{}{"2", "2", "2"})
	_ = b.AddColumn("year", batch.KindRaw, []interface{}{"1999", "2000", "2001"})
	if err := e.Run(OrderTimePipeline(), b); err != nil {
		t.Fatal("unexpected error: ", err)
	}
	events := w.Events()
	if len(events) != len(OrderTimePipeline().Rules) {
		t.Fatal("expected one event per rule; got ", len(events))
	}
	if events[1].Rule != "drop-any-null" || events[1].RowsDropped != 1 {
		t.Fatal("unexpected drop-any-null event: ", events[1])
	}
}

func TestEngineRunWrapsRuleErrors(t *testing.T) {
	log := logger.NewLogger("starpipe", "info", false)
	e := NewEngine(log, nil)
	b := batch.New() // no weight column at all.
	_ = b.AddColumn("product_price", batch.KindRaw, []interface{}{"£1.00"})
	err := e.Run(ProductPipeline(false), b)
	var mc MissingColumnError
	if !errors.As(err, &mc) {
		t.Fatal("expected MissingColumnError for absent weight column; got ", err)
	}
	if mc.Column != "weight" {
		t.Fatal("unexpected column in error: ", mc.Column)
	}
	// The engine's wrap carries the pipeline name.
	if !strings.Contains(err.Error(), `pipeline "products"`) {
		t.Fatal("expected wrapped error to name the pipeline; got ", err.Error())
	}
}
