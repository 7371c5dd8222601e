package clean

import (
	"testing"

	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/logger"
)

func TestNewJsonLogicFilterRejectsBadRule(t *testing.T) {
	if _, err := NewJsonLogicFilter(`{"bogusOp": 1}`); err == nil {
		t.Fatal("expected error for invalid rule")
	}
}

func TestJsonLogicFilter(t *testing.T) {
	log := logger.NewLogger("starpipe", "error", false)
	f, err := NewJsonLogicFilter(`{"==": [{"var": "country_code"}, "GB"]}`)
	if err != nil {
		t.Fatal("unexpected error building filter: ", err)
	}
	b := batch.New()
	_ = b.AddColumn("country_code", batch.KindRaw, []interface{}{"GB", "DE", "GB"})
	_ = b.AddColumn("first_name", batch.KindRaw, []interface{}{"a", "b", "c"})
	if err := f.Apply(log, b); err != nil {
		t.Fatal("unexpected error applying filter: ", err)
	}
	if b.NumRows() != 2 {
		t.Fatal("expected 2 matching rows; got ", b.NumRows())
	}
	if b.Cell("first_name", 1) != "c" {
		t.Fatal("row alignment broken by filter: ", b.Cell("first_name", 1))
	}
}
