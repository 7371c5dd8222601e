package extract

import (
	"strings"
	"testing"
)

func TestCsvToBatch(t *testing.T) {
	in := strings.NewReader("product_name,product_price,weight\nSoap,£1.99,500g\nTowels,£12.50,1.4kg\n")
	b, err := CsvToBatch(in)
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if b.NumRows() != 2 || b.NumColumns() != 3 {
		t.Fatal("unexpected batch shape: ", b.NumRows(), b.NumColumns())
	}
	names := b.ColumnNames()
	if names[0] != "product_name" || names[2] != "weight" {
		t.Fatal("unexpected column order: ", names)
	}
	if b.Cell("weight", 1) != "1.4kg" {
		t.Fatal("unexpected cell value: ", b.Cell("weight", 1))
	}
}

func TestCsvToBatchEmpty(t *testing.T) {
	b, err := CsvToBatch(strings.NewReader(""))
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	if b.NumRows() != 0 || b.NumColumns() != 0 {
		t.Fatal("expected an empty batch")
	}
}

func TestCsvToBatchDuplicateHeader(t *testing.T) {
	if _, err := CsvToBatch(strings.NewReader("a,a\n1,2\n")); err == nil {
		t.Fatal("expected error for duplicate header names")
	}
}
