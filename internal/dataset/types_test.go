package dataset_test

import (
	"testing"

	"marquee/internal/dataset"
)

func TestIsMissing(t *testing.T) {
	missing := []string{"", " ", "NA", "na", "NaN", "null", "NULL"}
	for _, cell := range missing {
		if !dataset.IsMissing(cell) {
			t.Fatalf("expected %q to be missing", cell)
		}
	}
	present := []string{"0", "none", "N/A movie", "2016-05-01"}
	for _, cell := range present {
		if dataset.IsMissing(cell) {
			t.Fatalf("expected %q to be present", cell)
		}
	}
}

func TestInferTypes(t *testing.T) {
	table := dataset.NewTable("budget", "release_date", "title", "empty")
	table.Rows = [][]string{
		{"11000000", "1979-05-25", "Alien", ""},
		{"", "1995-12-15", "Heat", "NA"},
		{"63000000", "1999-03-31", "The Matrix", "null"},
	}

	dataset.InferTypes(table)

	want := map[string]dataset.ColumnType{
		"budget":       dataset.TypeNumeric,
		"release_date": dataset.TypeDate,
		"title":        dataset.TypeCategorical,
		"empty":        dataset.TypeCategorical,
	}
	for _, col := range table.Columns {
		if col.Type != want[col.Name] {
			t.Fatalf("column %q inferred as %q, want %q", col.Name, col.Type, want[col.Name])
		}
	}
}

func TestInferTypesNumericBeatsDate(t *testing.T) {
	table := dataset.NewTable("year")
	table.Rows = [][]string{{"1999"}, {"2004"}}
	dataset.InferTypes(table)
	if table.Columns[0].Type != dataset.TypeNumeric {
		t.Fatalf("pure-number column should infer numeric, got %q", table.Columns[0].Type)
	}
}

func TestNumericValues(t *testing.T) {
	table := dataset.NewTable("runtime")
	table.Rows = [][]string{{"117"}, {""}, {"136"}}
	dataset.InferTypes(table)

	values, present, err := table.NumericValues(0)
	if err != nil {
		t.Fatalf("NumericValues returned error: %v", err)
	}
	if !present[0] || present[1] || !present[2] {
		t.Fatalf("unexpected presence mask %v", present)
	}
	if values[0] != 117 || values[2] != 136 {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestNumericValuesRejectsGarbage(t *testing.T) {
	table := dataset.NewTable("runtime")
	table.Rows = [][]string{{"117"}, {"two hours"}}
	if _, _, err := table.NumericValues(0); err == nil {
		t.Fatal("expected parse error for non-numeric cell")
	}
}

func TestFilterRowsAndClone(t *testing.T) {
	table := dataset.NewTable("id", "title")
	table.Rows = [][]string{{"1", "Alien"}, {"2", "Heat"}, {"3", "Tenet"}}

	clone := table.Clone()
	table.FilterRows([]bool{true, false, true})

	if table.RowCount() != 2 {
		t.Fatalf("expected 2 rows after filter, got %d", table.RowCount())
	}
	if clone.RowCount() != 3 {
		t.Fatalf("clone should be unaffected, got %d rows", clone.RowCount())
	}
	if table.Rows[1][1] != "Tenet" {
		t.Fatalf("filter kept wrong rows: %v", table.Rows)
	}
}

func TestRowKeyDistinguishesRows(t *testing.T) {
	table := dataset.NewTable("a", "b")
	table.Rows = [][]string{{"x", "yz"}, {"xy", "z"}, {"x", "yz"}}

	if table.RowKey(0) == table.RowKey(1) {
		t.Fatal("cell boundaries must affect the key")
	}
	if table.RowKey(0) != table.RowKey(2) {
		t.Fatal("identical rows must share a key")
	}
}
