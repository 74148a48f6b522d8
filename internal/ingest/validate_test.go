package ingest_test

import (
	"errors"
	"testing"

	"marquee/internal/dataset"
	"marquee/internal/ingest"
	"marquee/internal/plan"
	"marquee/internal/services"
)

func moviesPlan() *plan.Plan {
	return &plan.Plan{
		Dataset: plan.Dataset{
			Label:    "movies",
			IDColumn: "id",
			Target:   "revenue",
			Required: []string{"budget"},
		},
		Ingest: plan.Ingest{BadRows: "drop"},
	}
}

func moviesTable(rows ...[]string) *dataset.Table {
	table := dataset.NewTable("id", "title", "budget", "revenue")
	table.Rows = append(table.Rows, rows...)
	return table
}

func TestValidateAcceptsWellFormedTable(t *testing.T) {
	table := moviesTable(
		[]string{"1", "Heat", "60000000", "187000000"},
		[]string{"2", "Ronin", "55000000", "70000000"},
	)

	result, err := ingest.Validate(table, nil, moviesPlan())
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if result.Profile.RowCount != 2 {
		t.Fatalf("profile row count = %d, want 2", result.Profile.RowCount)
	}
	if result.DroppedRows != 0 {
		t.Fatalf("dropped rows = %d, want 0", result.DroppedRows)
	}
	column, ok := result.Profile.Column("revenue")
	if !ok {
		t.Fatal("profile missing revenue column")
	}
	if column.Type != dataset.TypeNumeric {
		t.Fatalf("revenue profiled as %s, want numeric", column.Type)
	}
}

func TestValidateReportsMissingColumns(t *testing.T) {
	table := dataset.NewTable("id", "title")
	table.Rows = append(table.Rows, []string{"1", "Heat"})

	_, err := ingest.Validate(table, nil, moviesPlan())
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestValidateEmptyTable(t *testing.T) {
	_, err := ingest.Validate(moviesTable(), nil, moviesPlan())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateBadRowPolicyFail(t *testing.T) {
	p := moviesPlan()
	p.Ingest.BadRows = "fail"
	table := moviesTable([]string{"1", "Heat", "60000000", "187000000"})
	issues := []dataset.RowIssue{{Line: 3, Fields: 2, Detail: "expected 4 fields, found 2"}}

	_, err := ingest.Validate(table, issues, p)
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestValidateBadRowBudget(t *testing.T) {
	p := moviesPlan()
	p.Ingest.BadRowBudget = 1
	table := moviesTable([]string{"1", "Heat", "60000000", "187000000"})
	issues := []dataset.RowIssue{
		{Line: 3, Fields: 2, Detail: "expected 4 fields, found 2"},
		{Line: 5, Fields: 6, Detail: "expected 4 fields, found 6"},
	}

	if _, err := ingest.Validate(table, issues, p); !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error over budget, got %v", err)
	}

	p.Ingest.BadRowBudget = 2
	result, err := ingest.Validate(table, issues, p)
	if err != nil {
		t.Fatalf("within budget should pass: %v", err)
	}
	if result.DroppedRows != 2 {
		t.Fatalf("dropped rows = %d, want 2", result.DroppedRows)
	}
	if result.Profile.DroppedRows != 2 {
		t.Fatalf("profile dropped rows = %d, want 2", result.Profile.DroppedRows)
	}
}

func TestValidateTargetMustBeNumeric(t *testing.T) {
	table := moviesTable(
		[]string{"1", "Heat", "60000000", "unknown"},
		[]string{"2", "Ronin", "55000000", "also unknown"},
	)

	_, err := ingest.Validate(table, nil, moviesPlan())
	if !errors.Is(err, services.ErrSchema) {
		t.Fatalf("expected schema error for text target, got %v", err)
	}
}

func TestValidateTypeHintsWin(t *testing.T) {
	// id looks numeric; the plan pins it categorical so it never scales.
	p := moviesPlan()
	p.Dataset.Categorical = []string{"id"}
	table := moviesTable(
		[]string{"1", "Heat", "60000000", "187000000"},
		[]string{"2", "Ronin", "55000000", "70000000"},
	)

	result, err := ingest.Validate(table, nil, p)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	column, ok := result.Profile.Column("id")
	if !ok {
		t.Fatal("profile missing id column")
	}
	if column.Type != dataset.TypeCategorical {
		t.Fatalf("id profiled as %s, want categorical", column.Type)
	}
}
