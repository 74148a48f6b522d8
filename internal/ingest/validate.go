package ingest

import (
	"fmt"
	"strings"

	"marquee/internal/dataset"
	"marquee/internal/plan"
	"marquee/internal/services"
)

// Result captures what ingestion learned about a dataset.
type Result struct {
	Profile     dataset.Profile
	DroppedRows int
}

// Validate applies the plan's bad-row policy, verifies the schema, infers
// column types with plan hints winning, and profiles the table. Column types
// are set on the table in place; the row data is never modified.
func Validate(table *dataset.Table, issues []dataset.RowIssue, p *plan.Plan) (Result, error) {
	if err := applyBadRowPolicy(issues, p); err != nil {
		return Result{}, err
	}
	if table.RowCount() == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "ingestion", "validate rows",
			"Dataset has a header but no data rows", nil)
	}

	if missing := missingColumns(table, p); len(missing) > 0 {
		return Result{}, services.Wrap(services.ErrSchema, "ingestion", "validate schema",
			fmt.Sprintf("Dataset is missing required columns: %s", strings.Join(missing, ", ")), nil)
	}

	dataset.InferTypes(table)
	applyTypeHints(table, p)

	if err := checkTarget(table, p.Dataset.Target); err != nil {
		return Result{}, err
	}

	return Result{
		Profile:     dataset.BuildProfile(table, len(issues)),
		DroppedRows: len(issues),
	}, nil
}

func applyBadRowPolicy(issues []dataset.RowIssue, p *plan.Plan) error {
	if len(issues) == 0 {
		return nil
	}
	first := issues[0]
	switch p.Ingest.BadRows {
	case "fail":
		return services.Wrap(services.ErrFormat, "ingestion", "apply bad-row policy",
			fmt.Sprintf("Dataset contains %d malformed rows (first at line %d: %s); fix the file or set ingest.bad_rows to drop",
				len(issues), first.Line, first.Detail), nil)
	default:
		// drop policy: a zero budget means unlimited.
		if budget := p.Ingest.BadRowBudget; budget > 0 && len(issues) > budget {
			return services.Wrap(services.ErrFormat, "ingestion", "apply bad-row policy",
				fmt.Sprintf("Dropped %d malformed rows, exceeding ingest.bad_row_budget %d (first at line %d: %s)",
					len(issues), budget, first.Line, first.Detail), nil)
		}
	}
	return nil
}

func missingColumns(table *dataset.Table, p *plan.Plan) []string {
	wanted := make([]string, 0, len(p.Dataset.Required)+2)
	if p.Dataset.IDColumn != "" {
		wanted = append(wanted, p.Dataset.IDColumn)
	}
	if p.Dataset.Target != "" {
		wanted = append(wanted, p.Dataset.Target)
	}
	wanted = append(wanted, p.Dataset.Required...)

	var missing []string
	seen := make(map[string]struct{}, len(wanted))
	for _, name := range wanted {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if !table.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func applyTypeHints(table *dataset.Table, p *plan.Plan) {
	setType := func(names []string, columnType dataset.ColumnType) {
		for _, name := range names {
			if idx := table.ColumnIndex(name); idx >= 0 {
				table.Columns[idx].Type = columnType
			}
		}
	}
	setType(p.Dataset.Dates, dataset.TypeDate)
	setType(p.Dataset.Numeric, dataset.TypeNumeric)
	setType(p.Dataset.Categorical, dataset.TypeCategorical)
}

func checkTarget(table *dataset.Table, target string) error {
	idx := table.ColumnIndex(target)
	if idx < 0 {
		return services.Wrap(services.ErrSchema, "ingestion", "validate target",
			fmt.Sprintf("Target column %q is missing", target), nil)
	}
	if table.Columns[idx].Type != dataset.TypeNumeric {
		return services.Wrap(services.ErrSchema, "ingestion", "validate target",
			fmt.Sprintf("Target column %q is %s, not numeric", target, table.Columns[idx].Type), nil)
	}
	if _, _, err := table.NumericValues(idx); err != nil {
		return services.Wrap(services.ErrSchema, "ingestion", "validate target",
			fmt.Sprintf("Target column %q contains non-numeric values", target), err)
	}
	return nil
}
