package cleaning

import (
	"fmt"
	"strconv"
	"strings"

	"marquee/internal/dataset"
	"marquee/internal/plan"
	"marquee/internal/services"
	"marquee/internal/stats"
)

// Outcome summarizes one cleaning pass for logging and the run ledger.
type Outcome struct {
	RowsIn            int
	RowsOut           int
	DroppedMissing    int
	DroppedDuplicates int
	DroppedOutliers   int
	ImputedCells      int
	ClippedCells      int
	Fences            []Fence
}

// Apply runs the plan's cleaning policies over the table in place: rows
// missing the target or id are dropped, the missing-value policy runs, exact
// duplicates are resolved, and outlier handling is iterated to a fixpoint.
// The output either satisfies the cleaned-dataset invariants or an error is
// returned; re-applying Apply to its own output changes nothing.
func Apply(table *dataset.Table, p *plan.Plan) (Outcome, error) {
	outcome := Outcome{RowsIn: table.RowCount()}

	dropIdentityRows(table, p, &outcome)
	if err := handleMissing(table, p, &outcome); err != nil {
		return outcome, err
	}
	dropDuplicates(table, p.Clean.Duplicates, &outcome)
	if err := handleOutliers(table, p, &outcome); err != nil {
		return outcome, err
	}
	if err := verifyInvariants(table, p); err != nil {
		return outcome, err
	}

	outcome.RowsOut = table.RowCount()
	return outcome, nil
}

// dropIdentityRows removes rows missing the target or the id column. Neither
// is ever imputed: a fabricated target would poison training and a fabricated
// id breaks the residual join in insights.
func dropIdentityRows(table *dataset.Table, p *plan.Plan, outcome *Outcome) {
	var indices []int
	for _, name := range []string{p.Dataset.Target, p.Dataset.IDColumn} {
		if name == "" {
			continue
		}
		if idx := table.ColumnIndex(name); idx >= 0 {
			indices = append(indices, idx)
		}
	}
	if len(indices) == 0 {
		return
	}
	keep := make([]bool, table.RowCount())
	dropped := 0
	for i, row := range table.Rows {
		keep[i] = true
		for _, idx := range indices {
			if dataset.IsMissing(row[idx]) {
				keep[i] = false
				dropped++
				break
			}
		}
	}
	if dropped > 0 {
		table.FilterRows(keep)
		outcome.DroppedMissing += dropped
	}
}

func handleMissing(table *dataset.Table, p *plan.Plan, outcome *Outcome) error {
	for column := range p.Clean.Missing.Columns {
		if !table.HasColumn(column) {
			return services.Wrap(services.ErrValidation, "cleaning", "impute",
				fmt.Sprintf("Imputation column %q is not in the dataset", column), nil)
		}
	}
	if p.Clean.Missing.Policy == "drop" {
		dropRowsMissingRequired(table, p, outcome)
	}

	for idx, column := range table.Columns {
		if column.Name == p.Dataset.Target || column.Name == p.Dataset.IDColumn {
			continue
		}
		strategy, wanted := imputationStrategy(column.Name, p)
		if !wanted {
			continue
		}
		imputed, err := imputeColumn(table, idx, strategy, p.Clean.Missing.Constants[column.Name])
		if err != nil {
			return err
		}
		outcome.ImputedCells += imputed
	}
	return nil
}

// imputationStrategy decides whether a column is imputed and how. Explicit
// per-column entries always impute; required columns fall back to the default
// strategy under the impute policy.
func imputationStrategy(column string, p *plan.Plan) (string, bool) {
	if strategy, ok := p.Clean.Missing.Columns[column]; ok && strategy != "" {
		return strategy, true
	}
	if p.Clean.Missing.Policy != "impute" {
		return "", false
	}
	for _, required := range p.Dataset.Required {
		if required == column {
			return p.Clean.Missing.DefaultStrategy, true
		}
	}
	return "", false
}

func dropRowsMissingRequired(table *dataset.Table, p *plan.Plan, outcome *Outcome) {
	indices := make([]int, 0, len(p.Dataset.Required))
	for _, name := range p.Dataset.Required {
		if idx := table.ColumnIndex(name); idx >= 0 {
			indices = append(indices, idx)
		}
	}
	if len(indices) == 0 {
		return
	}
	keep := make([]bool, table.RowCount())
	dropped := 0
	for i, row := range table.Rows {
		keep[i] = true
		for _, idx := range indices {
			if dataset.IsMissing(row[idx]) {
				keep[i] = false
				dropped++
				break
			}
		}
	}
	if dropped > 0 {
		table.FilterRows(keep)
		outcome.DroppedMissing += dropped
	}
}

// imputeColumn fills missing cells using statistics of the observed values.
func imputeColumn(table *dataset.Table, idx int, strategy, constant string) (int, error) {
	column := table.Columns[idx].Name
	missingRows := make([]int, 0)
	for i, row := range table.Rows {
		if dataset.IsMissing(row[idx]) {
			missingRows = append(missingRows, i)
		}
	}
	if len(missingRows) == 0 {
		return 0, nil
	}

	fill, err := fillValue(table, idx, strategy, constant)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "cleaning", "impute",
			fmt.Sprintf("Cannot impute column %q with strategy %s", column, strategy), err)
	}
	for _, i := range missingRows {
		table.SetCell(i, idx, fill)
	}
	return len(missingRows), nil
}

func fillValue(table *dataset.Table, idx int, strategy, constant string) (string, error) {
	switch strategy {
	case "constant":
		if strings.TrimSpace(constant) == "" {
			return "", fmt.Errorf("no constant configured")
		}
		return constant, nil
	case "mode":
		observed := make([]string, 0, table.RowCount())
		for _, row := range table.Rows {
			if !dataset.IsMissing(row[idx]) {
				observed = append(observed, row[idx])
			}
		}
		mode, ok := stats.Mode(observed)
		if !ok {
			return "", fmt.Errorf("no observed values")
		}
		return mode, nil
	case "mean", "median":
		values, present, err := table.NumericValues(idx)
		if err != nil {
			return "", err
		}
		observed := make([]float64, 0, len(values))
		for i, v := range values {
			if present[i] {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return "", fmt.Errorf("no observed values")
		}
		if strategy == "mean" {
			return formatNumeric(stats.Mean(observed)), nil
		}
		return formatNumeric(stats.Median(observed)), nil
	default:
		return "", fmt.Errorf("unknown strategy %q", strategy)
	}
}

func dropDuplicates(table *dataset.Table, policy string, outcome *Outcome) {
	if table.RowCount() == 0 {
		return
	}
	counts := make(map[string]int, table.RowCount())
	for i := range table.Rows {
		counts[table.RowKey(i)]++
	}

	keep := make([]bool, table.RowCount())
	seen := make(map[string]struct{}, len(counts))
	dropped := 0
	for i := range table.Rows {
		key := table.RowKey(i)
		switch policy {
		case "drop-all":
			keep[i] = counts[key] == 1
		default:
			_, dup := seen[key]
			keep[i] = !dup
			seen[key] = struct{}{}
		}
		if !keep[i] {
			dropped++
		}
	}
	if dropped > 0 {
		table.FilterRows(keep)
		outcome.DroppedDuplicates += dropped
	}
}

// verifyInvariants confirms the cleaned-dataset guarantees: no missing value
// in a required field and no exact duplicate rows. Outlier clipping can in
// principle collapse two rows into equality; that surfaces here as a
// validation failure rather than a silent re-clean.
func verifyInvariants(table *dataset.Table, p *plan.Plan) error {
	required := append([]string{}, p.Dataset.Required...)
	if p.Dataset.Target != "" {
		required = append(required, p.Dataset.Target)
	}
	if p.Dataset.IDColumn != "" {
		required = append(required, p.Dataset.IDColumn)
	}
	for _, name := range required {
		idx := table.ColumnIndex(name)
		if idx < 0 {
			continue
		}
		for i, row := range table.Rows {
			if dataset.IsMissing(row[idx]) {
				return services.Wrap(services.ErrValidation, "cleaning", "verify invariants",
					fmt.Sprintf("Row %d still missing required column %q after cleaning", i+2, name), nil)
			}
		}
	}

	seen := make(map[string]int, table.RowCount())
	for i := range table.Rows {
		key := table.RowKey(i)
		if first, dup := seen[key]; dup {
			return services.Wrap(services.ErrValidation, "cleaning", "verify invariants",
				fmt.Sprintf("Rows %d and %d are exact duplicates after cleaning", first+2, i+2), nil)
		}
		seen[key] = i
	}
	return nil
}

func formatNumeric(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
