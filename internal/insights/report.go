package insights

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"marquee/internal/dataset"
	"marquee/internal/evaluation"
	"marquee/internal/features"
	"marquee/internal/stats"
)

// GroupStat is one categorical group's descriptive statistics over the
// holdout residuals.
type GroupStat struct {
	Value         string  `json:"value"`
	Rows          int     `json:"rows"`
	MeanActual    float64 `json:"mean_actual"`
	MeanPredicted float64 `json:"mean_predicted"`
	MeanAbsError  float64 `json:"mean_abs_error"`
	MeanResidual  float64 `json:"mean_residual"`
}

// Grouping is the per-value breakdown for one grouping column.
type Grouping struct {
	Column string      `json:"column"`
	Groups []GroupStat `json:"groups"`
}

// Report is the insights artifact: headline metrics, the holdout target
// distribution, grouped descriptive statistics, and the strongest feature
// importances.
type Report struct {
	Family         string                  `json:"family"`
	HoldoutRows    int                     `json:"holdout_rows"`
	Metrics        evaluation.Metrics      `json:"metrics"`
	Actuals        stats.Summary           `json:"actuals"`
	Groupings      []Grouping              `json:"groupings,omitempty"`
	TopImportances []evaluation.Importance `json:"top_importances,omitempty"`
	ImportanceNote string                  `json:"importance_note,omitempty"`
}

// Summarize joins holdout residuals back to the cleaned dataset and
// aggregates them by the plan's grouping columns. Derived grouping columns
// (budget tiers, release windows) are recomputed from the fitted definitions
// recorded in the feature metadata, never refitted.
func Summarize(eval *evaluation.Report, meta features.Metadata, cleaned *dataset.Table, topN int) (*Report, error) {
	report := &Report{
		Family:         eval.Family,
		HoldoutRows:    eval.HoldoutRows,
		Metrics:        eval.Metrics,
		ImportanceNote: eval.ImportanceNote,
	}

	actuals := make([]float64, len(eval.Residuals))
	for i, residual := range eval.Residuals {
		actuals[i] = residual.Actual
	}
	report.Actuals = stats.Describe(actuals)

	rowByID, err := indexRows(cleaned, meta.IDColumn)
	if err != nil {
		return nil, err
	}

	for _, column := range meta.GroupBy {
		values, err := groupValues(cleaned, meta, column)
		if err != nil {
			return nil, err
		}
		grouping, err := aggregate(column, values, rowByID, eval.Residuals)
		if err != nil {
			return nil, err
		}
		report.Groupings = append(report.Groupings, grouping)
	}

	if topN > 0 && len(eval.Importances) > 0 {
		limit := topN
		if limit > len(eval.Importances) {
			limit = len(eval.Importances)
		}
		report.TopImportances = append([]evaluation.Importance(nil), eval.Importances[:limit]...)
	}
	return report, nil
}

// indexRows maps record identities to cleaned row positions. Without an id
// column the identity is the 1-based row ordinal, matching how features
// labels rows.
func indexRows(cleaned *dataset.Table, idColumn string) (map[string]int, error) {
	rowByID := make(map[string]int, cleaned.RowCount())
	if idColumn == "" {
		for i := range cleaned.Rows {
			rowByID[strconv.Itoa(i+1)] = i
		}
		return rowByID, nil
	}
	idx := cleaned.ColumnIndex(idColumn)
	if idx < 0 {
		return nil, fmt.Errorf("id column %q is not in the cleaned dataset", idColumn)
	}
	for i, row := range cleaned.Rows {
		rowByID[row[idx]] = i
	}
	return rowByID, nil
}

// groupValues resolves one grouping column per cleaned row: a recorded
// derived definition when the feature metadata has one, the raw column
// otherwise.
func groupValues(cleaned *dataset.Table, meta features.Metadata, column string) ([]string, error) {
	if spec, ok := meta.DerivedByName(column); ok {
		values, err := spec.ComputeColumn(cleaned)
		if err != nil {
			return nil, fmt.Errorf("grouping column %q: %w", column, err)
		}
		return values, nil
	}
	idx := cleaned.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("grouping column %q is neither a cleaned column nor a derived feature", column)
	}
	values := cleaned.ColumnValues(idx)
	for i, value := range values {
		if dataset.IsMissing(value) {
			values[i] = ""
		}
	}
	return values, nil
}

func aggregate(column string, values []string, rowByID map[string]int, residuals []evaluation.Residual) (Grouping, error) {
	type accumulator struct {
		rows                                      int
		sumActual, sumPredicted, sumAbs, sumResid float64
	}
	buckets := make(map[string]*accumulator)
	for _, residual := range residuals {
		row, ok := rowByID[residual.ID]
		if !ok {
			return Grouping{}, fmt.Errorf("residual id %q is not in the cleaned dataset", residual.ID)
		}
		value := values[row]
		if value == "" {
			value = "(none)"
		}
		acc := buckets[value]
		if acc == nil {
			acc = &accumulator{}
			buckets[value] = acc
		}
		acc.rows++
		acc.sumActual += residual.Actual
		acc.sumPredicted += residual.Predicted
		acc.sumResid += residual.Residual
		if residual.Residual >= 0 {
			acc.sumAbs += residual.Residual
		} else {
			acc.sumAbs -= residual.Residual
		}
	}

	grouping := Grouping{Column: column, Groups: make([]GroupStat, 0, len(buckets))}
	for value, acc := range buckets {
		n := float64(acc.rows)
		grouping.Groups = append(grouping.Groups, GroupStat{
			Value:         value,
			Rows:          acc.rows,
			MeanActual:    acc.sumActual / n,
			MeanPredicted: acc.sumPredicted / n,
			MeanAbsError:  acc.sumAbs / n,
			MeanResidual:  acc.sumResid / n,
		})
	}
	sort.SliceStable(grouping.Groups, func(a, b int) bool {
		if grouping.Groups[a].Rows != grouping.Groups[b].Rows {
			return grouping.Groups[a].Rows > grouping.Groups[b].Rows
		}
		return grouping.Groups[a].Value < grouping.Groups[b].Value
	})
	return grouping, nil
}

// WriteReport persists the insights report as indented JSON.
func WriteReport(path string, report *Report) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode insights report: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write insights report: %w", err)
	}
	return nil
}

// LoadReport reads a report written by WriteReport.
func LoadReport(path string) (*Report, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read insights report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode insights report: %w", err)
	}
	return &report, nil
}
