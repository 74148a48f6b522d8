package cleaning

import (
	"fmt"

	"marquee/internal/dataset"
	"marquee/internal/plan"
	"marquee/internal/services"
	"marquee/internal/stats"
)

// Fence records the fitted Tukey fences for one column.
type Fence struct {
	Column string  `json:"column"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// handleOutliers iterates the configured policy until a pass changes
// nothing, so the output is a fixpoint and re-cleaning is a no-op. Fences
// are refit each pass; the recorded fences are the stable ones. Columns with
// zero IQR are left alone: a zero-width fence marks everything an outlier.
func handleOutliers(table *dataset.Table, p *plan.Plan, outcome *Outcome) error {
	policy := p.Clean.Outliers.Policy
	if policy == "keep" || len(p.Clean.Outliers.Columns) == 0 {
		return nil
	}

	indices := make([]int, 0, len(p.Clean.Outliers.Columns))
	for _, name := range p.Clean.Outliers.Columns {
		idx := table.ColumnIndex(name)
		if idx < 0 {
			return services.Wrap(services.ErrValidation, "cleaning", "fit fences",
				fmt.Sprintf("Outlier column %q is not in the dataset", name), nil)
		}
		indices = append(indices, idx)
	}

	for pass := 1; pass <= p.Clean.Outliers.MaxIterations; pass++ {
		changed, err := outlierPass(table, p, indices, outcome)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
	}
	return services.Wrap(services.ErrValidation, "cleaning", "apply outlier policy",
		fmt.Sprintf("Outlier %s did not stabilize within %d passes", policy, p.Clean.Outliers.MaxIterations), nil)
}

func outlierPass(table *dataset.Table, p *plan.Plan, indices []int, outcome *Outcome) (bool, error) {
	fences := make([]Fence, 0, len(indices))
	remove := p.Clean.Outliers.Policy == "remove"
	keep := make([]bool, table.RowCount())
	for i := range keep {
		keep[i] = true
	}

	changed := false
	for _, idx := range indices {
		column := table.Columns[idx].Name
		values, present, err := table.NumericValues(idx)
		if err != nil {
			return false, services.Wrap(services.ErrValidation, "cleaning", "fit fences",
				fmt.Sprintf("Outlier column %q contains non-numeric values", column), err)
		}
		observed := make([]float64, 0, len(values))
		for i, v := range values {
			if present[i] {
				observed = append(observed, v)
			}
		}
		if len(observed) < 2 {
			continue
		}
		q1, q3, err := stats.Quartiles(observed)
		if err != nil {
			return false, services.Wrap(services.ErrValidation, "cleaning", "fit fences",
				fmt.Sprintf("Cannot fit fences for column %q", column), err)
		}
		iqr := q3 - q1
		if iqr == 0 {
			fences = append(fences, Fence{Column: column, Lower: q1, Upper: q3})
			continue
		}
		lower := q1 - p.Clean.Outliers.IQRMultiplier*iqr
		upper := q3 + p.Clean.Outliers.IQRMultiplier*iqr
		fences = append(fences, Fence{Column: column, Lower: lower, Upper: upper})

		for i, v := range values {
			if !present[i] || (v >= lower && v <= upper) {
				continue
			}
			if remove {
				if keep[i] {
					keep[i] = false
					changed = true
				}
				continue
			}
			clamped := lower
			if v > upper {
				clamped = upper
			}
			table.SetCell(i, idx, formatNumeric(clamped))
			outcome.ClippedCells++
			changed = true
		}
	}

	if remove && changed {
		before := table.RowCount()
		table.FilterRows(keep)
		outcome.DroppedOutliers += before - table.RowCount()
	}
	outcome.Fences = fences
	return changed, nil
}
