package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"marquee/internal/dataset"
	"marquee/internal/plan"
	"marquee/internal/stats"
)

// DerivedSpec is a derived-feature definition plus any parameters fitted
// from the data, such as quantile-bin edges. Recorded specs let insights
// recompute grouping columns without refitting.
type DerivedSpec struct {
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Source      string    `json:"source,omitempty"`
	Numerator   string    `json:"numerator,omitempty"`
	Denominator string    `json:"denominator,omitempty"`
	Separator   string    `json:"separator,omitempty"`
	Bins        int       `json:"bins,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	Edges       []float64 `json:"edges,omitempty"`
}

// Type returns the dataset column type the derived feature produces.
func (s DerivedSpec) Type() dataset.ColumnType {
	switch s.Kind {
	case "season", "first_token", "quantile_bin":
		return dataset.TypeCategorical
	default:
		return dataset.TypeNumeric
	}
}

// fitDerived resolves a plan declaration against the table, fitting
// quantile-bin edges where needed.
func fitDerived(table *dataset.Table, d plan.Derived) (DerivedSpec, error) {
	spec := DerivedSpec{
		Name:        d.Name,
		Kind:        d.Kind,
		Source:      d.Source,
		Numerator:   d.Numerator,
		Denominator: d.Denominator,
		Separator:   d.Separator,
		Bins:        d.Bins,
		Labels:      append([]string(nil), d.Labels...),
	}

	for _, column := range spec.inputs() {
		if !table.HasColumn(column) {
			return DerivedSpec{}, fmt.Errorf("derived feature %q needs missing column %q", spec.Name, column)
		}
	}

	if spec.Kind == "quantile_bin" {
		observed, err := observedNumeric(table, spec.Source)
		if err != nil {
			return DerivedSpec{}, fmt.Errorf("derived feature %q: %w", spec.Name, err)
		}
		if len(observed) == 0 {
			return DerivedSpec{}, fmt.Errorf("derived feature %q has no observed values to fit bins", spec.Name)
		}
		spec.Edges = make([]float64, 0, spec.Bins-1)
		for k := 1; k < spec.Bins; k++ {
			edge, err := stats.Quantile(observed, float64(k)/float64(spec.Bins))
			if err != nil {
				return DerivedSpec{}, fmt.Errorf("derived feature %q: %w", spec.Name, err)
			}
			spec.Edges = append(spec.Edges, edge)
		}
		if len(spec.Labels) == 0 {
			spec.Labels = make([]string, spec.Bins)
			for i := range spec.Labels {
				spec.Labels[i] = fmt.Sprintf("q%d", i+1)
			}
		}
	}
	return spec, nil
}

func (s DerivedSpec) inputs() []string {
	if s.Kind == "ratio" {
		return []string{s.Numerator, s.Denominator}
	}
	return []string{s.Source}
}

// ComputeColumn evaluates the derived feature for every row. Missing source
// cells yield missing outputs (token_count yields zero); unparsable source
// cells are an error.
func (s DerivedSpec) ComputeColumn(table *dataset.Table) ([]string, error) {
	out := make([]string, table.RowCount())
	for row := range table.Rows {
		value, err := s.Compute(table, row)
		if err != nil {
			return nil, err
		}
		out[row] = value
	}
	return out, nil
}

// Compute evaluates the derived feature for one row.
func (s DerivedSpec) Compute(table *dataset.Table, row int) (string, error) {
	switch s.Kind {
	case "year", "month", "season":
		return s.computeDatePart(table, row)
	case "log1p":
		v, present, err := s.sourceNumeric(table, row, s.Source)
		if err != nil || !present {
			return "", err
		}
		if v <= -1 {
			return "", fmt.Errorf("derived feature %q: log1p of %v at row %d", s.Name, v, row+2)
		}
		return formatNumeric(math.Log1p(v)), nil
	case "ratio":
		num, numPresent, err := s.sourceNumeric(table, row, s.Numerator)
		if err != nil || !numPresent {
			return "", err
		}
		den, denPresent, err := s.sourceNumeric(table, row, s.Denominator)
		if err != nil || !denPresent || den == 0 {
			return "", err
		}
		return formatNumeric(num / den), nil
	case "first_token":
		cell := s.sourceCell(table, row)
		for _, token := range strings.Split(cell, s.Separator) {
			if trimmed := strings.TrimSpace(token); trimmed != "" {
				return trimmed, nil
			}
		}
		return "", nil
	case "token_count":
		cell := s.sourceCell(table, row)
		count := 0
		for _, token := range strings.Split(cell, s.Separator) {
			if strings.TrimSpace(token) != "" {
				count++
			}
		}
		return strconv.Itoa(count), nil
	case "quantile_bin":
		v, present, err := s.sourceNumeric(table, row, s.Source)
		if err != nil || !present {
			return "", err
		}
		return s.assignBin(v), nil
	default:
		return "", fmt.Errorf("derived feature %q has unknown kind %q", s.Name, s.Kind)
	}
}

func (s DerivedSpec) computeDatePart(table *dataset.Table, row int) (string, error) {
	cell := s.sourceCell(table, row)
	if dataset.IsMissing(cell) {
		return "", nil
	}
	when, err := dataset.ParseDate(cell)
	if err != nil {
		return "", fmt.Errorf("derived feature %q: row %d value %q is not a date", s.Name, row+2, cell)
	}
	switch s.Kind {
	case "year":
		return strconv.Itoa(when.Year()), nil
	case "month":
		return strconv.Itoa(int(when.Month())), nil
	default:
		return seasonOf(int(when.Month())), nil
	}
}

func seasonOf(month int) string {
	switch {
	case month == 12 || month <= 2:
		return "winter"
	case month <= 5:
		return "spring"
	case month <= 8:
		return "summer"
	default:
		return "fall"
	}
}

func (s DerivedSpec) assignBin(v float64) string {
	for i, edge := range s.Edges {
		if v <= edge {
			return s.Labels[i]
		}
	}
	return s.Labels[len(s.Labels)-1]
}

func (s DerivedSpec) sourceCell(table *dataset.Table, row int) string {
	idx := table.ColumnIndex(s.Source)
	if idx < 0 {
		return ""
	}
	cell := table.Rows[row][idx]
	if dataset.IsMissing(cell) {
		return ""
	}
	return cell
}

func (s DerivedSpec) sourceNumeric(table *dataset.Table, row int, column string) (float64, bool, error) {
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return 0, false, nil
	}
	cell := table.Rows[row][idx]
	if dataset.IsMissing(cell) {
		return 0, false, nil
	}
	v, err := dataset.ParseNumeric(cell)
	if err != nil {
		return 0, false, fmt.Errorf("derived feature %q: row %d value %q is not numeric", s.Name, row+2, cell)
	}
	return v, true, nil
}

func observedNumeric(table *dataset.Table, column string) ([]float64, error) {
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("column %q is not in the dataset", column)
	}
	values, present, err := table.NumericValues(idx)
	if err != nil {
		return nil, err
	}
	observed := make([]float64, 0, len(values))
	for i, v := range values {
		if present[i] {
			observed = append(observed, v)
		}
	}
	return observed, nil
}

func formatNumeric(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
