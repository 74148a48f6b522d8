package features

import (
	"fmt"
	"sort"

	"marquee/internal/dataset"
)

// EncoderSpec records a fitted categorical encoding. Categories are sorted
// so the emitted schema is stable across runs; missing cells encode as the
// empty-string category.
type EncoderSpec struct {
	Column      string             `json:"column"`
	Scheme      string             `json:"scheme"`
	Categories  []string           `json:"categories,omitempty"`
	Frequencies map[string]float64 `json:"frequencies,omitempty"`
}

// fitEncoder scans the column and fixes the category order or frequencies.
func fitEncoder(table *dataset.Table, column, scheme string) (EncoderSpec, error) {
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return EncoderSpec{}, fmt.Errorf("encode column %q is not in the dataset", column)
	}

	counts := make(map[string]int)
	for _, row := range table.Rows {
		counts[categoryOf(row[idx])]++
	}
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	spec := EncoderSpec{Column: column, Scheme: scheme, Categories: categories}
	if scheme == "frequency" {
		total := float64(table.RowCount())
		spec.Frequencies = make(map[string]float64, len(counts))
		for category, count := range counts {
			spec.Frequencies[category] = float64(count) / total
		}
	}
	return spec, nil
}

// encode produces the numeric feature columns for one categorical column.
// onehot yields one indicator per category; label and frequency yield a
// single column that keeps the source name.
func (s EncoderSpec) encode(table *dataset.Table) ([]featureColumn, error) {
	idx := table.ColumnIndex(s.Column)
	if idx < 0 {
		return nil, fmt.Errorf("encode column %q is not in the dataset", s.Column)
	}

	switch s.Scheme {
	case "onehot":
		columns := make([]featureColumn, len(s.Categories))
		for c, category := range s.Categories {
			columns[c] = featureColumn{
				Name:      fmt.Sprintf("%s=%s", s.Column, category),
				Values:    make([]float64, table.RowCount()),
				Indicator: true,
			}
		}
		position := make(map[string]int, len(s.Categories))
		for c, category := range s.Categories {
			position[category] = c
		}
		for row := range table.Rows {
			if c, ok := position[categoryOf(table.Rows[row][idx])]; ok {
				columns[c].Values[row] = 1
			}
		}
		return columns, nil
	case "label":
		position := make(map[string]int, len(s.Categories))
		for c, category := range s.Categories {
			position[category] = c
		}
		values := make([]float64, table.RowCount())
		for row := range table.Rows {
			c, ok := position[categoryOf(table.Rows[row][idx])]
			if !ok {
				return nil, fmt.Errorf("column %q row %d has unfitted category %q", s.Column, row+2, table.Rows[row][idx])
			}
			values[row] = float64(c)
		}
		return []featureColumn{{Name: s.Column, Values: values}}, nil
	case "frequency":
		values := make([]float64, table.RowCount())
		for row := range table.Rows {
			values[row] = s.Frequencies[categoryOf(table.Rows[row][idx])]
		}
		return []featureColumn{{Name: s.Column, Values: values}}, nil
	default:
		return nil, fmt.Errorf("unknown encoding scheme %q for column %q", s.Scheme, s.Column)
	}
}

// categoryOf folds every missing sentinel into the empty-string category.
func categoryOf(cell string) string {
	if dataset.IsMissing(cell) {
		return ""
	}
	return cell
}
