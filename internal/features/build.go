package features

import (
	"fmt"
	"strconv"

	"marquee/internal/dataset"
	"marquee/internal/plan"
	"marquee/internal/stats"
)

// featureColumn is one numeric feature under construction. Indicator columns
// come from one-hot encoding and are never scaled.
type featureColumn struct {
	Name      string
	Values    []float64
	Indicator bool
}

// FillSpec records the mean used to fill missing cells in one numeric
// feature column, so the transform is reproducible.
type FillSpec struct {
	Column string  `json:"column"`
	Value  float64 `json:"value"`
}

// Built is the model-ready form of a cleaned dataset: one fixed-width
// numeric row per record, aligned ids and targets, and the fitted metadata
// needed to reproduce or invert the transform.
type Built struct {
	IDs    []string
	Names  []string
	Matrix [][]float64
	Target []float64
	Meta   Metadata
}

// Build derives, encodes, scales, and selects features per the plan. The
// output is deterministic for a given table and plan: category orders are
// sorted, derived columns follow plan order, and source columns keep their
// table order.
func Build(table *dataset.Table, p *plan.Plan) (*Built, error) {
	work := table.Clone()
	dataset.InferTypes(work)
	applyTypeHints(work, p)

	specs := make([]DerivedSpec, 0, len(p.Features.Derived))
	for _, d := range p.Features.Derived {
		spec, err := fitDerived(work, d)
		if err != nil {
			return nil, err
		}
		values, err := spec.ComputeColumn(work)
		if err != nil {
			return nil, err
		}
		if err := work.AppendColumn(dataset.Column{Name: spec.Name, Type: spec.Type()}, values); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	targetIdx := work.ColumnIndex(p.Dataset.Target)
	if targetIdx < 0 {
		return nil, fmt.Errorf("target column %q is not in the dataset", p.Dataset.Target)
	}
	target, present, err := work.NumericValues(targetIdx)
	if err != nil {
		return nil, fmt.Errorf("target column %q: %w", p.Dataset.Target, err)
	}
	for i, ok := range present {
		if !ok {
			return nil, fmt.Errorf("target column %q is missing at row %d", p.Dataset.Target, i+2)
		}
	}

	ids, err := recordIDs(work, p.Dataset.IDColumn)
	if err != nil {
		return nil, err
	}

	columns, encoders, fills, err := assembleColumns(work, p, targetIdx)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no usable feature columns; declare derived features or encodings in the plan")
	}

	var scalers []ScalerSpec
	if p.Features.Scaling != "none" {
		for i := range columns {
			if columns[i].Indicator {
				continue
			}
			spec, err := fitScaler(columns[i].Name, p.Features.Scaling, columns[i].Values)
			if err != nil {
				return nil, err
			}
			spec.apply(columns[i].Values)
			scalers = append(scalers, spec)
		}
	}

	selected, selection, err := selectFeatures(columns, target, p.Features.Selection)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(selected))
	for i, column := range selected {
		names[i] = column.Name
	}
	matrix := make([][]float64, work.RowCount())
	for row := range matrix {
		vector := make([]float64, len(selected))
		for c, column := range selected {
			vector[c] = column.Values[row]
		}
		matrix[row] = vector
	}

	return &Built{
		IDs:    ids,
		Names:  names,
		Matrix: matrix,
		Target: target,
		Meta: Metadata{
			IDColumn:  p.Dataset.IDColumn,
			Target:    p.Dataset.Target,
			Features:  names,
			RowCount:  work.RowCount(),
			Derived:   specs,
			Encoders:  encoders,
			Scaling:   p.Features.Scaling,
			Scalers:   scalers,
			Fills:     fills,
			Selection: selection,
			GroupBy:   append([]string(nil), p.Insights.GroupBy...),
		},
	}, nil
}

// assembleColumns walks the table in column order: encoded categoricals per
// the plan, numeric columns directly, everything else skipped. Missing
// numeric cells are filled with the column's observed mean.
func assembleColumns(work *dataset.Table, p *plan.Plan, targetIdx int) ([]featureColumn, []EncoderSpec, []FillSpec, error) {
	var columns []featureColumn
	var encoders []EncoderSpec
	var fills []FillSpec

	for idx, col := range work.Columns {
		if idx == targetIdx || col.Name == p.Dataset.IDColumn {
			continue
		}
		if scheme, ok := p.Features.Encode[col.Name]; ok {
			enc, err := fitEncoder(work, col.Name, scheme)
			if err != nil {
				return nil, nil, nil, err
			}
			encoded, err := enc.encode(work)
			if err != nil {
				return nil, nil, nil, err
			}
			encoders = append(encoders, enc)
			columns = append(columns, encoded...)
			continue
		}
		if col.Type != dataset.TypeNumeric {
			continue
		}
		values, present, err := work.NumericValues(idx)
		if err != nil {
			return nil, nil, nil, err
		}
		observed := make([]float64, 0, len(values))
		for i, v := range values {
			if present[i] {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			continue
		}
		if len(observed) < len(values) {
			fill := stats.Mean(observed)
			for i := range values {
				if !present[i] {
					values[i] = fill
				}
			}
			fills = append(fills, FillSpec{Column: col.Name, Value: fill})
		}
		columns = append(columns, featureColumn{Name: col.Name, Values: values})
	}
	return columns, encoders, fills, nil
}

// recordIDs returns one identity string per row: the id column where the
// plan names one, the 1-based row ordinal otherwise.
func recordIDs(work *dataset.Table, idColumn string) ([]string, error) {
	if idColumn == "" {
		ids := make([]string, work.RowCount())
		for i := range ids {
			ids[i] = strconv.Itoa(i + 1)
		}
		return ids, nil
	}
	idx := work.ColumnIndex(idColumn)
	if idx < 0 {
		return nil, fmt.Errorf("id column %q is not in the dataset", idColumn)
	}
	return work.ColumnValues(idx), nil
}

// applyTypeHints overrides inferred types with the plan's declarations, the
// same way ingestion does before profiling.
func applyTypeHints(work *dataset.Table, p *plan.Plan) {
	hint := func(names []string, t dataset.ColumnType) {
		for _, name := range names {
			if idx := work.ColumnIndex(name); idx >= 0 {
				work.Columns[idx].Type = t
			}
		}
	}
	hint(p.Dataset.Numeric, dataset.TypeNumeric)
	hint(p.Dataset.Dates, dataset.TypeDate)
	hint(p.Dataset.Categorical, dataset.TypeCategorical)
}

// Table renders the built features as a dataset table: id column first,
// features in schema order, target last.
func (b *Built) Table() *dataset.Table {
	idName := b.Meta.IDColumn
	if idName == "" {
		idName = "row"
	}
	names := make([]string, 0, len(b.Names)+2)
	names = append(names, idName)
	names = append(names, b.Names...)
	names = append(names, b.Meta.Target)

	out := dataset.NewTable(names...)
	for i := range out.Columns {
		out.Columns[i].Type = dataset.TypeNumeric
	}
	out.Columns[0].Type = dataset.TypeCategorical

	out.Rows = make([][]string, len(b.Matrix))
	for row, vector := range b.Matrix {
		cells := make([]string, 0, len(vector)+2)
		cells = append(cells, b.IDs[row])
		for _, v := range vector {
			cells = append(cells, strconv.FormatFloat(v, 'g', -1, 64))
		}
		cells = append(cells, strconv.FormatFloat(b.Target[row], 'g', -1, 64))
		out.Rows[row] = cells
	}
	return out
}
