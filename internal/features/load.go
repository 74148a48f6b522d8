package features

import (
	"fmt"

	"marquee/internal/dataset"
)

// LoadDataset reads a features.csv written by the engineering stage back
// into its Built form, verifying the file still matches the metadata's
// schema. Training and evaluation both consume this.
func LoadDataset(path string, meta Metadata) (*Built, error) {
	table, err := dataset.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read features: %w", err)
	}

	idName := meta.IDColumn
	if idName == "" {
		idName = "row"
	}
	expected := make([]string, 0, len(meta.Features)+2)
	expected = append(expected, idName)
	expected = append(expected, meta.Features...)
	expected = append(expected, meta.Target)

	actual := table.ColumnNames()
	if len(actual) != len(expected) {
		return nil, fmt.Errorf("features file has %d columns, metadata declares %d", len(actual), len(expected))
	}
	for i := range expected {
		if actual[i] != expected[i] {
			return nil, fmt.Errorf("features column %d is %q, metadata declares %q", i+1, actual[i], expected[i])
		}
	}

	built := &Built{
		IDs:    table.ColumnValues(0),
		Names:  append([]string(nil), meta.Features...),
		Matrix: make([][]float64, table.RowCount()),
		Target: make([]float64, table.RowCount()),
		Meta:   meta,
	}
	for row, cells := range table.Rows {
		vector := make([]float64, len(meta.Features))
		for c := range meta.Features {
			v, err := dataset.ParseNumeric(cells[c+1])
			if err != nil {
				return nil, fmt.Errorf("features row %d column %q: %w", row+2, meta.Features[c], err)
			}
			vector[c] = v
		}
		target, err := dataset.ParseNumeric(cells[len(cells)-1])
		if err != nil {
			return nil, fmt.Errorf("features row %d target: %w", row+2, err)
		}
		built.Matrix[row] = vector
		built.Target[row] = target
	}
	return built, nil
}
