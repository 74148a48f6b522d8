package evaluation

import (
	"gonum.org/v1/gonum/mat"

	"marquee/internal/features"
)

// subset assembles the feature matrix and target vector for a set of row
// indices.
func subset(built *features.Built, indices []int) (*mat.Dense, []float64) {
	cols := len(built.Names)
	data := make([]float64, 0, len(indices)*cols)
	target := make([]float64, len(indices))
	for i, idx := range indices {
		data = append(data, built.Matrix[idx]...)
		target[i] = built.Target[idx]
	}
	return mat.NewDense(len(indices), cols, data), target
}
