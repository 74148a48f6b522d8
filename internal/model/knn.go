package model

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// KNN is a k-nearest-neighbors regressor: a prediction is the mean target of
// the k training rows closest in Euclidean distance. It exposes no feature
// importances.
type KNN struct {
	K        int
	Features [][]float64
	Targets  []float64
}

// NewKNN returns an unfitted kNN regressor.
func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

func (m *KNN) Fit(features *mat.Dense, target []float64) error {
	rows, cols, err := checkTrainingShape(features, target)
	if err != nil {
		return err
	}
	if m.K < 1 {
		return fmt.Errorf("knn k %d must be at least 1", m.K)
	}
	if m.K > rows {
		return fmt.Errorf("knn k %d exceeds %d training rows", m.K, rows)
	}

	m.Features = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		mat.Row(row, i, features)
		m.Features[i] = row
	}
	m.Targets = append([]float64(nil), target...)
	return nil
}

func (m *KNN) Predict(features *mat.Dense) ([]float64, error) {
	if len(m.Features) == 0 {
		return nil, fmt.Errorf("model is not fitted")
	}
	rows, cols := features.Dims()
	if cols != len(m.Features[0]) {
		return nil, fmt.Errorf("feature count %d does not match fitted %d", cols, len(m.Features[0]))
	}

	predictions := make([]float64, rows)
	query := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(query, i, features)
		predictions[i] = m.predictOne(query)
	}
	return predictions, nil
}

func (m *KNN) predictOne(query []float64) float64 {
	type neighbor struct {
		index    int
		distance float64
	}
	neighbors := make([]neighbor, len(m.Features))
	for i, row := range m.Features {
		neighbors[i] = neighbor{index: i, distance: squaredDistance(query, row)}
	}
	// Ties break on training order so predictions are deterministic.
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].distance != neighbors[b].distance {
			return neighbors[a].distance < neighbors[b].distance
		}
		return neighbors[a].index < neighbors[b].index
	})

	sum := 0.0
	for i := 0; i < m.K; i++ {
		sum += m.Targets[neighbors[i].index]
	}
	return sum / float64(m.K)
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// Importances returns nil: distance to neighbors has no per-feature
// decomposition.
func (m *KNN) Importances() []float64 { return nil }

func (m *KNN) Family() string { return FamilyKNN }

func (m *KNN) Params() map[string]float64 { return map[string]float64{"k": float64(m.K)} }
