package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Model families understood by the training stage.
const (
	FamilyLinear = "linear"
	FamilyRidge  = "ridge"
	FamilyKNN    = "knn"
)

// Regressor is a trainable predictor over a fixed feature schema.
//
// Fit consumes a feature matrix (one row per record) and the aligned target
// slice. Predict returns one prediction per input row. Importances returns
// per-feature scores aligned with the training feature order, or nil when
// the family exposes none.
type Regressor interface {
	Fit(features *mat.Dense, target []float64) error
	Predict(features *mat.Dense) ([]float64, error)
	Importances() []float64
	Family() string
	Params() map[string]float64
}

// New constructs an unfitted regressor for a family and hyperparameter
// point.
func New(family string, params map[string]float64) (Regressor, error) {
	switch family {
	case FamilyLinear:
		return NewLinear(), nil
	case FamilyRidge:
		alpha, ok := params["alpha"]
		if !ok {
			return nil, fmt.Errorf("ridge requires an alpha parameter")
		}
		if alpha <= 0 {
			return nil, fmt.Errorf("ridge alpha %v must be positive", alpha)
		}
		return NewRidge(alpha), nil
	case FamilyKNN:
		k, ok := params["k"]
		if !ok {
			return nil, fmt.Errorf("knn requires a k parameter")
		}
		if k < 1 || k != math.Trunc(k) {
			return nil, fmt.Errorf("knn k %v must be a positive integer", k)
		}
		return NewKNN(int(k)), nil
	default:
		return nil, fmt.Errorf("unknown model family %q", family)
	}
}

func checkTrainingShape(features *mat.Dense, target []float64) (rows, cols int, err error) {
	if features == nil {
		return 0, 0, fmt.Errorf("nil feature matrix")
	}
	rows, cols = features.Dims()
	if rows == 0 || cols == 0 {
		return 0, 0, fmt.Errorf("empty feature matrix (%dx%d)", rows, cols)
	}
	if len(target) != rows {
		return 0, 0, fmt.Errorf("target length %d does not match %d feature rows", len(target), rows)
	}
	return rows, cols, nil
}
