package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Linear is an ordinary-least-squares regressor fit via the normal
// equations. A singular system (collinear features) is a fit error; the
// training stage treats that as a convergence failure for the candidate.
type Linear struct {
	Intercept    float64
	Coefficients []float64
}

// NewLinear returns an unfitted OLS regressor.
func NewLinear() *Linear {
	return &Linear{}
}

func (l *Linear) Fit(features *mat.Dense, target []float64) error {
	intercept, coefficients, err := solveLeastSquares(features, target, 0)
	if err != nil {
		return err
	}
	l.Intercept = intercept
	l.Coefficients = coefficients
	return nil
}

func (l *Linear) Predict(features *mat.Dense) ([]float64, error) {
	return predictAffine(features, l.Intercept, l.Coefficients)
}

// Importances are absolute coefficient magnitudes, intercept excluded.
func (l *Linear) Importances() []float64 {
	return absSlice(l.Coefficients)
}

func (l *Linear) Family() string { return FamilyLinear }

func (l *Linear) Params() map[string]float64 { return map[string]float64{} }

// Ridge is an L2-regularized least-squares regressor. The penalty never
// applies to the intercept.
type Ridge struct {
	Alpha        float64
	Intercept    float64
	Coefficients []float64
}

// NewRidge returns an unfitted ridge regressor with the given penalty.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{Alpha: alpha}
}

func (r *Ridge) Fit(features *mat.Dense, target []float64) error {
	intercept, coefficients, err := solveLeastSquares(features, target, r.Alpha)
	if err != nil {
		return err
	}
	r.Intercept = intercept
	r.Coefficients = coefficients
	return nil
}

func (r *Ridge) Predict(features *mat.Dense) ([]float64, error) {
	return predictAffine(features, r.Intercept, r.Coefficients)
}

// Importances are absolute coefficient magnitudes, intercept excluded.
func (r *Ridge) Importances() []float64 {
	return absSlice(r.Coefficients)
}

func (r *Ridge) Family() string { return FamilyRidge }

func (r *Ridge) Params() map[string]float64 { return map[string]float64{"alpha": r.Alpha} }

// solveLeastSquares solves (XᵀX + αI)β = Xᵀy over the bias-augmented design
// matrix, with the intercept row unpenalized. alpha 0 is plain OLS.
func solveLeastSquares(features *mat.Dense, target []float64, alpha float64) (float64, []float64, error) {
	rows, cols, err := checkTrainingShape(features, target)
	if err != nil {
		return 0, nil, err
	}

	design := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < cols; j++ {
			design.Set(i, j+1, features.At(i, j))
		}
	}

	var gram mat.Dense
	gram.Mul(design.T(), design)
	if alpha > 0 {
		for j := 1; j <= cols; j++ {
			gram.Set(j, j, gram.At(j, j)+alpha)
		}
	}

	y := mat.NewVecDense(rows, append([]float64(nil), target...))
	var moment mat.VecDense
	moment.MulVec(design.T(), y)

	var solution mat.VecDense
	if err := solution.SolveVec(&gram, &moment); err != nil {
		return 0, nil, fmt.Errorf("normal equations: %w", err)
	}

	coefficients := make([]float64, cols)
	for j := 0; j < cols; j++ {
		coefficients[j] = solution.AtVec(j + 1)
	}
	return solution.AtVec(0), coefficients, nil
}

func predictAffine(features *mat.Dense, intercept float64, coefficients []float64) ([]float64, error) {
	if coefficients == nil {
		return nil, fmt.Errorf("model is not fitted")
	}
	rows, cols := features.Dims()
	if cols != len(coefficients) {
		return nil, fmt.Errorf("feature count %d does not match fitted %d", cols, len(coefficients))
	}
	predictions := make([]float64, rows)
	for i := 0; i < rows; i++ {
		sum := intercept
		for j := 0; j < cols; j++ {
			sum += features.At(i, j) * coefficients[j]
		}
		predictions[i] = sum
	}
	return predictions, nil
}

func absSlice(values []float64) []float64 {
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}
	return out
}
