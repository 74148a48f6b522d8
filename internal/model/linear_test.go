package model_test

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"marquee/internal/model"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestLinearRecoversExactRelationship(t *testing.T) {
	// y = 3 + 2*x1 - x2, no noise.
	features := mat.NewDense(5, 2, []float64{
		1, 0,
		2, 1,
		3, 5,
		4, 2,
		5, 8,
	})
	target := []float64{5, 6, 4, 9, 5}

	m := model.NewLinear()
	if err := m.Fit(features, target); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	if !almostEqual(m.Intercept, 3, 1e-8) {
		t.Fatalf("intercept = %v, want 3", m.Intercept)
	}
	if !almostEqual(m.Coefficients[0], 2, 1e-8) || !almostEqual(m.Coefficients[1], -1, 1e-8) {
		t.Fatalf("coefficients = %v, want [2 -1]", m.Coefficients)
	}

	predictions, err := m.Predict(features)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	for i, want := range target {
		if !almostEqual(predictions[i], want, 1e-8) {
			t.Fatalf("prediction[%d] = %v, want %v", i, predictions[i], want)
		}
	}
}

func TestLinearSingularSystemFails(t *testing.T) {
	// Second column is an exact copy of the first, so the normal equations
	// are singular.
	features := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	target := []float64{1, 2, 3, 4}

	m := model.NewLinear()
	if err := m.Fit(features, target); err == nil {
		t.Fatal("expected fit error for collinear features")
	}
}

func TestRidgeHandlesCollinearFeatures(t *testing.T) {
	features := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
		4, 4,
	})
	target := []float64{2, 4, 6, 8}

	m := model.NewRidge(1.0)
	if err := m.Fit(features, target); err != nil {
		t.Fatalf("ridge should tolerate collinearity: %v", err)
	}
	predictions, err := m.Predict(features)
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	// Shrinkage keeps it close, not exact.
	for i, want := range target {
		if !almostEqual(predictions[i], want, 1.0) {
			t.Fatalf("prediction[%d] = %v too far from %v", i, predictions[i], want)
		}
	}
}

func TestRidgeShrinksTowardZero(t *testing.T) {
	features := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
	target := []float64{2, 4, 6, 8, 10, 12}

	small := model.NewRidge(0.001)
	large := model.NewRidge(1000)
	if err := small.Fit(features, target); err != nil {
		t.Fatalf("small-alpha fit: %v", err)
	}
	if err := large.Fit(features, target); err != nil {
		t.Fatalf("large-alpha fit: %v", err)
	}
	if math.Abs(large.Coefficients[0]) >= math.Abs(small.Coefficients[0]) {
		t.Fatalf("larger alpha should shrink the slope: %v vs %v", large.Coefficients[0], small.Coefficients[0])
	}
}

func TestImportancesAreAbsoluteCoefficients(t *testing.T) {
	features := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 8,
		3, 7,
		4, 4,
	})
	target := []float64{9, 10, 11, 12}

	m := model.NewLinear()
	if err := m.Fit(features, target); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}
	importances := m.Importances()
	if len(importances) != 2 {
		t.Fatalf("expected 2 importances, got %v", importances)
	}
	for i, v := range importances {
		if v < 0 {
			t.Fatalf("importance[%d] = %v must be non-negative", i, v)
		}
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	features := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	target := []float64{1, 2, 3}
	m := model.NewLinear()
	if err := m.Fit(features, target); err != nil {
		t.Fatalf("Fit returned error: %v", err)
	}

	wrong := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	if _, err := m.Predict(wrong); err == nil || !strings.Contains(err.Error(), "feature count") {
		t.Fatalf("expected dimension error, got %v", err)
	}
}

func TestNewFactory(t *testing.T) {
	if _, err := model.New(model.FamilyLinear, nil); err != nil {
		t.Fatalf("linear factory: %v", err)
	}
	if _, err := model.New(model.FamilyRidge, map[string]float64{"alpha": 0.5}); err != nil {
		t.Fatalf("ridge factory: %v", err)
	}
	if _, err := model.New(model.FamilyRidge, nil); err == nil {
		t.Fatal("ridge without alpha should fail")
	}
	if _, err := model.New(model.FamilyKNN, map[string]float64{"k": 2.5}); err == nil {
		t.Fatal("fractional k should fail")
	}
	if _, err := model.New("forest", nil); err == nil {
		t.Fatal("unknown family should fail")
	}
}
