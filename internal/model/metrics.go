package model

import (
	"fmt"
	"math"
)

// Metric names accepted by the training plan.
const (
	MetricMSE  = "mse"
	MetricRMSE = "rmse"
	MetricMAE  = "mae"
	MetricR2   = "r2"
)

// MSE returns the mean squared error.
func MSE(actual, predicted []float64) (float64, error) {
	if err := checkMetricInputs(actual, predicted); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return sum / float64(len(actual)), nil
}

// RMSE is defined as the square root of MSE, exactly.
func RMSE(actual, predicted []float64) (float64, error) {
	mse, err := MSE(actual, predicted)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE returns the mean absolute error.
func MAE(actual, predicted []float64) (float64, error) {
	if err := checkMetricInputs(actual, predicted); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual)), nil
}

// R2 returns the coefficient of determination. When the actuals have zero
// variance the statistic is undefined; this returns 1 for a perfect fit and
// 0 otherwise.
func R2(actual, predicted []float64) (float64, error) {
	if err := checkMetricInputs(actual, predicted); err != nil {
		return 0, err
	}
	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))

	ssRes := 0.0
	ssTot := 0.0
	for i := range actual {
		res := actual[i] - predicted[i]
		ssRes += res * res
		dev := actual[i] - mean
		ssTot += dev * dev
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

// Score evaluates the named metric.
func Score(metric string, actual, predicted []float64) (float64, error) {
	switch metric {
	case MetricMSE:
		return MSE(actual, predicted)
	case MetricRMSE:
		return RMSE(actual, predicted)
	case MetricMAE:
		return MAE(actual, predicted)
	case MetricR2:
		return R2(actual, predicted)
	default:
		return 0, fmt.Errorf("unknown metric %q", metric)
	}
}

func checkMetricInputs(actual, predicted []float64) error {
	if len(actual) == 0 {
		return fmt.Errorf("no observations")
	}
	if len(actual) != len(predicted) {
		return fmt.Errorf("length mismatch: %d actual vs %d predicted", len(actual), len(predicted))
	}
	return nil
}
