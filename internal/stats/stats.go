package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev returns the sample standard deviation, or 0 when fewer than two
// values exist.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Quantile returns the p-quantile (0 <= p <= 1) using linear interpolation,
// matching the quartile convention the pipeline's fences are defined
// against.
func Quantile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("quantile of empty slice")
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("quantile p=%v out of [0,1]", p)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil), nil
}

// Median returns the 0.5-quantile, or 0 for an empty slice.
func Median(values []float64) float64 {
	m, err := Quantile(values, 0.5)
	if err != nil {
		return 0
	}
	return m
}

// Quartiles returns Q1 and Q3.
func Quartiles(values []float64) (q1, q3 float64, err error) {
	if len(values) == 0 {
		return 0, 0, fmt.Errorf("quartiles of empty slice")
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	return q1, q3, nil
}

// Pearson returns the Pearson correlation coefficient between x and y.
// Returns 0 when either side has no variance (the coefficient is undefined
// there, and a selection criterion should treat such columns as
// uninformative).
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("pearson: length mismatch %d vs %d", len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("pearson: need at least 2 observations")
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, nil
	}
	return r, nil
}

// Variance returns the sample variance, or 0 when fewer than two values
// exist.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}

// Summary bundles the descriptive statistics the insights report publishes
// for the holdout target.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe computes a Summary. An empty input yields a zero Summary.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Summary{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		StdDev: StdDev(values),
		Min:    floats.Min(sorted),
		Q1:     stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		Max:    floats.Max(sorted),
	}
}

// Mode returns the most frequent value among the provided cells, breaking
// ties toward the lexicographically smallest value so imputation is
// deterministic.
func Mode(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := ""
	bestCount := -1
	for v, count := range counts {
		if count > bestCount || (count == bestCount && v < best) {
			best = v
			bestCount = count
		}
	}
	return best, true
}
