package features

import (
	"fmt"

	"marquee/internal/stats"
)

// ScalerSpec records the fitted parameters for one scaled column so the
// transform is reproducible. A zero Scale marks a constant column left
// untouched.
type ScalerSpec struct {
	Column string  `json:"column"`
	Method string  `json:"method"`
	Center float64 `json:"center"`
	Scale  float64 `json:"scale"`
}

// fitScaler fits the configured method over a column's values.
func fitScaler(column, method string, values []float64) (ScalerSpec, error) {
	spec := ScalerSpec{Column: column, Method: method}
	switch method {
	case "standard":
		spec.Center = stats.Mean(values)
		spec.Scale = stats.StdDev(values)
	case "minmax":
		min, max := values[0], values[0]
		for _, v := range values {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		spec.Center = min
		spec.Scale = max - min
	case "robust":
		spec.Center = stats.Median(values)
		q1, q3, err := stats.Quartiles(values)
		if err != nil {
			return ScalerSpec{}, fmt.Errorf("fit robust scaler for %q: %w", column, err)
		}
		spec.Scale = q3 - q1
	default:
		return ScalerSpec{}, fmt.Errorf("unknown scaling method %q", method)
	}
	return spec, nil
}

// apply transforms values in place. Constant columns pass through unchanged.
func (s ScalerSpec) apply(values []float64) {
	if s.Scale == 0 {
		return
	}
	for i, v := range values {
		values[i] = (v - s.Center) / s.Scale
	}
}
