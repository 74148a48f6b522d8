package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"marquee/internal/features"
	"marquee/internal/model"
)

// Metrics are the holdout error measures. RMSE is the square root of MSE by
// construction.
type Metrics struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// Residual is one holdout record's prediction error.
type Residual struct {
	ID        string  `json:"id"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
	Residual  float64 `json:"residual"`
}

// Importance pairs a feature with its weight in the fitted model.
type Importance struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Report is the evaluation artifact: metrics, per-record residuals, and
// feature importances where the model family exposes them.
type Report struct {
	Family         string       `json:"family"`
	HoldoutRows    int          `json:"holdout_rows"`
	Metrics        Metrics      `json:"metrics"`
	Residuals      []Residual   `json:"residuals"`
	Importances    []Importance `json:"importances,omitempty"`
	ImportanceNote string       `json:"importance_note,omitempty"`
}

// Assess scores a fitted model against the holdout partition. It is a pure
// function of its inputs: the regressor is only asked to predict, never
// refit.
func Assess(regressor model.Regressor, built *features.Built, holdout []int) (*Report, error) {
	if len(holdout) == 0 {
		return nil, fmt.Errorf("empty holdout partition")
	}
	for _, idx := range holdout {
		if idx < 0 || idx >= len(built.Matrix) {
			return nil, fmt.Errorf("holdout index %d outside dataset of %d rows", idx, len(built.Matrix))
		}
	}

	holdX, actual := subset(built, holdout)
	predicted, err := regressor.Predict(holdX)
	if err != nil {
		return nil, fmt.Errorf("predict holdout: %w", err)
	}

	report := &Report{Family: regressor.Family(), HoldoutRows: len(holdout)}
	if report.Metrics.MSE, err = model.MSE(actual, predicted); err != nil {
		return nil, err
	}
	if report.Metrics.RMSE, err = model.RMSE(actual, predicted); err != nil {
		return nil, err
	}
	if report.Metrics.MAE, err = model.MAE(actual, predicted); err != nil {
		return nil, err
	}
	if report.Metrics.R2, err = model.R2(actual, predicted); err != nil {
		return nil, err
	}

	report.Residuals = make([]Residual, len(holdout))
	for i, idx := range holdout {
		report.Residuals[i] = Residual{
			ID:        built.IDs[idx],
			Actual:    actual[i],
			Predicted: predicted[i],
			Residual:  actual[i] - predicted[i],
		}
	}

	if weights := regressor.Importances(); weights != nil {
		if len(weights) != len(built.Names) {
			return nil, fmt.Errorf("model exposes %d importances for %d features", len(weights), len(built.Names))
		}
		report.Importances = make([]Importance, len(weights))
		for i, w := range weights {
			report.Importances[i] = Importance{Feature: built.Names[i], Weight: w}
		}
		sort.SliceStable(report.Importances, func(a, b int) bool {
			return report.Importances[a].Weight > report.Importances[b].Weight
		})
	} else {
		report.ImportanceNote = fmt.Sprintf("model family %s exposes no feature importances", regressor.Family())
	}
	return report, nil
}

// WriteReport persists the evaluation report as indented JSON.
func WriteReport(path string, report *Report) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode evaluation report: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write evaluation report: %w", err)
	}
	return nil
}

// LoadReport reads a report written by WriteReport.
func LoadReport(path string) (*Report, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read evaluation report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("decode evaluation report: %w", err)
	}
	return &report, nil
}
