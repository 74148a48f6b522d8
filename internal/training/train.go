package training

import (
	"fmt"
	"sort"
	"time"

	"log/slog"

	"gonum.org/v1/gonum/mat"

	"marquee/internal/features"
	"marquee/internal/logging"
	"marquee/internal/model"
	"marquee/internal/plan"
)

// CandidateResult is one grid point's cross-validated outcome. Excluded
// entries record why the point could not be fit; they never win selection.
type CandidateResult struct {
	Family   string             `json:"family"`
	Params   map[string]float64 `json:"params,omitempty"`
	Score    float64            `json:"score,omitempty"`
	Folds    int                `json:"folds,omitempty"`
	Excluded bool               `json:"excluded,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Outcome is a fitted winner plus the metadata that will be persisted
// beside the model blob.
type Outcome struct {
	Model model.Regressor
	Meta  Metadata
}

// Train splits the feature dataset, cross-validates every candidate grid
// point over the training partition, selects the best by the plan's declared
// metric and mode, and refits the winner on the full training partition.
// Grid points that fail to fit are excluded and reported, not fatal; Train
// errors only when no point survives.
func Train(built *features.Built, spec plan.Training, logger *slog.Logger) (*Outcome, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(spec.Candidates) == 0 {
		return nil, fmt.Errorf("no candidate models declared")
	}

	split, err := NewSplit(len(built.Matrix), spec.SplitRatio, spec.Seed)
	if err != nil {
		return nil, err
	}
	folds, err := KFold(split.Train, spec.Folds, spec.Seed)
	if err != nil {
		return nil, err
	}

	var results []CandidateResult
	for _, candidate := range spec.Candidates {
		for _, point := range expandGrid(candidate.Grid) {
			result := CandidateResult{Family: candidate.Family, Params: point, Folds: spec.Folds}
			score, err := crossValidate(built, candidate.Family, point, folds, spec.Metric)
			if err != nil {
				result.Excluded = true
				result.Error = err.Error()
				logger.Warn("candidate excluded from selection",
					logging.String("family", candidate.Family),
					logging.Any("params", point),
					logging.Error(err),
				)
			} else {
				result.Score = score
			}
			results = append(results, result)
		}
	}

	best, err := pickBest(results, spec.Mode)
	if err != nil {
		return nil, err
	}
	winner := results[best]

	regressor, err := model.New(winner.Family, winner.Params)
	if err != nil {
		return nil, err
	}
	trainX, trainY := subset(built, split.Train)
	if err := regressor.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("refit winning candidate %s: %w", winner.Family, err)
	}

	holdout := append([]int(nil), split.Holdout...)
	sort.Ints(holdout)

	return &Outcome{
		Model: regressor,
		Meta: Metadata{
			Family:      winner.Family,
			Params:      winner.Params,
			Metric:      spec.Metric,
			Mode:        spec.Mode,
			Score:       winner.Score,
			Seed:        spec.Seed,
			SplitRatio:  spec.SplitRatio,
			Folds:       spec.Folds,
			TrainRows:   len(split.Train),
			HoldoutRows: len(holdout),
			Holdout:     holdout,
			Features:    append([]string(nil), built.Names...),
			Target:      built.Meta.Target,
			Candidates:  results,
			TrainedAt:   time.Now().UTC(),
		},
	}, nil
}

// crossValidate fits one grid point on each fold complement and averages
// the per-fold metric over the held-out folds.
func crossValidate(built *features.Built, family string, params map[string]float64, folds [][]int, metric string) (float64, error) {
	total := 0.0
	for f := range folds {
		trainIdx := make([]int, 0, len(built.Matrix))
		for other := range folds {
			if other != f {
				trainIdx = append(trainIdx, folds[other]...)
			}
		}
		regressor, err := model.New(family, params)
		if err != nil {
			return 0, err
		}
		trainX, trainY := subset(built, trainIdx)
		if err := regressor.Fit(trainX, trainY); err != nil {
			return 0, fmt.Errorf("fold %d fit: %w", f+1, err)
		}
		foldX, foldY := subset(built, folds[f])
		predicted, err := regressor.Predict(foldX)
		if err != nil {
			return 0, fmt.Errorf("fold %d predict: %w", f+1, err)
		}
		score, err := model.Score(metric, foldY, predicted)
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total / float64(len(folds)), nil
}

// pickBest selects the surviving grid point with the best score under the
// declared comparison mode. Mode is explicit per the plan, never inferred
// from the metric name.
func pickBest(results []CandidateResult, mode string) (int, error) {
	if mode != "min" && mode != "max" {
		return 0, fmt.Errorf("unknown comparison mode %q", mode)
	}
	best := -1
	for i, result := range results {
		if result.Excluded {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		if mode == "min" && result.Score < results[best].Score {
			best = i
		}
		if mode == "max" && result.Score > results[best].Score {
			best = i
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("every candidate failed to fit")
	}
	return best, nil
}

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
