package training

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Metadata is the human-readable sidecar persisted beside the model blob:
// the winning candidate, the full cross-validation table, and the recorded
// split so evaluation consumes the exact holdout partition.
type Metadata struct {
	Family      string             `json:"family"`
	Params      map[string]float64 `json:"params,omitempty"`
	Metric      string             `json:"metric"`
	Mode        string             `json:"mode"`
	Score       float64            `json:"score"`
	Seed        int64              `json:"seed"`
	SplitRatio  float64            `json:"split_ratio"`
	Folds       int                `json:"folds"`
	TrainRows   int                `json:"train_rows"`
	HoldoutRows int                `json:"holdout_rows"`
	Holdout     []int              `json:"holdout"`
	Features    []string           `json:"features"`
	Target      string             `json:"target"`
	Candidates  []CandidateResult  `json:"candidates"`
	TrainedAt   time.Time          `json:"trained_at"`
}

// WriteMetadata persists the training metadata as indented JSON.
func WriteMetadata(path string, m Metadata) error {
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model metadata: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write model metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads metadata written by WriteMetadata.
func LoadMetadata(path string) (Metadata, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read model metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(payload, &m); err != nil {
		return Metadata{}, fmt.Errorf("decode model metadata: %w", err)
	}
	return m, nil
}
