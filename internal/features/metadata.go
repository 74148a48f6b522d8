package features

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata is the fitted feature schema persisted beside features.csv. It is
// everything downstream stages need: the ordered feature names fix the
// vector dimensionality, the fitted specs make the transform reproducible,
// and the grouping columns let insights re-derive categorical views from the
// cleaned dataset without refitting.
type Metadata struct {
	IDColumn  string        `json:"id_column,omitempty"`
	Target    string        `json:"target"`
	Features  []string      `json:"features"`
	RowCount  int           `json:"row_count"`
	Derived   []DerivedSpec `json:"derived,omitempty"`
	Encoders  []EncoderSpec `json:"encoders,omitempty"`
	Scaling   string        `json:"scaling"`
	Scalers   []ScalerSpec  `json:"scalers,omitempty"`
	Fills     []FillSpec    `json:"fills,omitempty"`
	Selection SelectionSpec `json:"selection"`
	GroupBy   []string      `json:"group_by,omitempty"`
}

// DerivedByName looks up a fitted derived-feature spec.
func (m Metadata) DerivedByName(name string) (DerivedSpec, bool) {
	for _, spec := range m.Derived {
		if spec.Name == name {
			return spec, true
		}
	}
	return DerivedSpec{}, false
}

// WriteMetadata persists the metadata as indented JSON.
func WriteMetadata(path string, m Metadata) error {
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode feature metadata: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write feature metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads metadata written by WriteMetadata.
func LoadMetadata(path string) (Metadata, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read feature metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(payload, &m); err != nil {
		return Metadata{}, fmt.Errorf("decode feature metadata: %w", err)
	}
	return m, nil
}
