package model

import (
	"encoding/gob"
	"fmt"
	"os"
)

func init() {
	gob.Register(&Linear{})
	gob.Register(&Ridge{})
	gob.Register(&KNN{})
}

// envelope carries the regressor through gob as an interface value so Load
// does not need to know the family in advance.
type envelope struct {
	Model Regressor
}

// Save persists a fitted regressor as an opaque blob. Human-readable
// training metadata belongs in the JSON sidecar, not here.
func Save(path string, r Regressor) error {
	if r == nil {
		return fmt.Errorf("save model: nil regressor")
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	if err := gob.NewEncoder(file).Encode(envelope{Model: r}); err != nil {
		file.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	return file.Close()
}

// Load restores a regressor saved by Save.
func Load(path string) (Regressor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer file.Close()

	var env envelope
	if err := gob.NewDecoder(file).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if env.Model == nil {
		return nil, fmt.Errorf("decode model: empty envelope")
	}
	return env.Model, nil
}
