package dataset

import (
	"encoding/json"
	"fmt"
)

// ColumnProfile summarizes one column of an ingested dataset.
type ColumnProfile struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Missing  int        `json:"missing"`
	Distinct int        `json:"distinct"`
}

// Profile is the ingest stage's record of what it observed: inferred column
// types, missingness, and how many raw rows were dropped as structurally
// unparsable. It rides on the run ledger as JSON.
type Profile struct {
	RowCount    int             `json:"row_count"`
	DroppedRows int             `json:"dropped_rows"`
	Columns     []ColumnProfile `json:"columns"`
}

// BuildProfile computes a Profile for a typed table.
func BuildProfile(t *Table, droppedRows int) Profile {
	profile := Profile{
		RowCount:    t.RowCount(),
		DroppedRows: droppedRows,
		Columns:     make([]ColumnProfile, len(t.Columns)),
	}
	for idx, col := range t.Columns {
		missing := 0
		distinct := make(map[string]struct{})
		for _, row := range t.Rows {
			cell := row[idx]
			if IsMissing(cell) {
				missing++
				continue
			}
			distinct[cell] = struct{}{}
		}
		profile.Columns[idx] = ColumnProfile{
			Name:     col.Name,
			Type:     col.Type,
			Missing:  missing,
			Distinct: len(distinct),
		}
	}
	return profile
}

// Column returns the profile entry for the named column, if present.
func (p Profile) Column(name string) (ColumnProfile, bool) {
	for _, col := range p.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnProfile{}, false
}

// EncodeJSON renders the profile for ledger storage.
func (p Profile) EncodeJSON() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	return string(data), nil
}

// DecodeProfile parses a ledger profile string.
func DecodeProfile(raw string) (Profile, error) {
	var profile Profile
	if raw == "" {
		return profile, nil
	}
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return profile, nil
}
