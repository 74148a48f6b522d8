package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Missing-value sentinels, compared case-insensitively after trimming.
var missingSentinels = map[string]struct{}{
	"":     {},
	"na":   {},
	"nan":  {},
	"null": {},
}

// IsMissing reports whether a cell represents an absent value.
func IsMissing(cell string) bool {
	_, ok := missingSentinels[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// ParseNumeric parses a cell as a float64.
func ParseNumeric(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", cell)
	}
	return v, nil
}

// ParseDate parses a cell using the supported date layouts.
func ParseDate(cell string) (time.Time, error) {
	trimmed := strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a date: %q", cell)
}

// InferTypes assigns a type to every column: numeric when all non-missing
// cells parse as numbers, date when all parse as dates, categorical
// otherwise. A column with no observed values stays categorical.
func InferTypes(t *Table) {
	for idx := range t.Columns {
		t.Columns[idx].Type = inferColumnType(t, idx)
	}
}

func inferColumnType(t *Table, idx int) ColumnType {
	observed := 0
	numeric := true
	date := true
	for _, row := range t.Rows {
		cell := row[idx]
		if IsMissing(cell) {
			continue
		}
		observed++
		if numeric {
			if _, err := ParseNumeric(cell); err != nil {
				numeric = false
			}
		}
		if date {
			if _, err := ParseDate(cell); err != nil {
				date = false
			}
		}
		if !numeric && !date {
			break
		}
	}
	switch {
	case observed == 0:
		return TypeCategorical
	case numeric:
		return TypeNumeric
	case date:
		return TypeDate
	default:
		return TypeCategorical
	}
}
