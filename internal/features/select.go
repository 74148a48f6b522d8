package features

import (
	"fmt"
	"math"
	"sort"

	"marquee/internal/plan"
	"marquee/internal/stats"
)

// SelectionSpec records which features survived the plan's criterion.
type SelectionSpec struct {
	Method    string   `json:"method"`
	K         int      `json:"k,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`
	Kept      []string `json:"kept"`
	Dropped   []string `json:"dropped,omitempty"`
}

// selectFeatures filters the candidate columns per the plan. Survivors keep
// their original order so the emitted schema is stable regardless of score
// ordering.
func selectFeatures(columns []featureColumn, target []float64, criterion plan.Selection) ([]featureColumn, SelectionSpec, error) {
	spec := SelectionSpec{Method: criterion.Method, K: criterion.K, Threshold: criterion.Threshold}

	keep := make(map[string]struct{}, len(columns))
	switch criterion.Method {
	case "none":
		for _, column := range columns {
			keep[column.Name] = struct{}{}
		}
	case "variance_threshold":
		for _, column := range columns {
			if stats.Variance(column.Values) > criterion.Threshold {
				keep[column.Name] = struct{}{}
			}
		}
	case "top_k_correlation":
		type scored struct {
			name  string
			score float64
		}
		ranked := make([]scored, 0, len(columns))
		for _, column := range columns {
			r, err := stats.Pearson(column.Values, target)
			if err != nil {
				return nil, SelectionSpec{}, fmt.Errorf("correlation for %q: %w", column.Name, err)
			}
			ranked = append(ranked, scored{name: column.Name, score: math.Abs(r)})
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		limit := criterion.K
		if limit > len(ranked) {
			limit = len(ranked)
		}
		for _, entry := range ranked[:limit] {
			keep[entry.name] = struct{}{}
		}
	default:
		return nil, SelectionSpec{}, fmt.Errorf("unknown selection method %q", criterion.Method)
	}

	selected := make([]featureColumn, 0, len(keep))
	for _, column := range columns {
		if _, ok := keep[column.Name]; ok {
			selected = append(selected, column)
			spec.Kept = append(spec.Kept, column.Name)
		} else {
			spec.Dropped = append(spec.Dropped, column.Name)
		}
	}
	if len(selected) == 0 {
		return nil, SelectionSpec{}, fmt.Errorf("selection %s removed every feature", criterion.Method)
	}
	return selected, spec, nil
}
