package training

import "sort"

// expandGrid enumerates the cartesian product of a hyperparameter grid.
// Parameters iterate in sorted name order so the search is deterministic.
// An empty grid yields the single empty point.
func expandGrid(grid map[string][]float64) []map[string]float64 {
	names := make([]string, 0, len(grid))
	for name := range grid {
		names = append(names, name)
	}
	sort.Strings(names)

	points := []map[string]float64{{}}
	for _, name := range names {
		values := grid[name]
		next := make([]map[string]float64, 0, len(points)*len(values))
		for _, point := range points {
			for _, value := range values {
				expanded := make(map[string]float64, len(point)+1)
				for k, v := range point {
					expanded[k] = v
				}
				expanded[name] = value
				next = append(next, expanded)
			}
		}
		points = next
	}
	return points
}
