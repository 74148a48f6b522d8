package training

import (
	"fmt"
	"math"
	"math/rand"
)

// Split is a seeded partition of row indices into disjoint training and
// holdout subsets whose union is the full index range.
type Split struct {
	Train   []int
	Holdout []int
}

// NewSplit partitions n rows. ratio is the training fraction; the training
// size is rounded to the nearest row, with at least one row on each side.
func NewSplit(n int, ratio float64, seed int64) (Split, error) {
	if n < 2 {
		return Split{}, fmt.Errorf("cannot split %d rows", n)
	}
	if ratio <= 0 || ratio >= 1 {
		return Split{}, fmt.Errorf("split ratio %v must be between 0 and 1 exclusive", ratio)
	}
	trainCount := int(math.Round(ratio * float64(n)))
	if trainCount < 1 {
		trainCount = 1
	}
	if trainCount > n-1 {
		trainCount = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	split := Split{
		Train:   append([]int(nil), perm[:trainCount]...),
		Holdout: append([]int(nil), perm[trainCount:]...),
	}
	return split, nil
}

// KFold assigns the given indices round-robin across folds after a seeded
// shuffle. Every index lands in exactly one fold.
func KFold(indices []int, folds int, seed int64) ([][]int, error) {
	if folds < 2 {
		return nil, fmt.Errorf("cross-validation needs at least 2 folds, got %d", folds)
	}
	if len(indices) < folds {
		return nil, fmt.Errorf("cannot form %d folds from %d rows", folds, len(indices))
	}
	shuffled := append([]int(nil), indices...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	out := make([][]int, folds)
	for i, idx := range shuffled {
		fold := i % folds
		out[fold] = append(out[fold], idx)
	}
	return out, nil
}
