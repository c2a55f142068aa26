package datasets

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

const (
	// DefaultTrainRatio is the fraction of entries assigned to training.
	DefaultTrainRatio = 0.7
	// DefaultValRatio is the fraction of entries assigned to validation.
	DefaultValRatio = 0.15
	// DefaultTestOutput is the file the test partition is dumped to by the CLI.
	DefaultTestOutput = "test_data_list_total.json"
)

// ratioTolerance absorbs float rounding in sums like 0.7+0.3.
const ratioTolerance = 1e-9

// Partitions holds the result of Split. The three lists are disjoint and
// together are a permutation of the input.
type Partitions struct {
	Train []Entry `json:"train"`
	Val   []Entry `json:"val"`
	Test  []Entry `json:"test"`
}

// Sizes returns the number of entries in each partition.
func (p Partitions) Sizes() (train, val, test int) {
	return len(p.Train), len(p.Val), len(p.Test)
}

// ValidateRatios checks that both ratios are in [0, 1] and sum to at most 1.
// The test fraction is the remainder.
func ValidateRatios(trainRatio, valRatio float64) error {
	for _, r := range []struct {
		name  string
		value float64
	}{{"train", trainRatio}, {"val", valRatio}} {
		if math.IsNaN(r.value) || r.value < 0 || r.value > 1 {
			return fmt.Errorf("%s ratio %v not in [0, 1]: %w", r.name, r.value, ErrInvalidRatio)
		}
	}
	if trainRatio+valRatio > 1+ratioTolerance {
		return fmt.Errorf("train ratio %v + val ratio %v > 1: %w", trainRatio, valRatio, ErrInvalidRatio)
	}
	return nil
}

// Split shuffles a copy of entries with rng and cuts it at floor(N*train) and
// floor(N*train)+floor(N*val). The remainder is the test partition. A nil rng
// is seeded from the clock.
func Split(entries []Entry, trainRatio, valRatio float64, rng *rand.Rand) (Partitions, error) {
	if err := ValidateRatios(trainRatio, valRatio); err != nil {
		return Partitions{}, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	combined := append([]Entry(nil), entries...)
	rng.Shuffle(len(combined), func(i, j int) {
		combined[i], combined[j] = combined[j], combined[i]
	})

	n := len(combined)
	trainSize := int(float64(n) * trainRatio)
	valSize := int(float64(n) * valRatio)
	if trainSize+valSize > n {
		valSize = n - trainSize
	}
	valEnd := trainSize + valSize

	return Partitions{
		Train: combined[:trainSize:trainSize],
		Val:   combined[trainSize:valEnd:valEnd],
		Test:  combined[valEnd:],
	}, nil
}

// SplitAligned zips aligned lists and splits them. Misaligned lists return
// ErrMisaligned.
func SplitAligned(images, targets, texts []string, trainRatio, valRatio float64, rng *rand.Rand) (Partitions, error) {
	entries, err := Zip(images, targets, texts)
	if err != nil {
		return Partitions{}, err
	}
	return Split(entries, trainRatio, valRatio, rng)
}
