// File: random.go
// Title: Seeded Random Source
// Description: Declares the integer-draw interface the scheduling core
//              consumes and the math/rand adapter the commands construct
//              from a fixed seed. The draw order per record is part of the
//              determinism contract and is documented on the chain builder.

package schedule

import "math/rand"

// IntSource draws integers from an externally seeded generator. The core
// never seeds or reseeds; reproducibility is the caller's concern.
type IntSource interface {
	// IntBetween returns a uniform integer in [low, high], both inclusive.
	IntBetween(low, high int) int
}

// SeededSource adapts a math/rand generator to IntSource.
type SeededSource struct {
	rng *rand.Rand
}

// NewSeededSource creates a SeededSource with the given fixed seed.
func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{rng: rand.New(rand.NewSource(seed))}
}

// IntBetween implements IntSource.
func (s *SeededSource) IntBetween(low, high int) int {
	if high <= low {
		return low
	}
	return low + s.rng.Intn(high-low+1)
}
