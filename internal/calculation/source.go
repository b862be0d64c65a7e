package calculation

import (
	"errors"
	"math/rand"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// ErrMissingSequence is returned when a source cannot supply a full path.
var ErrMissingSequence = errors.New("missing market sequence")

// Unlimited is the iteration ceiling of a source that never runs out of paths.
const Unlimited = -1

// ROISource supplies one market path per iteration.
type ROISource interface {
	// MaxSupportedIterations returns the most distinct paths of the given
	// length the source can produce, or Unlimited.
	MaxSupportedIterations(years int) int
	// SequenceFor returns the path for an iteration. The same iteration and
	// years always yield the same path.
	SequenceFor(iteration, years int) ([]domain.ROI, error)
}

// IterationRand returns a generator seeded from (seed, iteration) only, so an
// iteration's draws do not depend on how many other iterations run.
func IterationRand(seed int64, iteration int) *rand.Rand {
	mixed := uint64(seed) + uint64(iteration+1)*0x9E3779B97F4A7C15
	mixed ^= mixed >> 31
	return rand.New(rand.NewSource(int64(mixed)))
}
