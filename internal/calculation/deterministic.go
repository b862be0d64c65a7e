package calculation

import "time"

func defaultSeed() int64 { return time.Now().UnixNano() }

// seedFunc returns a pseudo-random seed (override for deterministic tests).
var seedFunc = defaultSeed

// SetSeedFunc overrides the seed provider (use only in tests). nil restores the clock.
func SetSeedFunc(f func() int64) {
	if f == nil {
		f = defaultSeed
	}
	seedFunc = f
}

// ResolveSeed returns seed, or a fresh one when seed is zero.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return seedFunc()
}
