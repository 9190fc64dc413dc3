package generator

import "time"

// Config drives the synthetic claim generator.
type Config struct {
	// Seed for the random source. Zero seeds from the current time.
	Seed int64
	// Now overrides the wall clock; nil uses time.Now.
	Now func() time.Time
}

// DefaultConfig returns settings for a non-reproducible, wall-clock driven generator.
func DefaultConfig() Config {
	return Config{
		Seed: 0,
		Now:  time.Now,
	}
}
