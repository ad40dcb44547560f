package ports

import (
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for deterministic scenarios
type RNGPort interface {
	// Stream returns a generator for a named table. The same name and seed
	// always yield the same sequence; different names yield independent ones.
	Stream(name string, seed uint64) *rand.Rand
}
