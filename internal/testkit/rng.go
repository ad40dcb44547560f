package testkit

import (
	"math/rand/v2"

	"budgetplan/ports"
)

// RNGAdapter implements ports.RNGPort with PCG streams keyed by name
type RNGAdapter struct{}

// NewRNGAdapter creates a new RNG adapter
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{}
}

var _ ports.RNGPort = (*RNGAdapter)(nil)

// Stream creates a deterministic RNG stream for a named table
func (r *RNGAdapter) Stream(name string, seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(hashString(name))))
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2
	}
	return hash
}
