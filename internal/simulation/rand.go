package simulation

import (
	"math/rand/v2"
)

// NewRand returns a deterministic random source for seed
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// RandomSeed draws a fresh non-negative seed from the process-wide source
func RandomSeed() int64 {
	return rand.Int64()
}
