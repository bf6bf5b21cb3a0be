package utils

import (
	"encoding/binary"
	"math/rand"

	"github.com/google/uuid"
)

// Shuffle returns a new slice holding the elements of ids in Fisher–Yates
// order drawn from the given source. The input is never modified.
func Shuffle(ids []uuid.UUID, rng *rand.Rand) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	for i := len(out) - 1; i >= 1; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Permutation returns a Fisher–Yates permutation of the indexes [0, n).
func Permutation(n int, rng *rand.Rand) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	for i := n - 1; i >= 1; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// OptionOrder derives the frozen option permutation for one question of a
// submission. The sub-seed mixes the submission's shuffle seed with the
// question ID, so every question gets an independent order and a resumed
// attempt reconstructs the exact permutation the learner first saw.
func OptionOrder(shuffleSeed int64, questionID uuid.UUID, n int) []int {
	sub := shuffleSeed ^ int64(binary.BigEndian.Uint64(questionID[:8]))
	return Permutation(n, rand.New(rand.NewSource(sub)))
}
