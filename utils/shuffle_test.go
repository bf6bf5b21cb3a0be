package utils

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

func TestShuffleIsPermutation(t *testing.T) {
	ids := make([]uuid.UUID, 25)
	for i := range ids {
		ids[i] = uuid.New()
	}

	out := Shuffle(ids, rand.New(rand.NewSource(7)))
	if len(out) != len(ids) {
		t.Fatalf("expected %d elements, got %d", len(ids), len(out))
	}
	seen := make(map[uuid.UUID]bool, len(out))
	for _, id := range out {
		if seen[id] {
			t.Fatalf("duplicate id %s in shuffled output", id)
		}
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Fatalf("id %s lost in shuffle", id)
		}
	}
}

func TestShuffleDoesNotModifyInput(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	before := make([]uuid.UUID, len(ids))
	copy(before, ids)

	Shuffle(ids, rand.New(rand.NewSource(1)))
	for i := range ids {
		if ids[i] != before[i] {
			t.Fatal("input slice was modified")
		}
	}
}

func TestShuffleDeterministicPerSeed(t *testing.T) {
	ids := make([]uuid.UUID, 10)
	for i := range ids {
		ids[i] = uuid.New()
	}

	a := Shuffle(ids, rand.New(rand.NewSource(42)))
	b := Shuffle(ids, rand.New(rand.NewSource(42)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different orders at index %d", i)
		}
	}
}

func TestPermutationCoversAllIndexes(t *testing.T) {
	perm := Permutation(8, rand.New(rand.NewSource(3)))
	if len(perm) != 8 {
		t.Fatalf("expected 8 indexes, got %d", len(perm))
	}
	seen := make([]bool, 8)
	for _, i := range perm {
		if i < 0 || i >= 8 || seen[i] {
			t.Fatalf("invalid or repeated index %d", i)
		}
		seen[i] = true
	}
}

func TestOptionOrderStablePerSubmission(t *testing.T) {
	q := uuid.New()

	a := OptionOrder(12345, q, 5)
	b := OptionOrder(12345, q, 5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed and question must reconstruct the same order")
		}
	}
}

func TestOptionOrderIndependentAcrossQuestions(t *testing.T) {
	// With one shared seed, distinct questions should not all share a
	// permutation. Ten questions of six options colliding on the identity
	// order by chance is effectively impossible.
	seed := int64(99)
	identity := 0
	for i := 0; i < 10; i++ {
		perm := OptionOrder(seed, uuid.New(), 6)
		same := true
		for j, p := range perm {
			if p != j {
				same = false
				break
			}
		}
		if same {
			identity++
		}
	}
	if identity == 10 {
		t.Fatal("every question produced the identity order")
	}
}
