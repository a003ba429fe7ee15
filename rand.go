package main

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// One pseudo-random source per run, constructor-injected into the mutation
// context rather than hidden in a global. A fixed seed reproduces a full
// run bit for bit, which the test fixtures rely on.

// newRunSource builds the run's random source. Seed 0 means "draw a real
// seed"; any other value is used verbatim.
func newRunSource(seed int64) *mrand.Rand {
	if seed == 0 {
		var b [8]byte
		if _, err := rand.Read(b[:]); err == nil {
			seed = int64(binary.LittleEndian.Uint64(b[:]))
		}
		if seed == 0 {
			seed = 1
		}
	}
	return mrand.New(mrand.NewSource(seed))
}

// pickByte draws one byte uniformly from a whitelist.
func pickByte(rng *mrand.Rand, set []byte) byte {
	return set[rng.Intn(len(set))]
}

// pickOther draws a value from set different from cur; falls back to cur
// when the set has no alternative.
func pickOther(rng *mrand.Rand, set []byte, cur byte) byte {
	alt := make([]byte, 0, len(set))
	for _, b := range set {
		if b != cur {
			alt = append(alt, b)
		}
	}
	if len(alt) == 0 {
		return cur
	}
	return pickByte(rng, alt)
}

// shuffleBytes permutes b in place with an unbiased Fisher-Yates shuffle.
func shuffleBytes(rng *mrand.Rand, b []byte) {
	rng.Shuffle(len(b), func(i, j int) {
		b[i], b[j] = b[j], b[i]
	})
}
