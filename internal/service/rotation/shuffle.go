package rotation

import (
	"math/rand/v2"

	"github.com/zhouzirui/showcase/backend/internal/model/testimonial"
)

// shuffle permutes items in place (Fisher–Yates).
func shuffle(rng *rand.Rand, items []testimonial.Testimonial) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// NewRand returns a PCG source seeded from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
