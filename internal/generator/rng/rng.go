// Package rng holds the primitive randomizers every generator is built on.
//
// A Rand is not safe for concurrent use; a build owns exactly one.
package rng

import (
	"fmt"
	"math"
	"math/rand/v2"

	apperrors "legalaid-seeder/internal/common/errors"
)

type Rand struct {
	r *rand.Rand
}

// New returns a Rand seeded with seed. Seed 0 draws a random seed, so runs
// are only reproducible with an explicit non-zero seed.
func New(seed int64) *Rand {
	if seed == 0 {
		return &Rand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	s := uint64(seed)
	return &Rand{r: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

// Float returns a uniform value in [min, max).
func (r *Rand) Float(min, max float64) float64 {
	return r.r.Float64()*(max-min) + min
}

// Int returns a uniform integer in [min, max). When max <= min it returns min.
func (r *Rand) Int(min, max int) int {
	if max <= min {
		return min
	}
	return int(math.Floor(r.Float(float64(min), float64(max))))
}

// Chance is true with probability p.
func (r *Rand) Chance(p float64) bool {
	return r.r.Float64() < p
}

func (r *Rand) Bool() bool {
	return r.Chance(0.5)
}

// Index returns a uniform index into a collection of length n > 0.
func (r *Rand) Index(n int) int {
	return r.Int(0, n)
}

// PickOne returns a uniformly chosen element. A nil or empty slice is an
// InvalidArgument error flagged as empty input.
func PickOne[T any](r *Rand, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, apperrors.NewEmptyInputError("collection")
	}
	return items[r.Index(len(items))], nil
}

// PickMany returns n distinct elements of items. Asking for more elements
// than items holds, or a negative count, is an InvalidArgument error.
func PickMany[T any](r *Rand, items []T, n int) ([]T, error) {
	if n < 0 {
		return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("cannot pick %d elements", n))
	}
	if n > len(items) {
		return nil, apperrors.NewInvalidArgumentError(
			fmt.Sprintf("cannot pick %d distinct elements from a collection of %d", n, len(items)))
	}
	return Shuffle(r, items)[:n], nil
}

// Shuffle returns a shallow copy of items in uniformly random order.
// items is not modified.
func Shuffle[T any](r *Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)

	for i := len(out) - 1; i > 0; i-- {
		j := r.Int(0, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
