package generator

import "math/rand"

// Weighted pairs a category with its relative sampling weight.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// WeightedChoice samples one category proportionally to its weight.
// Weights need not sum to one. options must not be empty.
func WeightedChoice[T any](r *rand.Rand, options []Weighted[T]) T {
	var total float64
	for _, o := range options {
		total += o.Weight
	}

	x := r.Float64() * total
	for _, o := range options {
		if x < o.Weight {
			return o.Value
		}
		x -= o.Weight
	}
	// floating point residue lands on the last category
	return options[len(options)-1].Value
}
