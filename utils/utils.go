package utils

import "golang.org/x/exp/constraints"

// Sum adds up a slice of numbers.
func Sum[T constraints.Integer | constraints.Float](values []T) T {
	var total T
	for _, v := range values {
		total += v
	}
	return total
}

// SumBy adds up the value extracted from every item.
func SumBy[S any, T constraints.Integer | constraints.Float](items []S, value func(S) T) T {
	var total T
	for _, item := range items {
		total += value(item)
	}
	return total
}
