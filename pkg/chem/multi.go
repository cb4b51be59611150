package chem

// Multi is a set of alternative values: exactly one of them is the true
// value. A Multi with one element is fully determined. Duplicates are kept.
type Multi[T any] []T

// Single returns a determined Multi.
func Single[T any](v T) Multi[T] {
	return Multi[T]{v}
}

// Product returns the Cartesian product of a and b, combining every pair
// with combine. The order is a-major.
func Product[T any](a, b Multi[T], combine func(T, T) T) Multi[T] {
	out := make(Multi[T], 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, combine(x, y))
		}
	}
	return out
}

// Map applies f to every alternative.
func (m Multi[T]) Map(f func(T) T) Multi[T] {
	out := make(Multi[T], len(m))
	for i, v := range m {
		out[i] = f(v)
	}
	return out
}

// Formulas is a set of alternative formulas.
type Formulas = Multi[Formula]

// Combine returns the Cartesian sum of two formula sets.
func Combine(a, b Formulas) Formulas {
	return Product(a, b, Formula.Add)
}

// AddTo adds f to every alternative of m.
func AddTo(m Formulas, f Formula) Formulas {
	return m.Map(func(x Formula) Formula { return x.Add(f) })
}
