package history

import "maps"

// State is a composite state made of named slices.
type State map[string]any

// Combine builds a reducer over State from one reducer per slice.
// The set of slices is fixed when Combine is called. Every sub-reducer receives
// every action, and the returned State always holds exactly those keys.
func Combine[A any](slices map[string]Reducer[any, A]) Reducer[State, A] {
	fixed := maps.Clone(slices)

	return func(state State, action A) State {
		next := make(State, len(fixed))
		for key, reduce := range fixed {
			next[key] = reduce(state[key], action)
		}
		return next
	}
}

// Slice adapts a typed reducer for use with Combine.
// An absent slice is handed to r as the zero S.
func Slice[S, A any](r Reducer[S, A]) Reducer[any, A] {
	return func(slice any, action A) any {
		return r(as[S](slice), action)
	}
}

// Seed returns a State holding exactly the keys of slices, taking values from
// initial where present. Keys unknown to slices are dropped.
func Seed[A any](slices map[string]Reducer[any, A], initial State) State {
	seeded := make(State, len(slices))
	for key := range slices {
		seeded[key] = initial[key]
	}
	return seeded
}

func as[T any](v any) T {
	if t, ok := v.(T); ok {
		return t
	}
	var zero T
	return zero
}
