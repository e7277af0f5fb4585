// Package reducers provides the built-in document slices.
//
// Every reducer accepts its slice as `any` because persisted documents come back
// from JSON with generic types (float64, []any, map[string]any). Slices are
// normalised with mapstructure before use and unknown actions return the slice
// unchanged.
package reducers
