package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Type checks a single value.
type Type interface {
	// Name returns the type as written in a type map (e.g. "string", "[int]").
	Name() string
	// Check reports why value does not conform, or nil.
	Check(value any) error
}

type scalar struct {
	name string
	ok   func(any) bool
}

func (t scalar) Name() string { return t.name }

func (t scalar) Check(value any) error {
	if !t.ok(value) {
		return fmt.Errorf("expected %s", t.name)
	}
	return nil
}

type sliceOf struct {
	elem Type
}

func (t sliceOf) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceOf) Check(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected %s", t.Name())
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Check(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// String accepts strings.
func String() Type {
	return scalar{name: "string", ok: func(v any) bool {
		_, ok := v.(string)
		return ok
	}}
}

// Int accepts integers, including whole float64 values from JSON.
func Int() Type {
	return scalar{name: "int", ok: func(v any) bool {
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return n == float64(int64(n))
		}
		return false
	}}
}

// Float accepts any number.
func Float() Type {
	return scalar{name: "float", ok: func(v any) bool {
		switch v.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
		return false
	}}
}

// Bool accepts booleans.
func Bool() Type {
	return scalar{name: "bool", ok: func(v any) bool {
		_, ok := v.(bool)
		return ok
	}}
}

// Slice accepts slices whose every element is elem.
func Slice(elem Type) Type {
	return sliceOf{elem: elem}
}

// ParseType reads a type name: string, int, float, bool, or [T] for a slice of T.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if inner, ok := strings.CutPrefix(s, "["); ok {
		inner, ok = strings.CutSuffix(inner, "]")
		if !ok {
			return nil, fmt.Errorf("unsupported type: %s", s)
		}
		elem, err := ParseType(inner)
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}

	switch s {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	}
	return nil, fmt.Errorf("unsupported type: %s", s)
}
