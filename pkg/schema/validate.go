package schema

import (
	"errors"
	"fmt"
	"sort"
)

// Schema maps keys to their expected types.
type Schema map[string]Type

// Parse builds a Schema from key to type-name pairs.
func Parse(types map[string]string) (Schema, error) {
	if len(types) == 0 {
		return nil, nil
	}
	s := make(Schema, len(types))
	for key, name := range types {
		t, err := ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		s[key] = t
	}
	return s, nil
}

// Check validates the present values of data. Errors are reported in key order.
func (s Schema) Check(data map[string]any) error {
	if len(s) == 0 {
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		if _, typed := s[k]; typed {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		if err := s[k].Check(data[k]); err != nil {
			errs = append(errs, &FieldError{Key: k, Reason: err.Error(), Value: data[k]})
		}
	}
	return errors.Join(errs...)
}

// Names returns the type name of every key.
func (s Schema) Names() map[string]string {
	out := make(map[string]string, len(s))
	for k, t := range s {
		out[k] = t.Name()
	}
	return out
}
