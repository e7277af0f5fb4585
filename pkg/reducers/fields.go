package reducers

import (
	"maps"

	"github.com/aretw0/rewind/pkg/domain"
)

type fieldPayload struct {
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
}

// Fields keeps a flat key/value map. "set" and "unset" change one key,
// "clear" empties the map. The input map is never modified.
func Fields(slice any, action domain.Action) any {
	current, _ := slice.(map[string]any)

	switch action.Type {
	case domain.ActionSet:
		var p fieldPayload
		if err := decodePayload(action.Payload, &p); err != nil || p.Key == "" {
			return orEmpty(current)
		}
		next := maps.Clone(current)
		if next == nil {
			next = make(map[string]any)
		}
		next[p.Key] = p.Value
		return next

	case domain.ActionUnset:
		var p fieldPayload
		if err := decodePayload(action.Payload, &p); err != nil {
			return orEmpty(current)
		}
		if _, ok := current[p.Key]; !ok {
			return orEmpty(current)
		}
		next := maps.Clone(current)
		delete(next, p.Key)
		return next

	case domain.ActionClear:
		return map[string]any{}
	}

	return orEmpty(current)
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
