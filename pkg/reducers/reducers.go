package reducers

import (
	"github.com/aretw0/rewind/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// Slice names of the built-in reducers.
const (
	SliceCounter = "counter"
	SliceFields  = "fields"
	SliceNotes   = "notes"
)

// Default returns a registry holding every built-in slice.
func Default() *registry.Registry {
	r := registry.NewRegistry()
	r.Register(SliceCounter, Counter)
	r.Register(SliceFields, Fields)
	r.Register(SliceNotes, Notes)
	return r
}

// decodePayload decodes an action payload into out, accepting loosely typed
// input such as "3" for an int.
func decodePayload(payload map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}
