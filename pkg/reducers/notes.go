package reducers

import (
	"strings"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

type notePayload struct {
	Text string `mapstructure:"text"`
}

// Notes keeps an append-only list of strings. "note" appends, "clear" empties.
// Any other action returns the slice as given.
func Notes(slice any, action domain.Action) any {
	switch action.Type {
	case domain.ActionNote:
		var p notePayload
		if err := decodePayload(action.Payload, &p); err != nil {
			break
		}
		text := strings.TrimSpace(p.Text)
		if text == "" {
			break
		}
		var current []string
		if slice != nil {
			_ = mapstructure.WeakDecode(slice, &current)
		}
		next := make([]string, len(current), len(current)+1)
		copy(next, current)
		return append(next, text)

	case domain.ActionClear:
		return []string{}
	}

	if slice == nil {
		return []string{}
	}
	return slice
}
