package reducers

import (
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

type amountPayload struct {
	Amount *int `mapstructure:"amount"`
}

// Counter keeps an integer. "add" and "subtract" move it by the payload's
// amount, or by one when no amount is given.
func Counter(slice any, action domain.Action) any {
	var n int
	if slice != nil {
		if err := mapstructure.WeakDecode(slice, &n); err != nil {
			n = 0
		}
	}

	switch action.Type {
	case domain.ActionAdd:
		return n + amount(action)
	case domain.ActionSubtract:
		return n - amount(action)
	}
	if slice == nil {
		return n
	}
	return slice
}

func amount(action domain.Action) int {
	var p amountPayload
	if err := decodePayload(action.Payload, &p); err != nil || p.Amount == nil {
		return 1
	}
	return *p.Amount
}
