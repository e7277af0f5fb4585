package domain

import "github.com/aretw0/rewind/pkg/history"

// Action is an action as received from a client.
type Action struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// NewAction builds an Action from a type and optional key/value payload.
func NewAction(actionType string, payload map[string]any) Action {
	return Action{Type: actionType, Payload: payload}
}

// Control maps the reserved types to history control actions. Anything else
// is forwarded to the slice reducers unchanged.
func (a Action) Control() history.Action[Action] {
	switch a.Type {
	case ActionUndo:
		return history.Undo[Action]()
	case ActionRedo:
		return history.Redo[Action]()
	default:
		return history.Apply(a)
	}
}

// IsControl reports whether the action is undo or redo.
func (a Action) IsControl() bool {
	return a.Type == ActionUndo || a.Type == ActionRedo
}
