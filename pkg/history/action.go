package history

// Kind distinguishes the control actions from ordinary ones.
type Kind int

const (
	KindApply Kind = iota // Forwarded to the wrapped reducer
	KindUndo              // Move to the previous node
	KindRedo              // Move to the next node
)

func (k Kind) String() string {
	switch k {
	case KindUndo:
		return "undo"
	case KindRedo:
		return "redo"
	default:
		return "apply"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name. Unknown names are apply.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "undo":
		*k = KindUndo
	case "redo":
		*k = KindRedo
	default:
		*k = KindApply
	}
	return nil
}

// Action is either a control action or an ordinary action carrying a payload
// for the wrapped reducer.
type Action[A any] struct {
	kind    Kind
	payload A
}

// Apply wraps an ordinary action.
func Apply[A any](payload A) Action[A] {
	return Action[A]{kind: KindApply, payload: payload}
}

// Undo returns the undo control action.
func Undo[A any]() Action[A] {
	return Action[A]{kind: KindUndo}
}

// Redo returns the redo control action.
func Redo[A any]() Action[A] {
	return Action[A]{kind: KindRedo}
}

// Kind reports which variant the action is.
func (a Action[A]) Kind() Kind {
	return a.kind
}

// Payload returns the ordinary action. It is the zero value for Undo and Redo.
func (a Action[A]) Payload() A {
	return a.payload
}
