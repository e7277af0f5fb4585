package domain

// Reserved action types. They are intercepted before any slice reducer runs.
const (
	ActionUndo = "undo"
	ActionRedo = "redo"

	// ActionInit is sent once through every slice when a session starts, so
	// each slice can replace a missing value with its own zero state.
	ActionInit = "@@init"
)

// Action types understood by the built-in slices.
const (
	ActionAdd      = "add"
	ActionSubtract = "subtract"
	ActionSet      = "set"
	ActionUnset    = "unset"
	ActionNote     = "note"
	ActionClear    = "clear"
)
