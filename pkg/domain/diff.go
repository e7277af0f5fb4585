package domain

import (
	"encoding/json"
	"reflect"
)

// StateDiff represents the changes between two views of a session.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Cursor *int `json:"cursor,omitempty"`
	Length *int `json:"length,omitempty"`

	// Slices contains only changed, added or deleted slices of the active document.
	// For deletions, the key is present with a nil value.
	Slices map[string]any `json:"slices,omitempty"`

	CanUndo *bool `json:"can_undo,omitempty"`
	CanRedo *bool `json:"can_redo,omitempty"`
}

// Diff calculates the difference between oldView and newView.
// If oldView is nil, it returns a diff representing the entire newView (initial load).
// It returns nil when nothing changed.
func Diff(oldView, newView *View) *StateDiff {
	if newView == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newView.SessionID,
	}

	if oldView == nil || oldView.Cursor != newView.Cursor {
		diff.Cursor = &newView.Cursor
	}
	if oldView == nil || oldView.Length != newView.Length {
		diff.Length = &newView.Length
	}
	if oldView == nil || oldView.CanUndo != newView.CanUndo {
		diff.CanUndo = &newView.CanUndo
	}
	if oldView == nil || oldView.CanRedo != newView.CanRedo {
		diff.CanRedo = &newView.CanRedo
	}

	var oldState Document
	if oldView != nil {
		oldState = oldView.State
	}
	diff.Slices = diffDocument(oldState, newView.State)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffDocument(old, new Document) map[string]any {
	delta := make(map[string]any)

	for k, newVal := range new {
		oldVal, exists := old[k]
		if !exists || !sameValue(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// sameValue compares values by their JSON form, so a typed slice and its
// decoded []any are equal.
func sameValue(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Cursor == nil &&
		d.Length == nil &&
		d.CanUndo == nil &&
		d.CanRedo == nil &&
		len(d.Slices) == 0
}
