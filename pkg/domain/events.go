package domain

import (
	"context"
	"time"

	"github.com/aretw0/rewind/pkg/history"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDispatch EventType = "dispatch"
	EventUndo     EventType = "undo"
	EventRedo     EventType = "redo"
	EventNoop     EventType = "noop" // Undo at the root or redo at the tip
)

// HistoryEvent describes one step through a session's history.
type HistoryEvent struct {
	Timestamp  time.Time    `json:"timestamp"`
	Type       EventType    `json:"type"`
	SessionID  string       `json:"session_id"`
	Kind       history.Kind `json:"kind"`
	ActionType string       `json:"action_type"`
	Cursor     int          `json:"cursor"`
	Length     int          `json:"length"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnDispatch func(context.Context, *HistoryEvent)
	OnUndo     func(context.Context, *HistoryEvent)
	OnRedo     func(context.Context, *HistoryEvent)
	OnNoop     func(context.Context, *HistoryEvent)
}

// Fire invokes the hook matching the event type.
func (h LifecycleHooks) Fire(ctx context.Context, e *HistoryEvent) {
	var fn func(context.Context, *HistoryEvent)
	switch e.Type {
	case EventDispatch:
		fn = h.OnDispatch
	case EventUndo:
		fn = h.OnUndo
	case EventRedo:
		fn = h.OnRedo
	case EventNoop:
		fn = h.OnNoop
	}
	if fn != nil {
		fn(ctx, e)
	}
}
