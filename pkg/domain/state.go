package domain

import (
	"time"

	"github.com/aretw0/rewind/pkg/history"
)

// Document is the composite state of a session.
type Document = history.State

// Session is the persisted form of one undoable history.
type Session struct {
	ID        string                     `json:"id"`
	Timeline  history.Timeline[Document] `json:"timeline"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// NewSession creates a session whose history holds a single initial document.
func NewSession(id string, initial Document) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Timeline:  history.Timeline[Document]{States: []Document{initial}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a copy whose timeline slice can be modified independently.
// Documents themselves are shared; they are never mutated in place.
func (s *Session) Snapshot() *Session {
	cp := *s
	cp.Timeline.States = append([]Document(nil), s.Timeline.States...)
	return &cp
}

// Active returns the document at the cursor, or nil when the timeline is corrupt.
func (s *Session) Active() Document {
	if s.Timeline.Cursor < 0 || s.Timeline.Cursor >= len(s.Timeline.States) {
		return nil
	}
	return s.Timeline.States[s.Timeline.Cursor]
}

// View is what clients see of a session: the active document and a peek at
// the documents undo and redo would move to.
type View struct {
	SessionID string   `json:"session_id"`
	State     Document `json:"state"`
	Previous  Document `json:"previous,omitempty"`
	Next      Document `json:"next,omitempty"`
	Cursor    int      `json:"cursor"`
	Length    int      `json:"length"`
	CanUndo   bool     `json:"can_undo"`
	CanRedo   bool     `json:"can_redo"`
}

// NewView derives the View of a session.
func NewView(s *Session) View {
	t := s.Timeline
	v := View{
		SessionID: s.ID,
		State:     s.Active(),
		Cursor:    t.Cursor,
		Length:    t.Len(),
		CanUndo:   t.CanUndo(),
		CanRedo:   t.CanRedo(),
	}
	if v.CanUndo {
		v.Previous = t.States[t.Cursor-1]
	}
	if v.CanRedo {
		v.Next = t.States[t.Cursor+1]
	}
	return v
}
