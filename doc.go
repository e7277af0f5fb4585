/*
Package rewind keeps an undoable history of documents built from independent
slices, and serves it over persisted sessions.

Every session holds a linear timeline of documents and a cursor. Dispatching an
ordinary action runs every slice reducer and appends the result after the
cursor, discarding anything that was previously redone from there. The two
reserved actions "undo" and "redo" only move the cursor; at either end of the
timeline they are no-ops.

# Layers

  - pkg/history: the generic node chain, the Undoable wrapper and Combine.
  - pkg/binding: a mutex-guarded holder of the active node for UI-style use.
  - Engine: a stateless step function over persisted sessions.
  - Service: Engine plus a session.Manager and a ports.SessionStore.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/rewind"
		"github.com/aretw0/rewind/pkg/domain"
	)

	func main() {
		eng, err := rewind.New(rewind.WithSlices("counter"))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		sess := eng.Start(ctx, "session-123", nil)

		sess, _ = eng.Dispatch(ctx, sess, domain.NewAction("add", map[string]any{"amount": 2}))
		sess, _ = eng.Dispatch(ctx, sess, domain.NewAction("undo", nil))

		view := eng.View(sess)
		fmt.Println(view.State["counter"], view.CanRedo) // 0 true
	}
*/
package rewind
