/*
Package domain contains the models shared by the rewind engine, its stores and
its transports.

It is kept free of I/O. The generic undo/redo machinery lives in pkg/history;
this package pins its type parameters for the session service.

# Key Entities

  - Document: the composite state of a session, one entry per configured slice.
  - Action: the wire form of an action. "undo" and "redo" are reserved.
  - Session: a persisted Timeline of Documents plus bookkeeping.
  - View: the active Document together with its undo/redo neighbours.
*/
package domain
