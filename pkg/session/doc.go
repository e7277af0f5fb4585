/*
Package session serializes access to persisted undo histories.

A Manager guards every read-modify-write of a session with a per-session
mutex, optionally backed by a distributed lock so that several replicas can
share one store without interleaving dispatches.
*/
package session
