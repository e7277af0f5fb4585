package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrEmptySessionID is returned when an operation needs a session ID and got none.
var ErrEmptySessionID = errors.New("session id cannot be empty")

// ErrInvalidAction is returned when an action is rejected before it reaches the history.
var ErrInvalidAction = errors.New("invalid action")
