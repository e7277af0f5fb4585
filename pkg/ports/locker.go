package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a session lock. It takes its own context because the
// caller's may already be done by release time.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises writes to one session across service replicas.
// session.Manager takes it around every read-modify-write of a timeline, on top
// of its in-process lock.
type DistributedLocker interface {
	// Lock blocks until the session's lock is held or ctx is done.
	// The lock expires after ttl if the holder never releases it.
	Lock(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error)
}
