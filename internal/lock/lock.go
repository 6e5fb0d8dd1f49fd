package lock

import (
	"context"
	"time"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

// Lease is a held planning lock. The token proves ownership: release is
// refused for a lease another run has since acquired, and expiry frees the
// lock even if the holder crashed and never released.
type Lease struct {
	TripID    types.ID
	Token     string
	ExpiresAt time.Time
}

// ErrHeld is returned by Acquire when another run holds the trip's lock.
// It is surfaced to the caller immediately, never retried internally.
var ErrHeld = types.NewError(types.PLAN_IN_PROGRESS, "planning already in progress for this trip")

// Locker is the per-trip planning lock: mutual exclusion for the full
// duration of a planning run, lease-based so a crashed worker cannot
// permanently wedge a trip.
type Locker interface {
	// Acquire takes the trip's lock for ttl. Returns ErrHeld when the
	// lock is already held.
	Acquire(ctx context.Context, tripID types.ID, ttl time.Duration) (*Lease, error)

	// Release frees the lock if the lease still owns it. Releasing an
	// expired or superseded lease is a no-op.
	Release(ctx context.Context, lease *Lease) error
}
