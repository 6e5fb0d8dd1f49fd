package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker implements Locker in process memory, for single-instance
// deployments and tests. Leases still expire, preserving the
// crash-recovery semantics of the Redis locker.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[types.ID]memoryEntry
	clock func() time.Time
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held:  make(map[types.ID]memoryEntry),
		clock: time.Now,
	}
}

// Acquire implements Locker.
func (l *MemoryLocker) Acquire(_ context.Context, tripID types.ID, ttl time.Duration) (*Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if entry, ok := l.held[tripID]; ok && entry.expiresAt.After(now) {
		return nil, ErrHeld
	}

	token := uuid.New().String()
	expires := now.Add(ttl)
	l.held[tripID] = memoryEntry{token: token, expiresAt: expires}
	return &Lease{TripID: tripID, Token: token, ExpiresAt: expires}, nil
}

// Release implements Locker; only the owning lease can free the lock.
func (l *MemoryLocker) Release(_ context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.held[lease.TripID]; ok && entry.token == lease.Token {
		delete(l.held, lease.TripID)
	}
	return nil
}
