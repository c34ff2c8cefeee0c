package quota

import (
	"sync"

	"github.com/google/uuid"
)

// UserLocks serializes quota evaluation and usage increment per user, so
// two concurrent batches for the same owner cannot both pass the storage
// check and jointly overshoot the limit.
type UserLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *UserLocks) Lock(userID uuid.UUID) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

func (l *UserLocks) Unlock(userID uuid.UUID) {
	l.mu.Lock()
	m := l.locks[userID]
	l.mu.Unlock()
	if m != nil {
		m.Unlock()
	}
}
