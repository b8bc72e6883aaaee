package trade

import (
	"context"
	"sync"
	"time"
)

// LockTable suppresses concurrent identical trades. Keys are
// player:merchant:item:kind, so the same player re-submitting the same
// trade is rejected while unrelated trades proceed untouched.
//
// Locks are process local. Cross-process safety comes from the database
// transaction; this table only short-circuits duplicate submissions
// before they reach it.
type LockTable struct {
	active       sync.Map
	lockDuration time.Duration
}

func NewLockTable() *LockTable {
	return &LockTable{
		lockDuration: 30 * time.Second,
	}
}

// Acquire takes the lock for key. On success it returns a release
// function that must be called when the trade finishes, win or lose.
// Returns false if an identical trade is already in flight.
func (t *LockTable) Acquire(key string) (release func(), ok bool) {
	expiry := time.Now().Add(t.lockDuration)
	if _, loaded := t.active.LoadOrStore(key, expiry); loaded {
		return nil, false
	}
	return func() { t.active.Delete(key) }, true
}

// Held reports whether key is currently locked.
func (t *LockTable) Held(key string) bool {
	_, exists := t.active.Load(key)
	return exists
}

func (t *LockTable) cleanupExpired() {
	now := time.Now()
	t.active.Range(func(key, value interface{}) bool {
		if now.After(value.(time.Time)) {
			t.active.Delete(key)
		}
		return true
	})
}

// StartCleanupRoutine reaps locks whose holder died without releasing.
// A released lock never reaches its expiry; this is the safety net for
// the ones that do.
func (t *LockTable) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.cleanupExpired()
			}
		}
	}()
}
