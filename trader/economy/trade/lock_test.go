package trade

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLockTableAcquireRelease(t *testing.T) {
	table := NewLockTable()

	release, ok := table.Acquire("1:2:청자:buy")
	if !ok {
		t.Fatal("first acquire should succeed")
	}

	if _, ok := table.Acquire("1:2:청자:buy"); ok {
		t.Error("second acquire on same key should fail")
	}

	if _, ok := table.Acquire("1:2:청자:sell"); !ok {
		t.Error("different key should acquire independently")
	}

	release()

	if _, ok := table.Acquire("1:2:청자:buy"); !ok {
		t.Error("acquire after release should succeed")
	}
}

func TestLockTableConcurrentAcquire(t *testing.T) {
	table := NewLockTable()

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := table.Acquire("7:9:도자기:buy"); ok {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 1 {
		t.Errorf("expected exactly one winner, got %d", acquired)
	}
}

func TestLockTableDistinctPlayersDoNotContend(t *testing.T) {
	table := NewLockTable()

	for player := 1; player <= 10; player++ {
		key := fmt.Sprintf("%d:2:청자:buy", player)
		if _, ok := table.Acquire(key); !ok {
			t.Errorf("player %d should not contend with others", player)
		}
	}
}

func TestLockTableCleanupExpired(t *testing.T) {
	table := NewLockTable()
	table.lockDuration = -time.Second

	if _, ok := table.Acquire("1:2:청자:buy"); !ok {
		t.Fatal("acquire should succeed")
	}

	table.cleanupExpired()

	if table.Held("1:2:청자:buy") {
		t.Error("expired lock should be reaped")
	}
}
