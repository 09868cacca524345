package lock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestKeyedMutexSerializesPerMeter(t *testing.T) {
	locker := NewKeyedMutex()

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), 42)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer release()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("lock admitted %d holders at once", maxSeen)
	}
}

func TestKeyedMutexIndependentMeters(t *testing.T) {
	locker := NewKeyedMutex()

	release1, err := locker.Acquire(context.Background(), 1)
	if err != nil {
		t.Fatalf("acquire meter 1: %v", err)
	}
	defer release1()

	// A different meter must not be blocked by meter 1's lock.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	release2, err := locker.Acquire(ctx, 2)
	if err != nil {
		t.Fatalf("acquire meter 2 blocked by unrelated lock: %v", err)
	}
	release2()
}

func TestKeyedMutexAcquireHonoursContext(t *testing.T) {
	locker := NewKeyedMutex()

	release, err := locker.Acquire(context.Background(), 7)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Acquire(ctx, 7); err == nil {
		t.Fatalf("expected context error while lock is held")
	}

	release()

	// After release the slot is free again.
	release2, err := locker.Acquire(context.Background(), 7)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}
