package store

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSequencer_PreservesOrderPerKey(t *testing.T) {
	seq := NewSequencer()

	var mu sync.Mutex
	var got []int

	for i := 0; i < 100; i++ {
		i := i
		seq.Go("chat-1", func() {
			if i%10 == 0 {
				time.Sleep(time.Millisecond)
			}
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	seq.Wait()

	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 0, seq.Active())
}

func TestSequencer_NeverOverlapsSameKey(t *testing.T) {
	seq := NewSequencer()

	var running, maxRunning int32
	for i := 0; i < 50; i++ {
		seq.Go("chat-1", func() {
			n := atomic.AddInt32(&running, 1)
			for {
				m := atomic.LoadInt32(&maxRunning)
				if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
					break
				}
			}
			time.Sleep(100 * time.Microsecond)
			atomic.AddInt32(&running, -1)
		})
	}
	seq.Wait()

	assert.Equal(t, int32(1), maxRunning)
}

func TestSequencer_DifferentKeysRunConcurrently(t *testing.T) {
	seq := NewSequencer()

	release := make(chan struct{})
	started := make(chan string, 2)

	seq.Go("chat-1", func() {
		started <- "chat-1"
		<-release
	})
	seq.Go("chat-2", func() {
		started <- "chat-2"
		<-release
	})

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case k := <-started:
			seen[k] = true
		case <-time.After(2 * time.Second):
			t.Fatal("tasks for different keys did not start concurrently")
		}
	}
	close(release)
	seq.Wait()

	assert.True(t, seen["chat-1"])
	assert.True(t, seen["chat-2"])
}

func TestLocker_SerializesSameKey(t *testing.T) {
	l := NewLocker()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("chat-1")
			v := counter
			time.Sleep(10 * time.Microsecond)
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, l.Size())
}

func TestLocker_IndependentKeys(t *testing.T) {
	l := NewLocker()

	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := l.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on b blocked by lock on a")
	}
	unlockA()
}
