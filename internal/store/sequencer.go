package store

import "sync"

// Sequencer runs tasks submitted under the same key one at a time, in
// submission order. Tasks under different keys run concurrently.
type Sequencer struct {
	mu     sync.Mutex
	queues map[string]*taskQueue
	wg     sync.WaitGroup
}

type taskQueue struct {
	pending []func()
}

// NewSequencer creates an idle Sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{
		queues: make(map[string]*taskQueue),
	}
}

// Go schedules task after every task previously submitted for key.
func (s *Sequencer) Go(key string, task func()) {
	s.mu.Lock()
	if q, busy := s.queues[key]; busy {
		q.pending = append(q.pending, task)
		s.mu.Unlock()
		return
	}

	q := &taskQueue{}
	s.queues[key] = q
	s.wg.Add(1)
	s.mu.Unlock()

	go s.drain(key, q, task)
}

func (s *Sequencer) drain(key string, q *taskQueue, task func()) {
	defer s.wg.Done()

	for {
		task()

		s.mu.Lock()
		if len(q.pending) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		task = q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		s.mu.Unlock()
	}
}

// Wait blocks until every submitted task has finished.
func (s *Sequencer) Wait() {
	s.wg.Wait()
}

// Active returns the number of keys with queued or running tasks.
func (s *Sequencer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues)
}
