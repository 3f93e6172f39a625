package simulator

import "container/heap"

// event is a continuation scheduled at a simulated instant. seq records the
// scheduling order and breaks ties between events at the same instant.
type event struct {
	at  float64
	seq uint64
	fn  func()
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// clock is a single-threaded discrete-event scheduler. Only one continuation
// runs at a time, so processes share state without locking.
type clock struct {
	now   float64
	seq   uint64
	queue eventQueue
}

func (c *clock) Now() float64 {
	return c.now
}

// schedule runs fn after delay simulated hours
func (c *clock) schedule(delay float64, fn func()) {
	c.seq++
	heap.Push(&c.queue, &event{at: c.now + delay, seq: c.seq, fn: fn})
}

// runUntil processes every event scheduled strictly before until, in order,
// then leaves the clock at until. It returns the number of events processed.
func (c *clock) runUntil(until float64) int {
	processed := 0
	for c.queue.Len() > 0 && c.queue[0].at < until {
		e := heap.Pop(&c.queue).(*event)
		c.now = e.at
		e.fn()
		processed++
	}
	if until > c.now {
		c.now = until
	}
	return processed
}

// pending returns the number of scheduled events
func (c *clock) pending() int {
	return c.queue.Len()
}

// signal is a one-shot rendezvous. Firing wakes every current waiter at the
// current instant and resets the signal for the next round of waiters.
type signal struct {
	clock   *clock
	waiters []func()
}

func newSignal(c *clock) *signal {
	return &signal{clock: c}
}

func (s *signal) wait(fn func()) {
	s.waiters = append(s.waiters, fn)
}

func (s *signal) fire() {
	waiters := s.waiters
	s.waiters = nil
	for _, w := range waiters {
		s.clock.schedule(0, w)
	}
}
