// Package queue provides the bounded hand-off between the stream reader
// and the consumer.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// CapacityFor sizes a queue to hold rateHz samples per second for window.
func CapacityFor(rateHz int, window time.Duration) int {
	n := int(int64(rateHz) * int64(window) / int64(time.Second))
	if n < 1 {
		n = 1
	}
	return n
}

// Queue is a FIFO of samples with fixed capacity.
// When full, Push evicts the oldest sample: stale samples are worth less
// than a stalled reader. It's safe for one producer and one consumer.
type Queue struct {
	lock    sync.Mutex
	items   []msgs.NavData
	head    int
	size    int
	dropped uint64
	pushed  uint64

	notifyCh chan struct{}
}

// New creates a Queue. capacity must be positive.
func New(capacity int) *Queue {
	if capacity <= 0 {
		panic("queue capacity must be positive")
	}
	return &Queue{
		items:    make([]msgs.NavData, capacity),
		notifyCh: make(chan struct{}, 1),
	}
}

// Push appends a sample and reports whether the oldest one was dropped.
// It never blocks.
func (q *Queue) Push(s msgs.NavData) (dropped bool) {
	q.lock.Lock()
	if q.size == len(q.items) {
		q.items[q.head] = s
		q.head = (q.head + 1) % len(q.items)
		q.dropped++
		dropped = true
	} else {
		q.items[(q.head+q.size)%len(q.items)] = s
		q.size++
	}
	q.pushed++
	q.lock.Unlock()

	select {
	case q.notifyCh <- struct{}{}:
	default:
	}
	return
}

// HandleSample implements comm.SampleHandler.
func (q *Queue) HandleSample(ctx context.Context, s msgs.NavData) {
	q.Push(s)
}

// DrainAll removes and returns all queued samples, oldest first.
// It returns nil when empty and never blocks.
func (q *Queue) DrainAll() []msgs.NavData {
	return q.DrainInto(nil)
}

// DrainInto appends all queued samples to dst and empties the queue.
func (q *Queue) DrainInto(dst []msgs.NavData) []msgs.NavData {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.size == 0 {
		return dst
	}
	if cap(dst)-len(dst) < q.size {
		grown := make([]msgs.NavData, len(dst), len(dst)+q.size)
		copy(grown, dst)
		dst = grown
	}
	if end := q.head + q.size; end <= len(q.items) {
		dst = append(dst, q.items[q.head:end]...)
	} else {
		dst = append(dst, q.items[q.head:]...)
		dst = append(dst, q.items[:end-len(q.items)]...)
	}
	q.head, q.size = 0, 0
	return dst
}

// Notify returns a channel signalled after pushes.
// Multiple pushes may collapse into one signal.
func (q *Queue) Notify() <-chan struct{} {
	return q.notifyCh
}

// Len returns the number of queued samples.
func (q *Queue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.size
}

// Cap returns the capacity.
func (q *Queue) Cap() int {
	return len(q.items)
}

// Dropped returns the number of samples evicted by overflow.
func (q *Queue) Dropped() uint64 {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.dropped
}

// Pushed returns the number of samples pushed.
func (q *Queue) Pushed() uint64 {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.pushed
}
