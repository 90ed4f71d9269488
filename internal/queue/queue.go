package queue

import (
	"errors"
	"sync"

	"DocSim/internal/types"
)

// ErrClosed is returned by Put once the queue has been closed or aborted.
var ErrClosed = errors.New("queue: put on closed queue")

// Queue is a bounded FIFO of tasks shared by one producer and many
// consumers. Once closed and empty, Get reports termination to every
// caller without blocking.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	items    []types.Task
	head     int
	capacity int // 0 means unbounded
	closed   bool
	aborted  bool
}

// New creates a queue holding at most capacity tasks. A capacity of 0
// disables the bound.
func New(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	q := &Queue{capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Put appends task, blocking while the queue is full.
func (q *Queue) Put(task types.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && q.capacity > 0 && q.lenLocked() >= q.capacity {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrClosed
	}

	q.items = append(q.items, task)
	q.notEmpty.Signal()
	return nil
}

// Get removes the oldest task. It blocks while the queue is empty and
// open; ok is false once the queue is closed and drained.
func (q *Queue) Get() (task types.Task, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.lenLocked() == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if q.lenLocked() == 0 {
		return types.Task{}, false
	}

	task = q.items[q.head]
	q.items[q.head] = types.Task{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}

	q.notFull.Signal()
	return task, true
}

// Close marks the end of submissions. Tasks already queued remain
// available to Get. Closing twice is a no-op.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Abort closes the queue and discards pending tasks. It returns the
// number of tasks dropped.
func (q *Queue) Abort() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := q.lenLocked()
	q.items = nil
	q.head = 0
	q.closed = true
	q.aborted = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	return dropped
}

// Len returns the number of tasks currently held.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

// Cap returns the capacity bound, 0 when unbounded.
func (q *Queue) Cap() int {
	return q.capacity
}

func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue) Aborted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.aborted
}

func (q *Queue) lenLocked() int {
	return len(q.items) - q.head
}
