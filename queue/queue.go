// Package queue implements a multi-producer, single-consumer queue of
// byte buffers. Any number of goroutines can push buffers without
// blocking, while a single consumer drains the entire backlog in one
// call. The consumer typically hands each batch straight to a vectored
// write so that many small pushes cost one system call.
package queue

import (
	"context"
	"errors"
	"net"
	"sync"

	"go.uber.org/atomic"
)

// ErrQueueClosed is returned by Push once Close has been called, and by
// Drain once the queue is closed and no pending buffers remain.
var ErrQueueClosed = errors.New("queue is closed")

// Queue is a FIFO queue of byte buffers. Push is safe to call from any
// number of goroutines concurrently with the consumer. Only one
// goroutine may be inside Drain at a time; that discipline is a caller
// contract and is not enforced at runtime.
//
// The zero value is not usable, use NewQueue.
type Queue struct {
	mutex   sync.Mutex
	pending net.Buffers
	wake    chan struct{} // non-nil only while the consumer is waiting
	closed  atomic.Bool   // stores happen with the mutex held
}

func NewQueue() *Queue {
	return &Queue{
		pending: getBatch(),
	}
}

// Push appends buf to the backlog. It never blocks and never suspends,
// regardless of what the consumer is doing. A zero-length buffer is
// accepted like any other and will appear in a later batch. Push
// returns ErrQueueClosed after Close, in which case buf has not been
// enqueued.
func (q *Queue) Push(buf []byte) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed.Load() {
		return ErrQueueClosed
	}
	q.pending = append(q.pending, buf)
	q._wake()
	return nil
}

// PushAll appends all of bufs in one critical section, so that buffers
// from a single caller are never interleaved with those of another
// producer. Either all of bufs are enqueued or, if the queue is
// closed, none of them are.
func (q *Queue) PushAll(bufs ...[]byte) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed.Load() {
		return ErrQueueClosed
	}
	q.pending = append(q.pending, bufs...)
	q._wake()
	return nil
}

// Drain removes and returns every buffer pushed so far, in push order.
// If the backlog is empty, Drain suspends until a push or Close wakes
// it, or until ctx is cancelled. Once the queue is closed and empty it
// returns ErrQueueClosed forever. Only one goroutine may call Drain.
//
// The returned slice is owned by the caller and can be handed back via
// Recycle once every buffer in it has been consumed.
func (q *Queue) Drain(ctx context.Context) (net.Buffers, error) {
	for {
		q.mutex.Lock()
		if len(q.pending) > 0 {
			batch := q.pending
			q.pending = getBatch()
			q.mutex.Unlock()
			return batch, nil
		}
		if q.closed.Load() {
			q.mutex.Unlock()
			return nil, ErrQueueClosed
		}
		// The wake channel must be registered in the same critical
		// section as the emptiness check, otherwise a push landing
		// between the check and the registration would never wake us.
		wake := make(chan struct{})
		q.wake = wake
		q.mutex.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			q.mutex.Lock()
			if q.wake == wake {
				q.wake = nil
			}
			q.mutex.Unlock()
			return nil, ctx.Err()
		}
	}
}

// Close marks the queue as closed and wakes the consumer if it is
// waiting. Closing is idempotent. Buffers already pushed remain
// drainable; only after the backlog has been emptied does Drain start
// returning ErrQueueClosed.
func (q *Queue) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed.Load() {
		return
	}
	q.closed.Store(true)
	q._wake()
}

// Len returns the number of buffers currently waiting to be drained.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.pending)
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	return q.closed.Load()
}

// _wake signals the waiting consumer, if there is one. The mutex must
// be held. The channel is closed at most once per registration, so the
// consumer is never woken twice for the same wait.
func (q *Queue) _wake() {
	if q.wake != nil {
		close(q.wake)
		q.wake = nil
	}
}
