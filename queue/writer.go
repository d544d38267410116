package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/Arceliar/phony"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/matrix-org/batchio/util"
)

// Writer owns the consumer side of a Queue. Once started, it
// repeatedly drains the backlog and flushes each batch to the sink
// with a single vectored write, then loops until the queue is closed,
// the writer is stopped or the sink fails.
type Writer struct {
	inbox   phony.Inbox
	queue   *Queue
	sink    io.Writer
	log     zerolog.Logger
	context context.Context
	cancel  context.CancelFunc
	started atomic.Bool // set by the first Start, never cleared
	stopped atomic.Bool // set once the flush loop can never run again
	done    chan struct{}
	err     error // written before done is closed, read after
}

// NewWriter creates a Writer flushing batches drained from q into
// sink. The writer does nothing until Start is called.
func NewWriter(sink io.Writer, q *Queue, log zerolog.Logger) *Writer {
	w := &Writer{
		queue: q,
		sink:  sink,
		log:   log,
		done:  make(chan struct{}),
	}
	w.context, w.cancel = context.WithCancel(context.Background())
	return w
}

// Start begins the flush loop. Calling Start more than once, or after
// the writer has stopped, has no effect. A Writer is not restartable.
// The Writer assumes it is the only consumer of the queue.
func (w *Writer) Start() {
	if w.stopped.Load() || !w.started.CAS(false, true) {
		return
	}
	w.inbox.Act(nil, w._flush)
}

// Stop asks the flush loop to exit without closing the queue. A flush
// already in progress completes first. Stopping is idempotent and does
// not wait; use Wait for that. Stopping a writer that was never
// started releases Wait immediately.
func (w *Writer) Stop() {
	w.cancel()
	if !w.started.Load() {
		w._stop(nil)
	}
}

// Wait blocks until the flush loop has exited and returns the error
// that stopped it, if any. Exiting because the queue was closed or the
// writer was stopped is not an error.
func (w *Writer) Wait() error {
	<-w.done
	return w.err
}

func (w *Writer) _flush() {
	if w.stopped.Load() {
		return
	}
	batch, err := w.queue.Drain(w.context)
	if err != nil {
		if errors.Is(err, ErrQueueClosed) || errors.Is(err, context.Canceled) {
			w._stop(nil)
		} else {
			w._stop(fmt.Errorf("queue.Drain: %w", err))
		}
		return
	}
	count, size := len(batch), batchBytes(batch)
	if err := util.WriteVectored(w.sink, batch); err != nil {
		w._stop(fmt.Errorf("util.WriteVectored: %w", err))
		return
	}
	Recycle(batch)
	w.log.Debug().Int("buffers", count).Int("bytes", size).Msg("Flushed batch")
	w.inbox.Act(nil, w._flush)
}

func (w *Writer) _stop(err error) {
	if !w.stopped.CAS(false, true) {
		return
	}
	w.cancel()
	w.err = err
	if err != nil {
		w.log.Error().Err(err).Msg("Writer stopped")
	}
	close(w.done)
}

func batchBytes(batch net.Buffers) int {
	total := 0
	for _, buf := range batch {
		total += len(buf)
	}
	return total
}
