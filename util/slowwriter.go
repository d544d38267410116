package util

import (
	"io"
	"math/rand"
	"time"
)

// SlowWriter wraps a writer with artificial latency and an optional
// per-call size limit, for exercising batching and short-write retry
// behaviour in tests. A write truncated by MaxWriteSize returns
// io.ErrShortWrite along with the number of bytes accepted.
type SlowWriter struct {
	io.Writer
	WriteDelayMillis  int
	WriteJitterMillis int
	MaxWriteSize      int
}

func (s *SlowWriter) Write(b []byte) (n int, err error) {
	duration := 0
	if d := s.WriteDelayMillis; d > 0 {
		duration += d
	}
	if j := s.WriteJitterMillis; j > 0 {
		duration += rand.Intn(j)
	}
	if duration > 0 {
		time.Sleep(time.Millisecond * time.Duration(duration))
	}
	if m := s.MaxWriteSize; m > 0 && len(b) > m {
		n, err = s.Writer.Write(b[:m])
		if err != nil {
			return n, err
		}
		return n, io.ErrShortWrite
	}
	return s.Writer.Write(b)
}
