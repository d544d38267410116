// Copyright 2023 The Matrix.org Foundation C.I.C.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// WriteAll writes the whole of buf to w, retrying until every byte has
// been accepted. A short write that made progress is retried with the
// remainder; a writer that accepts nothing without reporting a real
// error causes io.ErrShortWrite.
func WriteAll(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil && !(errors.Is(err, io.ErrShortWrite) && n > 0) {
			return fmt.Errorf("w.Write: %w", err)
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		buf = buf[n:]
	}
	return nil
}

// WriteVectored writes every buffer in bufs to w, in order, using as
// few underlying write calls as the platform allows. When w is a
// connection supporting it, the whole batch goes out as one vectored
// system call. Short writes that made progress are retried with the
// unwritten remainder. WriteVectored consumes bufs; the caller keeps
// ownership of the slice header it passed in.
func WriteVectored(w io.Writer, bufs net.Buffers) error {
	for len(bufs) > 0 {
		n, err := bufs.WriteTo(w)
		if err != nil {
			if errors.Is(err, io.ErrShortWrite) && n > 0 {
				continue
			}
			return fmt.Errorf("bufs.WriteTo: %w", err)
		}
		// WriteTo consumed everything it wrote, including any
		// zero-length buffers at the front of the batch.
		if n == 0 && len(bufs) > 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}
