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

// Package util provides small read and write helpers for byte streams:
// exact-length reads into growable buffers and write loops that retry
// short writes, including vectored writes of whole buffer batches.
package util

import (
	"errors"
	"fmt"
	"io"
)

// ReadExact appends exactly n bytes read from r to buf and returns the
// extended buffer. If r is exhausted before n bytes arrive, buf is
// returned unextended with an error wrapping io.ErrUnexpectedEOF.
func ReadExact(r io.Reader, n int, buf []byte) ([]byte, error) {
	offset := len(buf)
	buf = append(buf, make([]byte, n)...)
	if _, err := io.ReadFull(r, buf[offset:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return buf[:offset], fmt.Errorf("io.ReadFull: %w", err)
	}
	return buf, nil
}

// ReadAll appends everything remaining in r to buf until EOF and
// returns the extended buffer. Unlike io.ReadAll it reuses the spare
// capacity of buf before growing it.
func ReadAll(r io.Reader, buf []byte) ([]byte, error) {
	for {
		if len(buf) == cap(buf) {
			buf = append(buf, 0)[:len(buf)]
		}
		n, err := r.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return buf, fmt.Errorf("r.Read: %w", err)
		}
	}
}
