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

package queue

import (
	"net"
	"sync"
)

const initialBatchCapacity = 16

var batchPool = &sync.Pool{
	New: func() interface{} {
		batch := make(net.Buffers, 0, initialBatchCapacity)
		return &batch
	},
}

func getBatch() net.Buffers {
	batch := batchPool.Get().(*net.Buffers)
	return (*batch)[:0]
}

// Recycle hands the backing array of a drained batch back for reuse by
// a later Drain. The caller must not touch batch, or any buffer still
// referenced by it, after calling Recycle. Recycling is optional; an
// abandoned batch is simply collected.
func Recycle(batch net.Buffers) {
	if cap(batch) == 0 {
		return
	}
	batch = batch[:cap(batch)]
	for i := range batch {
		batch[i] = nil
	}
	batch = batch[:0]
	batchPool.Put(&batch)
}
