// Copyright 2015 Google Inc. All Rights Reserved.
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

// Package scratch pools the 1024-byte buffers every coroutine entry
// hands the coroutine primitive (§3's UsercallSendData, §6's scratch
// parameter). The teacher pools fixed-size kernel message buffers
// around an internal/buffer package laid out with unsafe/reflect
// tricks tied to a wire struct this runtime has no equivalent of;
// there is no wire struct here, so the pool is a plain sync.Pool of
// fixed-size arrays instead.
package scratch

import "sync"

var pool = sync.Pool{
	New: func() any {
		return new([1024]byte)
	},
}

// Get returns a zeroed 1024-byte buffer.
func Get() *[1024]byte {
	b := pool.Get().(*[1024]byte)
	*b = [1024]byte{}
	return b
}

// Put returns b to the pool for reuse. Callers must not retain b
// afterward.
func Put(b *[1024]byte) {
	pool.Put(b)
}
