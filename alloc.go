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

package enclave

import (
	"sync"

	"github.com/enclaveos/runtime/usercall"
)

// hostAllocator backs the alloc/free usercalls. There is no real
// enclave memory region in this runtime (§1 scopes the enclave binary
// format and its memory layout out), so alloc hands out ordinary Go
// heap slices keyed by a synthetic pointer, and free releases the
// reference. Alignment is honored as a validation constraint only.
type hostAllocator struct {
	mu   sync.Mutex
	next uint64
	live map[uint64][]byte
}

func newHostAllocator() *hostAllocator {
	return &hostAllocator{next: 1, live: make(map[uint64][]byte)}
}

func (a *hostAllocator) alloc(size, align uint64) (uint64, error) {
	if size == 0 || align == 0 || align&(align-1) != 0 {
		return 0, usercall.ErrInvalidInput
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ptr := a.next
	a.next++
	a.live[ptr] = make([]byte, size)
	return ptr, nil
}

func (a *hostAllocator) free(ptr, size, align uint64) error {
	if align == 0 || align&(align-1) != 0 {
		return usercall.ErrInvalidInput
	}
	if size == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.live[ptr]; !ok {
		return usercall.ErrInvalidInput
	}
	delete(a.live, ptr)
	return nil
}
