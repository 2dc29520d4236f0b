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
	"io"

	"github.com/enclaveos/runtime/usercall"
	"github.com/jacobsa/syncutil"
)

// fdEntry is the AsyncFileDesc tagged variant of §3: exactly one of
// stream or listener is set.
type fdEntry struct {
	stream   *streamAdapter
	listener *listenerAdapter
}

// fdTable is the supervisor's fd map of §3/§4.3: 64-bit opaque
// descriptors over shared stream/listener adapters, guarded by a
// cooperative mutex the way the teacher's samples/memfs guards its
// inode map, with stdio pre-installed and allocation starting at 3.
type fdTable struct {
	mu syncutil.InvariantMutex

	// GUARDED_BY(mu)
	entries map[uint64]*fdEntry
	// GUARDED_BY(mu)
	lastFd uint64
}

const (
	fdStdin  = 0
	fdStdout = 1
	fdStderr = 2
)

func newFdTable(stdin io.Reader, stdout, stderr io.Writer) *fdTable {
	t := &fdTable{
		entries: make(map[uint64]*fdEntry),
		lastFd:  fdStderr,
	}
	t.mu = syncutil.NewInvariantMutex(t.checkInvariants)

	t.entries[fdStdin] = &fdEntry{stream: newReadOnlyAdapter(newStdinReader(stdin))}
	t.entries[fdStdout] = &fdEntry{stream: newWriteOnlyAdapter(stdout)}
	t.entries[fdStderr] = &fdEntry{stream: newWriteOnlyAdapter(stderr)}

	return t
}

// checkInvariants enforces testable property 2's lifecycle: lastFd
// never regresses below the reserved stdio range.
func (t *fdTable) checkInvariants() {
	if t.lastFd < fdStderr {
		panic("fdTable: lastFd fell below the reserved stdio range")
	}
}

// alloc installs e under a freshly allocated fd. Overflow of lastFd
// is a fatal assertion per §4.3.
func (t *fdTable) alloc(e *fdEntry) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastFd == ^uint64(0) {
		panic("fdTable: fd space exhausted")
	}
	t.lastFd++
	fd := t.lastFd
	t.entries[fd] = e
	return fd
}

// lookup returns ErrBrokenPipe, not a distinct "bad descriptor"
// error, when fd is unknown. This is a deliberate compatibility quirk
// preserved from the source (see DESIGN.md, open question (a)).
func (t *fdTable) lookup(fd uint64) (*fdEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[fd]
	if !ok {
		return nil, usercall.ErrBrokenPipe
	}
	return e, nil
}

func (t *fdTable) close(fd uint64) {
	t.mu.Lock()
	e, ok := t.entries[fd]
	delete(t.entries, fd)
	t.mu.Unlock()

	if !ok {
		return
	}
	if e.stream != nil {
		e.stream.Close()
	}
	if e.listener != nil {
		e.listener.Close()
	}
}
