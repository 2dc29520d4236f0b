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
	"bytes"
	"testing"

	"github.com/enclaveos/runtime/usercall"
)

// Property 2: for every alloc'd fd, lookup returns the same entry
// until a matching close; after close, lookup yields BrokenPipe.
func TestFdTableAllocLookupClose(t *testing.T) {
	table := newFdTable(&bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})

	e := &fdEntry{stream: newStreamAdapter(&loopbackConn{})}
	fd := table.alloc(e)
	if fd <= fdStderr {
		t.Fatalf("alloc returned a reserved fd: %d", fd)
	}

	got, err := table.lookup(fd)
	if err != nil {
		t.Fatalf("lookup before close: %v", err)
	}
	if got != e {
		t.Fatalf("lookup returned a different entry than was allocated")
	}

	table.close(fd)

	if _, err := table.lookup(fd); err != usercall.ErrBrokenPipe {
		t.Fatalf("lookup after close: got %v, want ErrBrokenPipe", err)
	}
}

func TestFdTableStdioPreinstalled(t *testing.T) {
	table := newFdTable(&bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})

	for _, fd := range []uint64{fdStdin, fdStdout, fdStderr} {
		if _, err := table.lookup(fd); err != nil {
			t.Fatalf("lookup(%d): %v", fd, err)
		}
	}
}

// loopbackConn is a minimal io.ReadWriteCloser for fdEntry tests that
// don't need real network behavior.
type loopbackConn struct {
	bytes.Buffer
}

func (loopbackConn) Close() error { return nil }
