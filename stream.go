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
)

type flusher interface {
	Flush() error
}

// streamAdapter is the AsyncStreamAdapter of §3/§4.4: a duplex byte
// stream with per-operation serialisation and fairness, plus the
// read-only/write-only rejection rules a wrapped stdio fd needs.
type streamAdapter struct {
	conn io.ReadWriteCloser

	readOnly  bool
	writeOnly bool

	readGate  *opGate
	writeGate *opGate
	flushGate *opGate
}

func newStreamAdapter(conn io.ReadWriteCloser) *streamAdapter {
	return &streamAdapter{
		conn:      conn,
		readGate:  newOpGate(),
		writeGate: newOpGate(),
		flushGate: newOpGate(),
	}
}

// newReadOnlyAdapter wraps a bare Reader (stdin) as a stream that
// rejects writes/flush with BrokenPipe, per §4.4.
func newReadOnlyAdapter(r io.Reader) *streamAdapter {
	return &streamAdapter{
		conn:      readOnlyConn{r},
		readOnly:  true,
		readGate:  newOpGate(),
		writeGate: newOpGate(),
		flushGate: newOpGate(),
	}
}

// newWriteOnlyAdapter wraps a bare Writer (stdout/stderr) as a stream
// that rejects reads with BrokenPipe, per §4.4.
func newWriteOnlyAdapter(w io.Writer) *streamAdapter {
	return &streamAdapter{
		conn:      writeOnlyConn{w},
		writeOnly: true,
		readGate:  newOpGate(),
		writeGate: newOpGate(),
		flushGate: newOpGate(),
	}
}

// readOnlyConn/writeOnlyConn adapt a bare Reader/Writer to
// io.ReadWriteCloser so they can share streamAdapter's plumbing; the
// readOnly/writeOnly flags above, not these stubs, are what reject
// the unsupported direction with BrokenPipe.
type readOnlyConn struct{ io.Reader }

func (readOnlyConn) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }
func (readOnlyConn) Close() error                { return nil }

type writeOnlyConn struct{ io.Writer }

func (writeOnlyConn) Read(p []byte) (int, error) { return 0, io.EOF }
func (writeOnlyConn) Close() error               { return nil }

func (a *streamAdapter) Read(buf []byte) (int, error) {
	if a.writeOnly {
		return 0, usercall.ErrBrokenPipe
	}
	var n int
	err := a.readGate.Do(func() error {
		var e error
		n, e = a.conn.Read(buf)
		return e
	})
	return n, mapStreamErr(err)
}

func (a *streamAdapter) ReadAlloc() ([]byte, error) {
	buf := make([]byte, 8192)
	n, err := a.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (a *streamAdapter) Write(buf []byte) (int, error) {
	if a.readOnly {
		return 0, usercall.ErrBrokenPipe
	}
	var n int
	err := a.writeGate.Do(func() error {
		var e error
		n, e = a.conn.Write(buf)
		return e
	})
	return n, mapStreamErr(err)
}

func (a *streamAdapter) Flush() error {
	if a.readOnly {
		return usercall.ErrBrokenPipe
	}
	return mapStreamErr(a.flushGate.Do(func() error {
		if f, ok := a.conn.(flusher); ok {
			return f.Flush()
		}
		return nil
	}))
}

func (a *streamAdapter) Close() error {
	return a.conn.Close()
}

func mapStreamErr(err error) error {
	if err == nil {
		return nil
	}
	if err == io.EOF || err == io.ErrClosedPipe {
		return usercall.ErrBrokenPipe
	}
	return mapNetError(err)
}
