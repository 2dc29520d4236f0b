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
	"context"
	"unicode/utf8"

	"github.com/enclaveos/runtime/usercall"
)

// handlerImpl implements usercall.Handler against a Supervisor. It is
// the concrete side of the usercall handler surface table in §4.7;
// the reactor is the only caller.
type handlerImpl struct {
	sup *Supervisor
}

func (h *handlerImpl) Read(ctx context.Context, in *usercall.Input, fd uint64, buf []byte) (int, error) {
	e, err := h.sup.fds.lookup(fd)
	if err != nil {
		return 0, err
	}
	if e.stream == nil {
		return 0, usercall.ErrInvalidInput
	}
	return e.stream.Read(buf)
}

func (h *handlerImpl) ReadAlloc(ctx context.Context, in *usercall.Input, fd uint64) ([]byte, error) {
	e, err := h.sup.fds.lookup(fd)
	if err != nil {
		return nil, err
	}
	if e.stream == nil {
		return nil, usercall.ErrInvalidInput
	}
	return e.stream.ReadAlloc()
}

func (h *handlerImpl) Write(ctx context.Context, in *usercall.Input, fd uint64, buf []byte) (int, error) {
	e, err := h.sup.fds.lookup(fd)
	if err != nil {
		return 0, err
	}
	if e.stream == nil {
		return 0, usercall.ErrInvalidInput
	}
	return e.stream.Write(buf)
}

func (h *handlerImpl) Flush(ctx context.Context, in *usercall.Input, fd uint64) error {
	e, err := h.sup.fds.lookup(fd)
	if err != nil {
		return err
	}
	if e.stream == nil {
		return usercall.ErrInvalidInput
	}
	return e.stream.Flush()
}

func (h *handlerImpl) Close(ctx context.Context, in *usercall.Input, fd uint64) {
	h.sup.fds.close(fd)
}

func (h *handlerImpl) BindStream(ctx context.Context, in *usercall.Input, addr string, wantLocal bool) (uint64, string, error) {
	if !utf8.ValidString(addr) {
		return 0, "", usercall.ErrConnectionRefused
	}

	if ln, ok, err := h.sup.ext.BindStream(addr); err != nil {
		return 0, "", err
	} else if ok {
		fd := h.sup.fds.alloc(&fdEntry{listener: newListenerAdapter(ln)})
		local := ""
		if wantLocal {
			local = safeAddr(ln.Addr())
		}
		return fd, local, nil
	}

	ln, err := netListen(addr)
	if err != nil {
		return 0, "", mapNetError(err)
	}
	fd := h.sup.fds.alloc(&fdEntry{listener: newListenerAdapter(ln)})
	local := ""
	if wantLocal {
		local = safeAddr(ln.Addr())
	}
	return fd, local, nil
}

func (h *handlerImpl) AcceptStream(ctx context.Context, in *usercall.Input, fd uint64, wantLocal, wantPeer bool) (uint64, string, string, error) {
	e, err := h.sup.fds.lookup(fd)
	if err != nil {
		return 0, "", "", err
	}
	if e.listener == nil {
		return 0, "", "", usercall.ErrInvalidInput
	}

	conn, err := e.listener.Accept()
	if err != nil {
		return 0, "", "", err
	}

	newFd := h.sup.fds.alloc(&fdEntry{stream: newStreamAdapter(conn)})
	local, peer := "", ""
	if wantLocal {
		local = safeAddr(conn.LocalAddr())
	}
	if wantPeer {
		peer = safeAddr(conn.RemoteAddr())
	}
	return newFd, local, peer, nil
}

func (h *handlerImpl) ConnectStream(ctx context.Context, in *usercall.Input, addr string, wantLocal, wantPeer bool) (uint64, string, string, error) {
	if !utf8.ValidString(addr) {
		return 0, "", "", usercall.ErrConnectionRefused
	}

	if conn, ok, err := h.sup.ext.ConnectStream(addr); err != nil {
		return 0, "", "", err
	} else if ok {
		fd := h.sup.fds.alloc(&fdEntry{stream: newStreamAdapter(conn)})
		local, peer := "", ""
		if wantLocal {
			local = safeAddr(conn.LocalAddr())
		}
		if wantPeer {
			peer = safeAddr(conn.RemoteAddr())
		}
		return fd, local, peer, nil
	}

	conn, err := netDial(addr)
	if err != nil {
		return 0, "", "", mapNetError(err)
	}
	fd := h.sup.fds.alloc(&fdEntry{stream: newStreamAdapter(conn)})
	local, peer := "", ""
	if wantLocal {
		local = safeAddr(conn.LocalAddr())
	}
	if wantPeer {
		peer = safeAddr(conn.RemoteAddr())
	}
	return fd, local, peer, nil
}

func (h *handlerImpl) LaunchThread(ctx context.Context, in *usercall.Input) error {
	if !h.sup.command {
		return usercall.ErrInvalidInput
	}

	st, ok := h.sup.threadsQueue.TryPop()
	if !ok {
		return usercall.ErrWouldBlock
	}

	if h.sup.sink == nil {
		h.sup.threadsQueue.Push(st)
		return usercall.ErrNotConnected
	}

	running := usercall.NewRunningTcs(st.Tcs, usercall.ExecutableNonMain, st.Queue)
	h.sup.sink.Submit(Work{Running: running, Initial: &InitialEntry{Tcs: st.Tcs}})
	return nil
}

func (h *handlerImpl) Exit(ctx context.Context, in *usercall.Input, isPanic bool) *usercall.EnclaveAbort {
	h.sup.AbortAllThreads()
	return &usercall.EnclaveAbort{Kind: usercall.AbortExit, Panic: isPanic}
}

func (h *handlerImpl) Wait(ctx context.Context, in *usercall.Input, mask uint8, indefinite bool) (uint8, error) {
	return in.Running.Wait(mask, indefinite)
}

func (h *handlerImpl) Send(ctx context.Context, in *usercall.Input, mask uint8, target *usercall.TcsAddress) error {
	return h.sup.Send(mask, target)
}

func (h *handlerImpl) InsecureTime(ctx context.Context, in *usercall.Input) int64 {
	return h.sup.clock.Now().UnixNano()
}

func (h *handlerImpl) Alloc(ctx context.Context, in *usercall.Input, size, align uint64) (uint64, error) {
	return h.sup.alloc.alloc(size, align)
}

func (h *handlerImpl) Free(ctx context.Context, in *usercall.Input, ptr, size, align uint64) error {
	return h.sup.alloc.free(ptr, size, align)
}

func (h *handlerImpl) AsyncQueues(ctx context.Context, in *usercall.Input) error {
	return usercall.ErrOther
}
