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

package usercall

import (
	"context"
	"errors"
)

// Opcode names one of the operations in §4.7's handler surface. The
// real usercall ABI decodes these (and their arguments) out of five
// raw machine words; that decoding is an external, independently
// specified module (§1, §6). Request is the seam this package
// exposes instead: whatever produces a Yielded value is responsible
// for having already decoded the five words into one of these.
type Opcode int

const (
	OpRead Opcode = iota
	OpReadAlloc
	OpWrite
	OpFlush
	OpClose
	OpBindStream
	OpAcceptStream
	OpConnectStream
	OpLaunchThread
	OpExit
	OpWait
	OpSend
	OpInsecureTime
	OpAlloc
	OpFree
	OpAsyncQueues
)

// Request is the decoded form of a single usercall. Only the fields
// relevant to Op are populated; see the comment on each field for
// which operations use it.
type Request struct {
	Op Opcode

	Fd uint64 // read, read_alloc, write, flush, close, accept_stream

	Buf []byte // read (capacity to fill), write (bytes to send)

	Addr string // bind_stream, connect_stream

	WantLocal bool // bind_stream, accept_stream, connect_stream
	WantPeer  bool // accept_stream, connect_stream

	Mask       uint8       // wait, send
	Indefinite bool        // wait
	Target     *TcsAddress // send (nil means broadcast)

	Panic bool // exit

	Size, Align, Ptr uint64 // alloc, free
}

// Result is what a Dispatch call produces for the enclave on the
// ordinary (non-abort) path: the two return words plus, for the
// stream/listener operations, the address strings the real ABI would
// have written through enclave-provided out-pointers.
type Result struct {
	V1, V2     uint64
	Local      string
	Peer       string
	ReadAlloc  []byte
}

// Dispatch invokes the Handler method matching req.Op and translates
// its result into the two-word-or-abort convention of §6: ordinary
// errors are encoded into V1 via encodeResult so the enclave is
// resumed with them; an EnclaveAbort is returned as err instead, so
// the reactor routes it to the return task rather than resuming.
func Dispatch(ctx context.Context, h Handler, in *Input, req Request) (Result, error) {
	switch req.Op {
	case OpRead:
		n, e := h.Read(ctx, in, req.Fd, req.Buf)
		return encodeResult(uint64(n), 0, e)

	case OpReadAlloc:
		data, e := h.ReadAlloc(ctx, in, req.Fd)
		if e != nil {
			return encodeResult(0, 0, e)
		}
		return Result{V1: uint64(len(data)), ReadAlloc: data}, nil

	case OpWrite:
		n, e := h.Write(ctx, in, req.Fd, req.Buf)
		return encodeResult(uint64(n), 0, e)

	case OpFlush:
		e := h.Flush(ctx, in, req.Fd)
		return encodeResult(0, 0, e)

	case OpClose:
		h.Close(ctx, in, req.Fd)
		return Result{}, nil

	case OpBindStream:
		fd, local, e := h.BindStream(ctx, in, req.Addr, req.WantLocal)
		if e != nil {
			return encodeResult(0, 0, e)
		}
		return Result{V1: fd, Local: local}, nil

	case OpAcceptStream:
		fd, local, peer, e := h.AcceptStream(ctx, in, req.Fd, req.WantLocal, req.WantPeer)
		if e != nil {
			return encodeResult(0, 0, e)
		}
		return Result{V1: fd, Local: local, Peer: peer}, nil

	case OpConnectStream:
		fd, local, peer, e := h.ConnectStream(ctx, in, req.Addr, req.WantLocal, req.WantPeer)
		if e != nil {
			return encodeResult(0, 0, e)
		}
		return Result{V1: fd, Local: local, Peer: peer}, nil

	case OpLaunchThread:
		e := h.LaunchThread(ctx, in)
		return encodeResult(0, 0, e)

	case OpExit:
		return Result{}, h.Exit(ctx, in, req.Panic)

	case OpWait:
		ev, e := h.Wait(ctx, in, req.Mask, req.Indefinite)
		if errors.Is(e, errSecondary) {
			return Result{}, &EnclaveAbort{Kind: AbortSecondary}
		}
		return encodeResult(uint64(ev), 0, e)

	case OpSend:
		e := h.Send(ctx, in, req.Mask, req.Target)
		return encodeResult(0, 0, e)

	case OpInsecureTime:
		return Result{V1: uint64(h.InsecureTime(ctx, in))}, nil

	case OpAlloc:
		ptr, e := h.Alloc(ctx, in, req.Size, req.Align)
		return encodeResult(ptr, 0, e)

	case OpFree:
		e := h.Free(ctx, in, req.Ptr, req.Size, req.Align)
		return encodeResult(0, 0, e)

	case OpAsyncQueues:
		e := h.AsyncQueues(ctx, in)
		return encodeResult(0, 0, e)

	default:
		return Result{}, &EnclaveAbort{Kind: AbortInvalidUsercall, Usercall: uint64(req.Op)}
	}
}

// Error codes this runtime uses to encode an ordinary (non-abort)
// error into the V1 return word. The real ABI's encoding is out of
// scope (§6); this is a concrete stand-in consistent within this
// package.
const (
	codeBrokenPipe        uint64 = 1<<63 | 1
	codeWouldBlock        uint64 = 1<<63 | 2
	codeNotConnected      uint64 = 1<<63 | 3
	codeInvalidInput      uint64 = 1<<63 | 4
	codeConnectionRefused uint64 = 1<<63 | 5
	codeOther             uint64 = 1<<63 | 6
)

// encodeResult folds an ordinary error (never an *EnclaveAbort) into
// V1 per the codes above, leaving err nil so the caller resumes the
// enclave instead of treating it as a control-flow abort.
func encodeResult(v1, v2 uint64, err error) (Result, error) {
	if err == nil {
		return Result{V1: v1, V2: v2}, nil
	}
	if abort, ok := err.(*EnclaveAbort); ok {
		return Result{}, abort
	}
	switch {
	case errors.Is(err, ErrBrokenPipe):
		return Result{V1: codeBrokenPipe}, nil
	case errors.Is(err, ErrWouldBlock):
		return Result{V1: codeWouldBlock}, nil
	case errors.Is(err, ErrNotConnected):
		return Result{V1: codeNotConnected}, nil
	case errors.Is(err, ErrInvalidInput):
		return Result{V1: codeInvalidInput}, nil
	case errors.Is(err, ErrConnectionRefused):
		return Result{V1: codeConnectionRefused}, nil
	default:
		return Result{V1: codeOther}, nil
	}
}

// IsErrorCode reports whether v1 is one of encodeResult's encoded
// error words and, if so, which sentinel it stands for: the inverse
// of encodeResult's mapping, for code that interprets a resume value
// the way a real enclave's libstd would.
func IsErrorCode(v1 uint64) (error, bool) {
	switch v1 {
	case codeBrokenPipe:
		return ErrBrokenPipe, true
	case codeWouldBlock:
		return ErrWouldBlock, true
	case codeNotConnected:
		return ErrNotConnected, true
	case codeInvalidInput:
		return ErrInvalidInput, true
	case codeConnectionRefused:
		return ErrConnectionRefused, true
	case codeOther:
		return ErrOther, true
	default:
		return nil, false
	}
}
