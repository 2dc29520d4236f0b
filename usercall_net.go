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
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/enclaveos/runtime/usercall"
)

// mapNetError translates a net/os-level error into one of the
// sentinel kinds §7's taxonomy names, falling back to ErrOther. This
// is the only place the runtime interprets *net.OpError and friends.
func mapNetError(err error) error {
	if err == nil {
		return nil
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return usercall.ErrWouldBlock
		}
		if errors.Is(opErr.Err, net.ErrClosed) || errors.Is(opErr.Err, os.ErrClosed) {
			return usercall.ErrBrokenPipe
		}
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return usercall.ErrConnectionRefused
		}
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed) {
		return usercall.ErrBrokenPipe
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return usercall.ErrWouldBlock
	}
	return usercall.ErrOther
}

// netListen and netDial are the built-in TCP implementation behind
// bind_stream/connect_stream when the usercall extension declines to
// handle the address itself (§4.7).
func netListen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

func netDial(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}
