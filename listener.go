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

import "net"

// listenerAdapter is the AsyncListenerAdapter of §3/§4.5: a
// connection acceptor with a single accept-waiter queue sharing the
// same fairness discipline as streamAdapter.
type listenerAdapter struct {
	ln        net.Listener
	acceptGate *opGate
}

func newListenerAdapter(ln net.Listener) *listenerAdapter {
	return &listenerAdapter{ln: ln, acceptGate: newOpGate()}
}

func (a *listenerAdapter) Accept() (net.Conn, error) {
	var conn net.Conn
	err := a.acceptGate.Do(func() error {
		var e error
		conn, e = a.ln.Accept()
		return e
	})
	if err != nil {
		return nil, mapNetError(err)
	}
	return conn, nil
}

func (a *listenerAdapter) Close() error {
	return a.ln.Close()
}

// safeAddr stringifies addr, returning the sentinel "error" string
// §4.5 specifies for address-resolution failure. net.Addr.String()
// never actually errors for the stdlib implementations this runtime
// uses, but a nil addr (possible on a closed listener) must still
// degrade cleanly.
func safeAddr(addr net.Addr) string {
	if addr == nil {
		return "error"
	}
	return addr.String()
}
