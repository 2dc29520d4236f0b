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

// Command pingpong is scenario S2: a command enclave whose main TCS
// binds a loopback listener, launches a second TCS that connects to
// it, accepts the connection, and has both ends exchange four-byte
// messages before closing and returning.
package main

import (
	"fmt"
	"log"

	"github.com/enclaveos/runtime"
	"github.com/enclaveos/runtime/enclavetest"
	"github.com/enclaveos/runtime/usercall"
)

const (
	mainTcs usercall.TcsAddress = 1
	peerTcs usercall.TcsAddress = 2
)

func main() {
	coro := enclavetest.New()

	// addrCh hands the bound loopback address from the main TCS's
	// script to the peer TCS's script, standing in for whatever
	// out-of-band channel a real pair of enclave threads would use
	// (a pipe fd, a shared memory word) to learn each other's address.
	addrCh := make(chan string, 1)

	coro.Register(mainTcs, func(y *enclavetest.Yielder, p1, p2, p3, p4, p5 uint64) {
		lnFd, _ := y.Do(usercall.Request{Op: usercall.OpBindStream, Addr: "127.0.0.1:0", WantLocal: true})
		local, _ := y.Addrs()
		addrCh <- local

		y.Do(usercall.Request{Op: usercall.OpLaunchThread})

		connFd, _ := y.Do(usercall.Request{Op: usercall.OpAcceptStream, Fd: lnFd})

		y.Do(usercall.Request{Op: usercall.OpWrite, Fd: connFd, Buf: []byte("ping")})
		y.Do(usercall.Request{Op: usercall.OpFlush, Fd: connFd})

		reply := make([]byte, 4)
		y.Do(usercall.Request{Op: usercall.OpRead, Fd: connFd, Buf: reply})
		if string(reply) != "pong" {
			log.Fatalf("main: expected pong, got %q", reply)
		}

		y.Do(usercall.Request{Op: usercall.OpClose, Fd: connFd})
		y.Do(usercall.Request{Op: usercall.OpClose, Fd: lnFd})
		y.Exit(false, "")
	})

	coro.Register(peerTcs, func(y *enclavetest.Yielder, p1, p2, p3, p4, p5 uint64) {
		addr := <-addrCh

		fd, _ := y.Do(usercall.Request{Op: usercall.OpConnectStream, Addr: addr})

		req := make([]byte, 4)
		y.Do(usercall.Request{Op: usercall.OpRead, Fd: fd, Buf: req})
		if string(req) != "ping" {
			log.Fatalf("peer: expected ping, got %q", req)
		}

		y.Do(usercall.Request{Op: usercall.OpWrite, Fd: fd, Buf: []byte("pong")})
		y.Do(usercall.Request{Op: usercall.OpFlush, Fd: fd})
		y.Do(usercall.Request{Op: usercall.OpClose, Fd: fd})
		y.Return(0, 0)
	})

	err := enclave.MainEntry(mainTcs, []usercall.TcsAddress{peerTcs}, coro, enclave.Config{})
	if err != nil {
		log.Fatalf("main_entry: %v", err)
	}
	fmt.Println("main_entry returned Ok")
}
