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

package enclave_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/enclaveos/runtime"
	"github.com/enclaveos/runtime/enclavetest"
	"github.com/enclaveos/runtime/usercall"
)

// S1 — library echo: one TCS writes "hi" to stdout, flushes, returns.
func TestScenarioS1LibraryEcho(t *testing.T) {
	const tcs usercall.TcsAddress = 1

	var stdout bytes.Buffer
	coro := enclavetest.New()
	coro.Register(tcs, func(y *enclavetest.Yielder, p1, p2, p3, p4, p5 uint64) {
		y.Do(usercall.Request{Op: usercall.OpWrite, Fd: 1, Buf: []byte("hi")})
		y.Do(usercall.Request{Op: usercall.OpFlush, Fd: 1})
		y.Return(0, 0)
	})

	lib := enclave.Library([]usercall.TcsAddress{tcs}, enclave.Config{Stdout: &stdout})

	v1, v2, err := lib.LibraryEntry(coro, 0, 0, 0, 0, 0)
	if err != nil {
		t.Fatalf("library_entry: %v", err)
	}
	if v1 != 0 || v2 != 0 {
		t.Fatalf("library_entry = (%d, %d), want (0, 0)", v1, v2)
	}
	if stdout.String() != "hi" {
		t.Fatalf("stdout = %q, want %q", stdout.String(), "hi")
	}
}

// S3 — panic propagation: main writes "boom!" into scratch and exits
// with panic=true; main_entry's error must mention it.
func TestScenarioS3PanicPropagation(t *testing.T) {
	const tcs usercall.TcsAddress = 1

	coro := enclavetest.New()
	coro.Register(tcs, func(y *enclavetest.Yielder, p1, p2, p3, p4, p5 uint64) {
		y.Exit(true, "boom!")
	})

	err := enclave.MainEntry(tcs, nil, coro, enclave.Config{ForwardPanics: false})
	if err == nil {
		t.Fatalf("main_entry: expected an error")
	}
	if !strings.Contains(err.Error(), "boom!") {
		t.Fatalf("main_entry error = %q, want it to contain %q", err.Error(), "boom!")
	}
}

// S2 — bind/accept/connect round trip: main binds a loopback listener,
// launches a peer that connects to it, and both ends exchange 4-byte
// messages before closing and returning.
func TestScenarioS2BindAcceptConnect(t *testing.T) {
	const (
		mainTcs usercall.TcsAddress = 1
		peerTcs usercall.TcsAddress = 2
	)

	addrCh := make(chan string, 1)
	coro := enclavetest.New()

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
			panic("main: expected pong, got " + string(reply))
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
			panic("peer: expected ping, got " + string(req))
		}

		y.Do(usercall.Request{Op: usercall.OpWrite, Fd: fd, Buf: []byte("pong")})
		y.Do(usercall.Request{Op: usercall.OpFlush, Fd: fd})
		y.Do(usercall.Request{Op: usercall.OpClose, Fd: fd})
		y.Return(0, 0)
	})

	err := enclave.MainEntry(mainTcs, []usercall.TcsAddress{peerTcs}, coro, enclave.Config{})
	if err != nil {
		t.Fatalf("main_entry: %v", err)
	}
}

// S5 — invalid event mask: wait(0x80, WAIT_NO) must report InvalidInput.
func TestScenarioS5InvalidEventMask(t *testing.T) {
	sup := enclave.NewSupervisor([]usercall.TcsAddress{1}, true, nil, false, nil, &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	rt := usercall.NewRunningTcs(1, usercall.ExecutableMain, sup.QueueFor(1))

	_, err := rt.Wait(0x80, false)
	if err != usercall.ErrInvalidInput {
		t.Fatalf("Wait(0x80, ...) = %v, want ErrInvalidInput", err)
	}
}

// S6 — main-returned abort: command main returning (0,0) must surface
// an error mentioning "main entrypoint".
func TestScenarioS6MainReturnedAbort(t *testing.T) {
	const tcs usercall.TcsAddress = 1

	coro := enclavetest.New()
	coro.Register(tcs, func(y *enclavetest.Yielder, p1, p2, p3, p4, p5 uint64) {
		y.Return(0, 0)
	})

	err := enclave.MainEntry(tcs, nil, coro, enclave.Config{})
	if err == nil {
		t.Fatalf("main_entry: expected an error")
	}
	if !strings.Contains(err.Error(), "main entrypoint") {
		t.Fatalf("main_entry error = %q, want it to mention \"main entrypoint\"", err.Error())
	}
}
