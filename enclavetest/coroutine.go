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

// Package enclavetest provides a scripted, channel-driven fake of the
// enclave.Coroutine primitive, standing in for the inline-assembly TCS
// enter/exit the runtime treats as out of scope. A test or sample
// registers one Go function per TCS; that function drives usercalls by
// calling methods on the Yielder it is handed, and the fake makes each
// call look, from the runtime's point of view, exactly like driving a
// real coroutine: Enter blocks until the registered function either
// yields a usercall or returns.
package enclavetest

import (
	"bytes"
	"sync"

	"github.com/enclaveos/runtime"
	"github.com/enclaveos/runtime/usercall"
)

// Yielder is what a registered TCS script uses to issue usercalls and
// to finish. It is only ever driven by the goroutine running that
// script; it is not safe to share across TCSes.
type Yielder struct {
	yieldCh  chan usercall.Request
	resumeCh chan [2]uint64
	doneCh   chan enclave.ReturnValue

	scratch *[1024]byte
}

// Do issues req as a usercall and blocks until the fake coroutine
// resumes it with a two-word result.
func (y *Yielder) Do(req usercall.Request) (v1, v2 uint64) {
	y.yieldCh <- req
	r := <-y.resumeCh
	return r[0], r[1]
}

// Addrs reads the local and peer address strings a preceding
// bind_stream/accept_stream/connect_stream call wrote into this TCS's
// current scratch buffer, NUL-separated the way ResumeEntry.
// ScratchPayload lays them out.
func (y *Yielder) Addrs() (local, peer string) {
	if y.scratch == nil {
		return "", ""
	}
	b := y.scratch[:]
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", ""
	}
	local = string(b[:i])
	rest := b[i+1:]
	if j := bytes.IndexByte(rest, 0); j >= 0 {
		rest = rest[:j]
	}
	peer = string(rest)
	return local, peer
}

// AllocBytes reads the first n bytes a preceding read_alloc call wrote
// into this TCS's current scratch buffer.
func (y *Yielder) AllocBytes(n uint64) []byte {
	if y.scratch == nil {
		return nil
	}
	return append([]byte(nil), y.scratch[:n]...)
}

// Exit issues an exit usercall. If isPanic is set, message is copied
// into the scratch buffer the fake coroutine most recently handed this
// TCS, the way a real enclave's panic handler writes its message
// before trapping out. Exit never returns; the calling goroutine
// should simply stop after calling it.
func (y *Yielder) Exit(isPanic bool, message string) {
	if isPanic && y.scratch != nil {
		n := copy(y.scratch[:], []byte(message))
		if n < len(y.scratch) {
			y.scratch[n] = 0
		}
	}
	y.yieldCh <- usercall.Request{Op: usercall.OpExit, Panic: isPanic}
	select {}
}

// Return finishes the script with a two-word result, matching an
// ordinary coroutine Return.
func (y *Yielder) Return(v1, v2 uint64) {
	y.doneCh <- enclave.ReturnValue{V1: v1, V2: v2}
	select {}
}

// scriptedTcs bundles one registered script with the channels its
// Yielder uses and the state needed to start it exactly once.
type scriptedTcs struct {
	once   sync.Once
	script func(y *Yielder, p1, p2, p3, p4, p5 uint64)
	y      *Yielder
}

func (st *scriptedTcs) wait() enclave.CoResult {
	select {
	case req := <-st.y.yieldCh:
		return enclave.CoResult{Yield: &scriptedYielded{tcs: st, req: req}}
	case rv := <-st.y.doneCh:
		rv := rv
		return enclave.CoResult{Return: &rv}
	}
}

// scriptedYielded is the Yielded half of a scriptedTcs's in-flight
// usercall.
type scriptedYielded struct {
	tcs *scriptedTcs
	req usercall.Request
}

func (sy *scriptedYielded) Request() usercall.Request {
	return sy.req
}

func (sy *scriptedYielded) Resume(r1, r2 uint64, scratch *[1024]byte) enclave.CoResult {
	sy.tcs.y.scratch = scratch
	sy.tcs.y.resumeCh <- [2]uint64{r1, r2}
	return sy.tcs.wait()
}

// Coroutine is an enclave.Coroutine backed entirely by registered Go
// functions, one per TCS address.
type Coroutine struct {
	mu    sync.Mutex
	tcses map[usercall.TcsAddress]*scriptedTcs
}

// New returns an empty Coroutine. Register every TCS address it will
// be asked to Enter before handing it to enclave.MainEntry, Library,
// or LibraryEntry.
func New() *Coroutine {
	return &Coroutine{tcses: make(map[usercall.TcsAddress]*scriptedTcs)}
}

// Register associates tcs with script, so that a future Enter(tcs,
// ...) starts script in its own goroutine the first time and replays
// its Yielder's channels on every subsequent Resume.
func (c *Coroutine) Register(tcs usercall.TcsAddress, script func(y *Yielder, p1, p2, p3, p4, p5 uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tcses[tcs] = &scriptedTcs{
		script: script,
		y: &Yielder{
			yieldCh:  make(chan usercall.Request),
			resumeCh: make(chan [2]uint64),
			doneCh:   make(chan enclave.ReturnValue, 1),
		},
	}
}

// Enter implements enclave.Coroutine.
func (c *Coroutine) Enter(tcs usercall.TcsAddress, p1, p2, p3, p4, p5 uint64, scratch *[1024]byte) enclave.CoResult {
	c.mu.Lock()
	st, ok := c.tcses[tcs]
	c.mu.Unlock()
	if !ok {
		panic("enclavetest: Enter called on unregistered TCS " + tcs.String())
	}

	st.y.scratch = scratch
	st.once.Do(func() {
		go st.script(st.y, p1, p2, p3, p4, p5)
	})
	return st.wait()
}
