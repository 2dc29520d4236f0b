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

import "github.com/enclaveos/runtime/usercall"

// StoppedTcs is a TCS not currently executing, owning the receiving
// half of its event queue. It lives in the supervisor's thread-launch
// queue until entered by launch_thread or library_entry.
type StoppedTcs struct {
	Tcs   usercall.TcsAddress
	Queue *usercall.EventQueue
}

// InitialEntry is a Work request to enter tcs for the first time (or,
// for a command enclave's main, the very first entry of the run).
type InitialEntry struct {
	Tcs                    usercall.TcsAddress
	P1, P2, P3, P4, P5 uint64
}

// ResumeEntry is a Work request to re-enter a previously yielded
// coroutine with a two-word result. ScratchPayload, when non-nil, is
// copied into the fresh scratch buffer the worker allocates for this
// resume before the coroutine is re-entered — the out-of-band channel
// bind_stream/accept_stream/connect_stream's address strings and
// read_alloc's bytes ride on, since the out-pointer writes the real
// ABI would use for them are out of scope here (§1, §6) the same way
// the panic message on exit is.
type ResumeEntry struct {
	Yielded        Yielded
	R1, R2         uint64
	ScratchPayload []byte
}

// Work is a re-entry request bundled with the RunningTcs it applies
// to: exactly one of Initial or Resume is set.
type Work struct {
	Running *usercall.RunningTcs
	Initial *InitialEntry
	Resume  *ResumeEntry
}

// UsercallSendData is what a worker produces after driving the
// coroutine primitive once: the outcome, the RunningTcs it applies
// to, and the scratch buffer the coroutine call was given.
type UsercallSendData struct {
	Result  CoResult
	Running *usercall.RunningTcs
	Scratch *[1024]byte
}

// Outcome is the final result of a reactor run: either an ordinary
// two-word value or a control-flow abort.
type Outcome struct {
	V1, V2 uint64
	Abort  *usercall.EnclaveAbort
}
