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

// Coroutine is the black-box external primitive of §2 item 1 and §6:
// it enters a TCS with five word-sized parameters and returns either
// a Yield (the TCS wants a usercall serviced) or a Return (the TCS
// has finished). Its internals — the inline-assembly jump into and
// out of the TCS — are independently specified and out of scope here;
// the runtime only ever calls Enter and, on a Yield, Yielded.Resume.
type Coroutine interface {
	Enter(tcs usercall.TcsAddress, p1, p2, p3, p4, p5 uint64, scratch *[1024]byte) CoResult
}

// Yielded is the usercall-in-flight half of a CoResult: a live,
// one-shot continuation that re-enters the coroutine with a two-word
// result once a handler has produced one.
type Yielded interface {
	// Request returns the decoded usercall this yield represents. The
	// real word-level ABI decode that produces this is out of scope
	// (§1); Request is the seam between the coroutine primitive and
	// the usercall dispatcher.
	Request() usercall.Request

	// Resume re-enters the coroutine with a two-word result and a
	// fresh scratch buffer, producing the next CoResult.
	Resume(r1, r2 uint64, scratch *[1024]byte) CoResult
}

// CoResult is the outcome of a single coroutine entry.
type CoResult struct {
	// Yield is non-nil when the TCS issued a usercall.
	Yield Yielded

	// Return is non-nil when the TCS has finished.
	Return *ReturnValue
}

// ReturnValue is the two-word result a TCS produces on Return.
type ReturnValue struct {
	V1, V2 uint64
}
