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

// Package enclave hosts a running enclave from the untrusted side: a
// pool of worker threads enters TCSes and observes coroutine-style
// yields, a single-threaded reactor fulfils the resulting usercalls
// against real sockets, listeners and file descriptors, and a
// supervisor owns the enclave-wide state (fd table, event queues,
// thread-launch queue, panic aggregation) shared between them.
//
// The primary elements of interest are:
//
//   - MainEntry, which runs a command enclave's main TCS (and any
//     statically known extra TCSes) to completion.
//
//   - Library and (*Enclave).LibraryEntry, for enclaves entered
//     per-call rather than owning a main thread.
//
//   - usercall.Handler, the operation surface the reactor dispatches
//     every yielded usercall against; enclaveutil.NotImplementedHandler
//     may be embedded to obtain default implementations for the
//     operations a particular enclave never exercises.
//
//   - Coroutine, the black-box interface to the external
//     coenter/coreturn primitive that a loader supplies.
package enclave
