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
	"io"
	"sync/atomic"

	"github.com/enclaveos/runtime/internal/unbounded"
	"github.com/enclaveos/runtime/usercall"
	"github.com/jacobsa/timeutil"
)

// workSink is the narrow interface the handler needs to hand a freshly
// launched thread's Work back to whatever worker pool is currently
// active. It is set once per MainEntry/LibraryEntry run.
type workSink interface {
	Submit(Work)
}

// Supervisor is the EnclaveState of §3: it owns the fd table, the
// per-TCS event queues, the thread-launch queue, the exit flag, the
// panic aggregator and the usercall extension, and arbitrates
// termination. event_queues is populated once at construction and
// never mutated again, so concurrent reads need no lock — exactly the
// property §5 calls out.
type Supervisor struct {
	command       bool
	forwardPanics bool
	clock         timeutil.Clock
	ext           Extension

	fds *fdTable

	queues map[usercall.TcsAddress]*usercall.EventQueue

	exiting atomic.Bool

	threadsQueue *unbounded.Queue[StoppedTcs]

	panics *panicAggregator
	alloc  *hostAllocator

	sink workSink
}

// NewSupervisor builds a supervisor for all of tcses, registering
// exactly one event queue per address (testable property 1: a
// duplicate address is a fatal assertion).
func NewSupervisor(tcses []usercall.TcsAddress, command bool, ext Extension, forwardPanics bool, clock timeutil.Clock, stdin io.Reader, stdout, stderr io.Writer) *Supervisor {
	if ext == nil {
		ext = NoExtension{}
	}
	if clock == nil {
		clock = timeutil.RealClock()
	}

	s := &Supervisor{
		command:       command,
		forwardPanics: forwardPanics,
		clock:         clock,
		ext:           ext,
		fds:           newFdTable(stdin, stdout, stderr),
		queues:        make(map[usercall.TcsAddress]*usercall.EventQueue, len(tcses)),
		threadsQueue:  unbounded.New[StoppedTcs](),
		panics:        newPanicAggregator(),
		alloc:         newHostAllocator(),
	}

	for _, tcs := range tcses {
		if _, dup := s.queues[tcs]; dup {
			panic("enclave: duplicate TCS address registered: " + tcs.String())
		}
		s.queues[tcs] = usercall.NewEventQueue()
	}

	return s
}

// QueueFor returns the registered event queue for tcs, or nil if it
// was never registered.
func (s *Supervisor) QueueFor(tcs usercall.TcsAddress) *usercall.EventQueue {
	return s.queues[tcs]
}

// SetSink wires the worker pool currently driving this supervisor's
// coroutine calls, so launch_thread can submit freshly popped threads
// to it.
func (s *Supervisor) SetSink(sink workSink) {
	s.sink = sink
}

// Send implements §4.6's send(mask, target?).
func (s *Supervisor) Send(mask uint8, target *usercall.TcsAddress) error {
	if !usercall.ValidMask(mask) {
		return usercall.ErrInvalidInput
	}

	if target != nil {
		q, ok := s.queues[*target]
		if !ok {
			return usercall.ErrInvalidInput
		}
		q.Send(mask)
		return nil
	}

	for _, q := range s.queues {
		q.Send(mask)
	}
	return nil
}

// AbortAllThreads sets the exit flag and fires the abort bit on every
// registered event queue, per §3's lifecycle and testable property 5.
func (s *Supervisor) AbortAllThreads() {
	s.exiting.Store(true)
	for _, q := range s.queues {
		q.SendAbort()
	}
}

// Exiting reports whether AbortAllThreads has run.
func (s *Supervisor) Exiting() bool {
	return s.exiting.Load()
}
