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
	"context"
	"fmt"
	"log"

	"github.com/jacobsa/reqtrace"

	"github.com/enclaveos/runtime/internal/scratch"
	"github.com/enclaveos/runtime/internal/unbounded"
	"github.com/enclaveos/runtime/usercall"
)

// returnMsg is the (Result, entry-mode) pair the return task of §4.2
// consumes.
type returnMsg struct {
	mode    usercall.EntryMode
	outcome Outcome
}

// Reactor is the single-threaded cooperative I/O scheduler of §2 item
// 6 and §4.2. Its two long-running tasks run as goroutines
// communicating over unbounded queues rather than true single-thread
// cooperative suspension, since Go's blocking I/O calls already yield
// the goroutine to the runtime scheduler the way an explicit
// Pending/Waker poll loop would in a language without it — see
// DESIGN.md for the reasoning behind that substitution.
type Reactor struct {
	sup           *Supervisor
	handler       usercall.Handler
	workers       *WorkerPool
	ioQ           *unbounded.Queue[UsercallSendData]
	returnQ       *unbounded.Queue[returnMsg]
	forwardPanics bool
}

// NewReactor wires a reactor over sup/handler/workers/ioQ.
func NewReactor(sup *Supervisor, handler usercall.Handler, workers *WorkerPool, ioQ *unbounded.Queue[UsercallSendData], forwardPanics bool) *Reactor {
	return &Reactor{
		sup:           sup,
		handler:       handler,
		workers:       workers,
		ioQ:           ioQ,
		returnQ:       unbounded.New[returnMsg](),
		forwardPanics: forwardPanics,
	}
}

// Run drives both tasks until the return task yields a verdict, per
// §4.2: "the reactor stops when the return task yields a value; the
// I/O task is then abandoned."
func (r *Reactor) Run() Outcome {
	done := make(chan Outcome, 1)
	go r.runIO()
	go r.runReturns(done)
	return <-done
}

func (r *Reactor) runIO() {
	for {
		send, ok := r.ioQ.TryPop()
		if !ok {
			<-r.ioQ.Notify()
			continue
		}
		go r.handleOutcome(send)
	}
}

func (r *Reactor) handleOutcome(send UsercallSendData) {
	switch {
	case send.Result.Yield != nil:
		r.handleYield(send)
	case send.Result.Return != nil:
		r.handleReturn(send)
	}
}

func (r *Reactor) handleYield(send UsercallSendData) {
	defer scratch.Put(send.Scratch)

	y := send.Result.Yield
	req := y.Request()

	ctx := context.Background()
	if reqtrace.Enabled() {
		var report reqtrace.ReportFunc
		ctx, report = reqtrace.StartSpan(ctx, fmt.Sprintf("usercall op %d on %s", req.Op, send.Running.Tcs))
		defer func() { report(nil) }()
	}

	in := &usercall.Input{Running: send.Running}
	result, err := usercall.Dispatch(ctx, r.handler, in, req)

	if err == nil {
		getLogger().Printf("resume %s: (%d, %d)", send.Running.Tcs, result.V1, result.V2)
		r.workers.Submit(Work{
			Running: send.Running,
			Resume:  &ResumeEntry{Yielded: y, R1: result.V1, R2: result.V2, ScratchPayload: scratchPayload(result)},
		})
		return
	}

	abort, ok := err.(*usercall.EnclaveAbort)
	if !ok {
		// Dispatch's contract never returns a bare error; guard anyway
		// by treating it as a clean resume with (0, 0).
		r.workers.Submit(Work{Running: send.Running, Resume: &ResumeEntry{Yielded: y, R1: 0, R2: 0}})
		return
	}

	switch abort.Kind {
	case usercall.AbortExit:
		if abort.Panic {
			abort.Message = parseScratch(send.Scratch)
			trapDebugger(send.Running.Tcs)
			if r.forwardPanics {
				log.Fatalf("enclave panic: %s", abort.Message)
			}
			r.returnQ.Push(returnMsg{mode: send.Running.Mode, outcome: Outcome{Abort: abort}})
		} else {
			r.returnQ.Push(returnMsg{mode: send.Running.Mode, outcome: Outcome{V1: 0, V2: 0}})
		}
	default:
		r.returnQ.Push(returnMsg{mode: send.Running.Mode, outcome: Outcome{Abort: abort}})
	}
}

func (r *Reactor) handleReturn(send UsercallSendData) {
	defer scratch.Put(send.Scratch)

	rv := send.Result.Return

	switch send.Running.Mode {
	case usercall.Library:
		r.sup.threadsQueue.Push(StoppedTcs{Tcs: send.Running.Tcs, Queue: send.Running.Queue()})
		r.returnQ.Push(returnMsg{mode: usercall.Library, outcome: Outcome{V1: rv.V1, V2: rv.V2}})

	case usercall.ExecutableMain:
		r.returnQ.Push(returnMsg{
			mode:    usercall.ExecutableMain,
			outcome: Outcome{Abort: &usercall.EnclaveAbort{Kind: usercall.AbortMainReturned}},
		})

	case usercall.ExecutableNonMain:
		if rv.V1 != 0 || rv.V2 != 0 {
			panic("enclave: non-main TCS returned non-zero values in violation of the ABI")
		}
		if !r.sup.Exiting() {
			r.sup.threadsQueue.Push(StoppedTcs{Tcs: send.Running.Tcs, Queue: send.Running.Queue()})
		}
		r.returnQ.Push(returnMsg{mode: usercall.ExecutableNonMain, outcome: Outcome{V1: 0, V2: 0}})
	}
}

// runReturns is the return task of §4.2's policy table.
func (r *Reactor) runReturns(done chan<- Outcome) {
	for {
		msg, ok := r.returnQ.TryPop()
		if !ok {
			<-r.returnQ.Notify()
			continue
		}

		switch msg.mode {
		case usercall.Library, usercall.ExecutableMain:
			done <- msg.outcome
			return

		case usercall.ExecutableNonMain:
			if msg.outcome.Abort == nil {
				continue // Ok: drop silently
			}
			switch msg.outcome.Abort.Kind {
			case usercall.AbortSecondary:
				continue // already noted by the peer that aborted
			case usercall.AbortExit, usercall.AbortInvalidUsercall:
				r.sup.panics.report(msg.outcome.Abort)
			default:
				r.sup.panics.report(msg.outcome.Abort)
			}
		}
	}
}
