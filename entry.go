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
	"runtime"

	"github.com/enclaveos/runtime/internal/unbounded"
	"github.com/enclaveos/runtime/usercall"
)

// MainEntry runs a command enclave to completion, per §4.8: it builds
// event queues for mainTcs and every address in extraTcs, wraps main
// as RunningTcs with mode ExecutableMain, runs a reactor until it
// yields a verdict, then aborts every thread, drains the thread
// queue, and consolidates the verdict with any recorded panic reason:
// main's own abort outranks everything, and only when main returned
// Ok does a secondary thread's primary panic surface instead.
func MainEntry(mainTcs usercall.TcsAddress, extraTcs []usercall.TcsAddress, coro Coroutine, cfg Config) error {
	all := append([]usercall.TcsAddress{mainTcs}, extraTcs...)
	sup := NewSupervisor(all, true, cfg.Ext, cfg.ForwardPanics, cfg.clock(), cfg.stdin(), cfg.stdout(), cfg.stderr())

	n := cfg.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}

	ioQ := unbounded.New[UsercallSendData]()
	workers := NewWorkerPool(n, coro, ioQ)
	sup.SetSink(workers)

	reactor := NewReactor(sup, &handlerImpl{sup: sup}, workers, ioQ, cfg.ForwardPanics)

	for _, tcs := range extraTcs {
		sup.threadsQueue.Push(StoppedTcs{Tcs: tcs, Queue: sup.QueueFor(tcs)})
	}

	mainRunning := usercall.NewRunningTcs(mainTcs, usercall.ExecutableMain, sup.QueueFor(mainTcs))
	workers.Submit(Work{Running: mainRunning, Initial: &InitialEntry{Tcs: mainTcs}})

	outcome := reactor.Run()

	sup.AbortAllThreads()
	workers.Stop()
	for {
		if _, ok := sup.threadsQueue.TryPop(); !ok {
			break
		}
	}

	if outcome.Abort != nil {
		return outcome.Abort
	}
	if primary := sup.panics.Primary(); primary != nil {
		return primary
	}
	return nil
}

// Enclave is a library enclave built by Library: a supervisor with a
// pool of statically known TCSes, none of them yet entered.
type Enclave struct {
	sup *Supervisor
}

// Library builds a supervisor for tcses without entering anything, so
// that LibraryEntry can later pop one and drive it per call.
func Library(tcses []usercall.TcsAddress, cfg Config) *Enclave {
	sup := NewSupervisor(tcses, false, cfg.Ext, false, cfg.clock(), cfg.stdin(), cfg.stdout(), cfg.stderr())
	for _, tcs := range tcses {
		sup.threadsQueue.Push(StoppedTcs{Tcs: tcs, Queue: sup.QueueFor(tcs)})
	}
	return &Enclave{sup: sup}
}

// LibraryEntry pops one StoppedTcs, enters it in Library mode with a
// single-worker pool scoped to this call, and returns (r1, r2) or the
// mapped error. The TCS is re-queued on ordinary return (done by the
// reactor's handling of the Return outcome).
func (e *Enclave) LibraryEntry(coro Coroutine, p1, p2, p3, p4, p5 uint64) (uint64, uint64, error) {
	st, ok := e.sup.threadsQueue.TryPop()
	if !ok {
		return 0, 0, usercall.ErrWouldBlock
	}

	ioQ := unbounded.New[UsercallSendData]()
	workers := NewWorkerPool(1, coro, ioQ)
	e.sup.SetSink(workers)
	defer workers.Stop()

	reactor := NewReactor(e.sup, &handlerImpl{sup: e.sup}, workers, ioQ, false)

	running := usercall.NewRunningTcs(st.Tcs, usercall.Library, st.Queue)
	workers.Submit(Work{
		Running: running,
		Initial: &InitialEntry{Tcs: st.Tcs, P1: p1, P2: p2, P3: p3, P4: p4, P5: p5},
	})

	outcome := reactor.Run()
	if outcome.Abort != nil {
		return 0, 0, outcome.Abort
	}
	return outcome.V1, outcome.V2, nil
}
