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
	"golang.org/x/sync/errgroup"

	"github.com/enclaveos/runtime/internal/scratch"
	"github.com/enclaveos/runtime/internal/unbounded"
)

// WorkerPool is the worker pool of §2 item 5 and §4.1: N goroutines
// (standing in for OS threads — Go's scheduler multiplexes them onto
// real ones) pulling Work and driving the Coroutine primitive.
// Shutdown is coordinated through an errgroup.Group rather than a
// hand-rolled sync.WaitGroup, so a worker goroutine that returns an
// error surfaces through Wait().
type WorkerPool struct {
	coro Coroutine

	workQ *unbounded.Queue[Work]
	ioQ   *unbounded.Queue[UsercallSendData]

	stopCh chan struct{}
	group  *errgroup.Group
}

// NewWorkerPool starts n workers driving coro, forwarding every
// outcome onto ioQ.
func NewWorkerPool(n int, coro Coroutine, ioQ *unbounded.Queue[UsercallSendData]) *WorkerPool {
	wp := &WorkerPool{
		coro:   coro,
		workQ:  unbounded.New[Work](),
		ioQ:    ioQ,
		stopCh: make(chan struct{}),
	}

	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		g.Go(wp.run)
	}
	wp.group = g

	return wp
}

// Submit enqueues w for some worker to pick up. Implements the
// multi-producer/multi-consumer channel of §5: any number of callers
// (the entry points, launch_thread, the reactor's resume path) may
// call this concurrently.
func (wp *WorkerPool) Submit(w Work) {
	wp.workQ.Push(w)
}

// Stop signals every worker to exit. A worker still takes any items
// already queued and exits once it finds the queue empty. Stop does
// not wait; call Wait for that.
func (wp *WorkerPool) Stop() {
	close(wp.stopCh)
}

// Wait blocks until every worker goroutine has returned.
func (wp *WorkerPool) Wait() error {
	return wp.group.Wait()
}

func (wp *WorkerPool) run() error {
	for {
		w, ok := wp.pop()
		if !ok {
			return nil
		}
		wp.drive(w)
	}
}

func (wp *WorkerPool) pop() (Work, bool) {
	for {
		if w, ok := wp.workQ.TryPop(); ok {
			return w, true
		}
		select {
		case <-wp.workQ.Notify():
		case <-wp.stopCh:
			return Work{}, false
		}
	}
}

// drive calls the coroutine primitive exactly once for w, matching
// §4.1's contract: the OS thread that holds w performs the entire
// enter-or-resume call, never migrating the TCS mid-yield.
func (wp *WorkerPool) drive(w Work) {
	buf := scratch.Get()
	var result CoResult

	if w.Initial != nil {
		init := w.Initial
		result = wp.coro.Enter(init.Tcs, init.P1, init.P2, init.P3, init.P4, init.P5, buf)
	} else {
		if p := w.Resume.ScratchPayload; p != nil {
			copy(buf[:], p)
		}
		result = w.Resume.Yielded.Resume(w.Resume.R1, w.Resume.R2, buf)
	}

	wp.ioQ.Push(UsercallSendData{
		Result:  result,
		Running: w.Running,
		Scratch: buf,
	})
}
