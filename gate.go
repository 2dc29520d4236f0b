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

import "sync"

// opGate serialises one kind of operation (read, write, flush,
// accept) against a single underlying resource the way §4.4/§4.5
// describe: a critical section runs the operation once, and on
// success every other currently-parked caller is woken so it gets a
// chance to run next; on failure only the caller that hit the error
// sees it, and everyone already parked stays parked until some future
// call succeeds. A plain sync.Mutex cannot express that asymmetry —
// its unlock always hands off to exactly one waiter regardless of
// outcome — so this type exists instead of one. See design note (b)
// in the runtime's notes on open questions.
type opGate struct {
	mu   sync.Mutex
	busy bool
	ch   chan struct{}
}

func newOpGate() *opGate {
	return &opGate{ch: make(chan struct{})}
}

// Do runs fn with exclusive access to the gate.
func (g *opGate) Do(fn func() error) error {
	for {
		g.mu.Lock()
		if !g.busy {
			g.busy = true
			g.mu.Unlock()
			break
		}
		wait := g.ch
		g.mu.Unlock()
		<-wait
	}

	err := fn()

	g.mu.Lock()
	g.busy = false
	if err == nil {
		old := g.ch
		g.ch = make(chan struct{})
		g.mu.Unlock()
		close(old)
	} else {
		g.mu.Unlock()
	}
	return err
}
