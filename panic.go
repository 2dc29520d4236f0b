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
	"github.com/enclaveos/runtime/usercall"
	"github.com/jacobsa/syncutil"
)

// panicAggregator is the PanicReason of §3: a primary slot installed
// by the first non-main thread reporting Exit or InvalidUsercall,
// with every later such report falling into others. Guarded by a
// cooperative mutex like the teacher's samples/memfs guards its
// inode map — see testable property 7.
type panicAggregator struct {
	mu syncutil.InvariantMutex

	// GUARDED_BY(mu)
	primary *usercall.EnclaveAbort
	// GUARDED_BY(mu)
	others []*usercall.EnclaveAbort
}

func newPanicAggregator() *panicAggregator {
	p := &panicAggregator{}
	p.mu = syncutil.NewInvariantMutex(p.checkInvariants)
	return p
}

// INVARIANT: others is empty until primary has been set.
func (p *panicAggregator) checkInvariants() {
	if p.primary == nil && len(p.others) != 0 {
		panic("panicAggregator: others populated before primary")
	}
}

func (p *panicAggregator) report(a *usercall.EnclaveAbort) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.primary == nil {
		p.primary = a
		return
	}
	p.others = append(p.others, a)
}

func (p *panicAggregator) Primary() *usercall.EnclaveAbort {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.primary
}

func (p *panicAggregator) Others() []*usercall.EnclaveAbort {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*usercall.EnclaveAbort, len(p.others))
	copy(out, p.others)
	return out
}
