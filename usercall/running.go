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

package usercall

import "errors"

// errSecondary is returned internally by Wait when it observes the
// abort bit; the dispatcher translates this into EnclaveAbort{Kind:
// AbortSecondary} rather than surfacing it to the enclave as an
// ordinary error.
var errSecondary = errors.New("usercall: wait observed abort bit")

// RunningTcs is the live per-TCS state a handler sees while the TCS
// is entered: its event queue, the unordered buffer of events that
// arrived but matched no requested mask, and the mode it was entered
// under.
type RunningTcs struct {
	Tcs   TcsAddress
	Mode  EntryMode
	queue *EventQueue

	pending     []uint8
	pendingMask uint8
}

// NewRunningTcs wraps tcs as freshly entered under mode, backed by
// queue for event delivery.
func NewRunningTcs(tcs TcsAddress, mode EntryMode, queue *EventQueue) *RunningTcs {
	return &RunningTcs{Tcs: tcs, Mode: mode, queue: queue}
}

// Queue returns the TCS's event queue, so that the caller can hand it
// back to a StoppedTcs once the TCS stops running.
func (rt *RunningTcs) Queue() *EventQueue {
	return rt.queue
}

// Wait implements §4.6's algorithm: first drain a matching event from
// the pending buffer left over by an earlier call, then drain the
// underlying queue, parking (if indefinite) until a match or the
// abort bit arrives. A popped event can carry bits outside mask; only
// the matching bits are returned, and the rest go back into the
// pending buffer for a later call to claim.
func (rt *RunningTcs) Wait(mask uint8, indefinite bool) (uint8, error) {
	if !ValidMask(mask) {
		return 0, ErrInvalidInput
	}

	if rt.pendingMask&mask != 0 {
		for i, e := range rt.pending {
			matched := e & mask
			if matched == 0 {
				continue
			}
			if rest := e &^ mask; rest != 0 {
				rt.pending[i] = rest
			} else {
				rt.pending = append(rt.pending[:i:i], rt.pending[i+1:]...)
			}
			rt.recomputePendingMask()
			return matched, nil
		}
	}

	for {
		e, ok := rt.queue.tryPop()
		if !ok {
			if !indefinite {
				return 0, ErrWouldBlock
			}
			<-rt.queue.notify
			continue
		}
		if e&eventAbort != 0 {
			return 0, errSecondary
		}
		matched := e & mask
		if matched != 0 {
			if rest := e &^ mask; rest != 0 {
				rt.pending = append(rt.pending, rest)
				rt.recomputePendingMask()
			}
			return matched, nil
		}
		rt.pending = append(rt.pending, e)
		rt.pendingMask |= e
	}
}

func (rt *RunningTcs) recomputePendingMask() {
	var m uint8
	for _, e := range rt.pending {
		m |= e
	}
	rt.pendingMask = m
}
