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

package usercall_test

import (
	"testing"

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"

	"github.com/enclaveos/runtime/usercall"
)

func TestEventQueueInvariants(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type EventQueueInvariantsTest struct {
}

func init() { RegisterTestSuite(&EventQueueInvariantsTest{}) }

////////////////////////////////////////////////////////////////////////
// Property 3: every wait() that returns e satisfies e&mask != 0 and
// e&ABORT == 0.
////////////////////////////////////////////////////////////////////////

const abortBit = 1 << 3

func (t *EventQueueInvariantsTest) WaitResultAlwaysMatchesMaskAndNeverAbort() {
	q := usercall.NewEventQueue()
	rt := usercall.NewRunningTcs(1, usercall.ExecutableMain, q)

	const mask = usercall.EventUsercallqNotFull | usercall.EventUnpark
	q.Send(usercall.EventUnpark)
	q.Send(usercall.EventReturnqNotEmpty) // doesn't match mask; should be buffered

	e, err := rt.Wait(mask, false)
	AssertEq(nil, err)
	ExpectTrue(e&mask != 0, "e = %#x", e)
	ExpectEq(e, e&mask, "wait must only return bits from the requested mask")
	ExpectTrue(e&abortBit == 0, "e = %#x", e)
}

func (t *EventQueueInvariantsTest) InvalidMaskIsRejected() {
	q := usercall.NewEventQueue()
	rt := usercall.NewRunningTcs(2, usercall.ExecutableMain, q)

	_, err := rt.Wait(0x80, false)
	ExpectThat(err, Equals(usercall.ErrInvalidInput))
}

////////////////////////////////////////////////////////////////////////
// S4: pending-mask buffering across two wait calls.
////////////////////////////////////////////////////////////////////////

func (t *EventQueueInvariantsTest) UnmatchedEventIsBufferedForALaterWait() {
	q := usercall.NewEventQueue()
	rt := usercall.NewRunningTcs(3, usercall.ExecutableMain, q)

	q.Send(usercall.EventUnpark | usercall.EventReturnqNotEmpty)

	e, err := rt.Wait(usercall.EventUnpark, false)
	AssertEq(nil, err)
	AssertEq(usercall.EventUnpark, e)

	e2, err := rt.Wait(usercall.EventReturnqNotEmpty, false)
	AssertEq(nil, err)
	AssertEq(usercall.EventReturnqNotEmpty, e2)
}
