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
	"bytes"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"

	"github.com/enclaveos/runtime/usercall"
)

func TestSupervisorInvariants(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type SupervisorInvariantsTest struct {
}

func init() { RegisterTestSuite(&SupervisorInvariantsTest{}) }

func newTestSupervisor(tcses ...usercall.TcsAddress) *Supervisor {
	return NewSupervisor(tcses, true, nil, false, nil, &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
}

////////////////////////////////////////////////////////////////////////
// Property 1: duplicate TCS registration is a fatal assertion.
////////////////////////////////////////////////////////////////////////

func (t *SupervisorInvariantsTest) DuplicateTcsPanics() {
	defer func() {
		r := recover()
		AssertNe(nil, r)
		msg, ok := r.(string)
		AssertTrue(ok, "panic value: %v", r)
		ExpectTrue(strings.Contains(msg, "duplicate"), "panic = %v", msg)
	}()
	newTestSupervisor(1, 1)
	ExpectTrue(false, "expected a panic from duplicate TCS registration")
}

////////////////////////////////////////////////////////////////////////
// Property 4: send(mask, Some(unknown-tcs)) is InvalidInput and
// modifies no queue.
////////////////////////////////////////////////////////////////////////

func (t *SupervisorInvariantsTest) SendToUnknownTcsIsRejectedAndHarmless() {
	sup := newTestSupervisor(1, 2)
	target := usercall.TcsAddress(99)

	err := sup.Send(usercall.EventUnpark, &target)
	ExpectThat(err, Equals(usercall.ErrInvalidInput))

	for _, tcs := range []usercall.TcsAddress{1, 2} {
		rt := usercall.NewRunningTcs(tcs, usercall.ExecutableNonMain, sup.QueueFor(tcs))
		_, waitErr := rt.Wait(usercall.EventUnpark, false)
		ExpectThat(waitErr, Equals(usercall.ErrWouldBlock))
	}
}

////////////////////////////////////////////////////////////////////////
// Property 5: after AbortAllThreads, exiting is true and every queue
// has an abort event pending.
////////////////////////////////////////////////////////////////////////

func (t *SupervisorInvariantsTest) AbortAllThreadsMarksExitingAndEveryQueue() {
	sup := newTestSupervisor(1, 2, 3)
	sup.AbortAllThreads()

	ExpectTrue(sup.Exiting())

	for _, tcs := range []usercall.TcsAddress{1, 2, 3} {
		rt := usercall.NewRunningTcs(tcs, usercall.ExecutableNonMain, sup.QueueFor(tcs))
		_, err := rt.Wait(usercall.EventUnpark, false)
		ExpectNe(nil, err)
		ExpectNe(usercall.ErrWouldBlock, err)
	}
}

////////////////////////////////////////////////////////////////////////
// S4: wait/send across threads, with cross-mask buffering.
////////////////////////////////////////////////////////////////////////

func (t *SupervisorInvariantsTest) WaitSendAcrossThreadsBuffersUnmatchedBits() {
	sup := newTestSupervisor(1, 2)
	a := usercall.TcsAddress(1)

	resultCh := make(chan uint8, 1)
	go func() {
		rt := usercall.NewRunningTcs(a, usercall.ExecutableNonMain, sup.QueueFor(a))
		e, err := rt.Wait(usercall.EventUnpark, true)
		AssertEq(nil, err)
		resultCh <- e

		e2, err := rt.Wait(usercall.EventReturnqNotEmpty, false)
		AssertEq(nil, err)
		resultCh <- e2
	}()

	err := sup.Send(usercall.EventUnpark|usercall.EventReturnqNotEmpty, &a)
	AssertEq(nil, err)

	first := <-resultCh
	AssertEq(usercall.EventUnpark, first)

	second := <-resultCh
	AssertEq(usercall.EventReturnqNotEmpty, second)
}

////////////////////////////////////////////////////////////////////////
// Property 7: idempotent panic reporting — multiple exit(panic=false)
// reports from distinct non-main threads collapse to one primary slot.
////////////////////////////////////////////////////////////////////////

func (t *SupervisorInvariantsTest) PanicReportsCollapseToOnePrimary() {
	agg := newPanicAggregator()

	a := &usercall.EnclaveAbort{Kind: usercall.AbortExit}
	b := &usercall.EnclaveAbort{Kind: usercall.AbortExit}
	c := &usercall.EnclaveAbort{Kind: usercall.AbortInvalidUsercall}

	agg.report(a)
	agg.report(b)
	agg.report(c)

	diff := pretty.Compare(a, agg.Primary())
	ExpectEq("", diff, "primary PanicReason diverged from what was first reported:\n%s", diff)

	others := agg.Others()
	AssertEq(2, len(others))
	ExpectEq(b, others[0])
	ExpectEq(c, others[1])
}
