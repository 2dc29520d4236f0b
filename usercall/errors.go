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

import (
	"errors"
	"fmt"
)

// Transient I/O and protocol-misuse sentinels, per §7's taxonomy
// categories 1-3. Handlers return these directly; the reactor resumes
// the enclave with them encoded rather than treating them as aborts.
var (
	ErrBrokenPipe        = errors.New("broken pipe")
	ErrWouldBlock        = errors.New("would block")
	ErrNotConnected      = errors.New("not connected")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConnectionRefused = errors.New("connection refused")
	ErrOther             = errors.New("other")
)

// AbortKind discriminates the EnclaveAbort sum type of §3/§7.
type AbortKind int

const (
	AbortExit AbortKind = iota
	AbortSecondary
	AbortIndefiniteWait
	AbortInvalidUsercall
	AbortMainReturned
)

// EnclaveAbort is a control-flow outcome that bypasses the enclave
// entirely and is handled by the reactor's return task rather than
// being resumed as an ordinary usercall result.
type EnclaveAbort struct {
	Kind AbortKind

	// Panic and Message apply only to Kind == AbortExit.
	Panic   bool
	Message string

	// Usercall applies only to Kind == AbortInvalidUsercall.
	Usercall uint64
}

func (e *EnclaveAbort) Error() string {
	switch e.Kind {
	case AbortExit:
		if e.Panic {
			return fmt.Sprintf("panic: %s", e.Message)
		}
		return "exit"
	case AbortSecondary:
		return "secondary"
	case AbortIndefiniteWait:
		return "all threads waiting indefinitely for CPU resources, denying other threads from running. This might be caused by a deadlock."
	case AbortInvalidUsercall:
		return fmt.Sprintf("invalid usercall 0x%x", e.Usercall)
	case AbortMainReturned:
		return "main entrypoint returned in violation of spec"
	default:
		return "enclave abort"
	}
}

// IsPanic reports whether e is a panic-shaped Exit abort.
func (e *EnclaveAbort) IsPanic() bool {
	return e != nil && e.Kind == AbortExit && e.Panic
}
