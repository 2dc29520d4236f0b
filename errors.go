// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package enclave

import "github.com/enclaveos/runtime/usercall"

// Re-exported for callers that only import the root package: the
// sentinel errors a usercall.Handler may return, and the EnclaveAbort
// sum type the reactor's return task aggregates.
var (
	ErrBrokenPipe        = usercall.ErrBrokenPipe
	ErrWouldBlock        = usercall.ErrWouldBlock
	ErrNotConnected      = usercall.ErrNotConnected
	ErrInvalidInput      = usercall.ErrInvalidInput
	ErrConnectionRefused = usercall.ErrConnectionRefused
	ErrOther             = usercall.ErrOther
)

// EnclaveAbort is the control-flow outcome type main_entry and
// library_entry return wrapped in an error.
type EnclaveAbort = usercall.EnclaveAbort
