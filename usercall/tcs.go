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

import "fmt"

// TcsAddress is the opaque address of a TCS page. It is unique for as
// long as the TCS is live and is used as the key for its event queue.
type TcsAddress uintptr

func (a TcsAddress) String() string {
	return fmt.Sprintf("tcs:%#x", uintptr(a))
}

// EntryMode classifies how a TCS was most recently entered. The
// reactor's return task branches on this to decide whether a Return
// outcome should be delivered to the caller, dropped, or treated as a
// protocol violation.
type EntryMode int

const (
	// ExecutableMain is the distinguished main TCS of a command
	// enclave. Its ordinary return is a protocol violation.
	ExecutableMain EntryMode = iota

	// ExecutableNonMain is any other TCS of a command enclave,
	// including ones launched at runtime via launch_thread.
	ExecutableNonMain

	// Library is a TCS of a library enclave, entered per call.
	Library
)

func (m EntryMode) String() string {
	switch m {
	case ExecutableMain:
		return "ExecutableMain"
	case ExecutableNonMain:
		return "ExecutableNonMain"
	case Library:
		return "Library"
	default:
		return fmt.Sprintf("EntryMode(%d)", int(m))
	}
}
