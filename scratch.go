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

	"github.com/enclaveos/runtime/usercall"
)

// parseScratch reads a panic message an enclave wrote into its
// scratch buffer before yielding Exit{panic:true}, per §3's
// UsercallSendData and §7's propagation policy. The enclave is
// expected to have written only the message bytes, leaving the rest
// of the buffer zeroed; a NUL terminates the message if present.
func parseScratch(scratch *[1024]byte) string {
	if scratch == nil {
		return ""
	}
	b := scratch[:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// scratchPayload builds the bytes a resumed coroutine should find in
// its fresh scratch buffer, per ResumeEntry.ScratchPayload: the
// read_alloc'd bytes verbatim, or local and peer address strings
// NUL-separated, or nil if the result carries neither.
func scratchPayload(result usercall.Result) []byte {
	if result.ReadAlloc != nil {
		return result.ReadAlloc
	}
	if result.Local == "" && result.Peer == "" {
		return nil
	}
	b := append([]byte(result.Local), 0)
	b = append(b, []byte(result.Peer)...)
	return b
}
