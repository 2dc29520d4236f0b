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

// Command echo is scenario S1: a library enclave with a single TCS
// that writes "hi" to stdout, flushes it, and returns (0, 0).
package main

import (
	"fmt"
	"log"

	"github.com/enclaveos/runtime"
	"github.com/enclaveos/runtime/enclavetest"
	"github.com/enclaveos/runtime/usercall"
)

const tcs usercall.TcsAddress = 1

func main() {
	coro := enclavetest.New()
	coro.Register(tcs, func(y *enclavetest.Yielder, p1, p2, p3, p4, p5 uint64) {
		y.Do(usercall.Request{Op: usercall.OpWrite, Fd: 1, Buf: []byte("hi")})
		y.Do(usercall.Request{Op: usercall.OpFlush, Fd: 1})
		y.Return(0, 0)
	})

	lib := enclave.Library([]usercall.TcsAddress{tcs}, enclave.Config{})

	v1, v2, err := lib.LibraryEntry(coro, 0, 0, 0, 0, 0)
	if err != nil {
		log.Fatalf("library_entry: %v", err)
	}
	fmt.Printf("library_entry returned (%d, %d)\n", v1, v2)
}
