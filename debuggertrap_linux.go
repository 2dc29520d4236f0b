//go:build linux

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
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/enclaveos/runtime/usercall"
)

// debuggerTrapMu serialises installing and restoring the SIGTRAP
// handler per §4.9: a process-wide cooperative mutex, since only one
// panic path can be mid-trap at a time.
var debuggerTrapMu sync.Mutex

// trapDebugger raises SIGTRAP at the process, giving an attached
// debugger a chance to intercept it. The tcs argument is not passed
// along: nothing in the raised signal identifies the faulting enclave
// thread. SIGTRAP's default disposition is terminate-with-core, so a
// debugger-less run must not let that default stand: we register our
// own handler via signal.Notify before raising the signal, so the
// runtime (not the kernel default action) receives it, and restore
// the prior disposition once the raise has been observed. A real
// debugger attaches with PTRACE_O_TRACESYSGOOD/ptrace stop semantics
// and intercepts the signal before our handler ever sees it; absent
// one, this simply advances past the trap and execution continues.
func trapDebugger(tcs usercall.TcsAddress) {
	debuggerTrapMu.Lock()
	defer debuggerTrapMu.Unlock()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTRAP)
	defer signal.Stop(ch)

	if err := unix.Kill(unix.Getpid(), unix.SIGTRAP); err != nil {
		return
	}
	<-ch
}
