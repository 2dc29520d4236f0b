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
	"context"
	"testing"

	"golang.org/x/net/nettest"

	"github.com/enclaveos/runtime/usercall"
)

// TestConnectStreamRefusedOnUnusedLoopbackPort grounds
// connect_stream's ConnectionRefused mapping in a genuinely free
// port: nettest.NewLocalListener finds one portably (no hardcoded
// port racing another test process), and closing it immediately
// leaves an address nothing is listening on.
func TestConnectStreamRefusedOnUnusedLoopbackPort(t *testing.T) {
	ln, err := nettest.NewLocalListener("tcp")
	if err != nil {
		t.Fatalf("nettest.NewLocalListener: %v", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatalf("closing probe listener: %v", err)
	}

	h := &handlerImpl{sup: newTestSupervisor(1)}
	_, _, _, err = h.ConnectStream(context.Background(), &usercall.Input{}, addr, false, false)
	if err != usercall.ErrConnectionRefused {
		t.Fatalf("ConnectStream to closed port = %v, want ErrConnectionRefused", err)
	}
}
