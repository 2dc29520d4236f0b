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

// Package enclaveutil holds helpers for building usercall.Handler
// implementations, mirroring fuseutil's role for fuseops.FileSystem.
package enclaveutil

import (
	"context"
	"fmt"

	"github.com/enclaveos/runtime/usercall"
)

// NotImplementedHandler implements usercall.Handler with every method
// returning a deterministic "not implemented" error (except Exit,
// which aborts with AbortInvalidUsercall, Close, which does nothing,
// and InsecureTime, which returns 0), so that a caller can embed it
// and override only the operations it actually supports.
type NotImplementedHandler struct{}

var _ usercall.Handler = NotImplementedHandler{}

func (NotImplementedHandler) notImplemented(op string) error {
	return fmt.Errorf("enclaveutil: %s not implemented", op)
}

func (h NotImplementedHandler) Read(ctx context.Context, in *usercall.Input, fd uint64, buf []byte) (int, error) {
	return 0, h.notImplemented("Read")
}

func (h NotImplementedHandler) ReadAlloc(ctx context.Context, in *usercall.Input, fd uint64) ([]byte, error) {
	return nil, h.notImplemented("ReadAlloc")
}

func (h NotImplementedHandler) Write(ctx context.Context, in *usercall.Input, fd uint64, buf []byte) (int, error) {
	return 0, h.notImplemented("Write")
}

func (h NotImplementedHandler) Flush(ctx context.Context, in *usercall.Input, fd uint64) error {
	return h.notImplemented("Flush")
}

func (h NotImplementedHandler) Close(ctx context.Context, in *usercall.Input, fd uint64) {
}

func (h NotImplementedHandler) BindStream(ctx context.Context, in *usercall.Input, addr string, wantLocal bool) (uint64, string, error) {
	return 0, "", h.notImplemented("BindStream")
}

func (h NotImplementedHandler) AcceptStream(ctx context.Context, in *usercall.Input, fd uint64, wantLocal, wantPeer bool) (uint64, string, string, error) {
	return 0, "", "", h.notImplemented("AcceptStream")
}

func (h NotImplementedHandler) ConnectStream(ctx context.Context, in *usercall.Input, addr string, wantLocal, wantPeer bool) (uint64, string, string, error) {
	return 0, "", "", h.notImplemented("ConnectStream")
}

func (h NotImplementedHandler) LaunchThread(ctx context.Context, in *usercall.Input) error {
	return h.notImplemented("LaunchThread")
}

func (h NotImplementedHandler) Exit(ctx context.Context, in *usercall.Input, isPanic bool) *usercall.EnclaveAbort {
	return &usercall.EnclaveAbort{Kind: usercall.AbortInvalidUsercall}
}

func (h NotImplementedHandler) Wait(ctx context.Context, in *usercall.Input, mask uint8, indefinite bool) (uint8, error) {
	return 0, h.notImplemented("Wait")
}

func (h NotImplementedHandler) Send(ctx context.Context, in *usercall.Input, mask uint8, target *usercall.TcsAddress) error {
	return h.notImplemented("Send")
}

func (h NotImplementedHandler) InsecureTime(ctx context.Context, in *usercall.Input) int64 {
	return 0
}

func (h NotImplementedHandler) Alloc(ctx context.Context, in *usercall.Input, size, align uint64) (uint64, error) {
	return 0, h.notImplemented("Alloc")
}

func (h NotImplementedHandler) Free(ctx context.Context, in *usercall.Input, ptr, size, align uint64) error {
	return h.notImplemented("Free")
}

func (h NotImplementedHandler) AsyncQueues(ctx context.Context, in *usercall.Input) error {
	return h.notImplemented("AsyncQueues")
}
