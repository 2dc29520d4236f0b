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

import "context"

// Input bundles the per-call context a Handler method needs:
// currently just the RunningTcs that issued the usercall, so a wait
// or send implementation can reach its event-queue state. Modeled
// after the IOHandlerInput of §4.2.
type Input struct {
	Running *RunningTcs
}

// Handler is the usercall handler surface of §4.7. Every method takes
// an Input and returns either a result or one of the sentinel errors
// in errors.go; Exit is the exception, always returning an
// EnclaveAbort rather than an ordinary error, since "exit" never
// resumes the enclave.
type Handler interface {
	Read(ctx context.Context, in *Input, fd uint64, buf []byte) (n int, err error)
	ReadAlloc(ctx context.Context, in *Input, fd uint64) (data []byte, err error)
	Write(ctx context.Context, in *Input, fd uint64, buf []byte) (n int, err error)
	Flush(ctx context.Context, in *Input, fd uint64) error
	Close(ctx context.Context, in *Input, fd uint64)

	BindStream(ctx context.Context, in *Input, addr string, wantLocal bool) (fd uint64, local string, err error)
	AcceptStream(ctx context.Context, in *Input, fd uint64, wantLocal, wantPeer bool) (newFd uint64, local, peer string, err error)
	ConnectStream(ctx context.Context, in *Input, addr string, wantLocal, wantPeer bool) (newFd uint64, local, peer string, err error)

	LaunchThread(ctx context.Context, in *Input) error
	Exit(ctx context.Context, in *Input, isPanic bool) *EnclaveAbort

	Wait(ctx context.Context, in *Input, mask uint8, indefinite bool) (event uint8, err error)
	Send(ctx context.Context, in *Input, mask uint8, target *TcsAddress) error

	InsecureTime(ctx context.Context, in *Input) int64

	Alloc(ctx context.Context, in *Input, size, align uint64) (ptr uint64, err error)
	Free(ctx context.Context, in *Input, ptr, size, align uint64) error

	AsyncQueues(ctx context.Context, in *Input) error
}
