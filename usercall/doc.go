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

// Package usercall defines the types an enclave usercall dispatcher
// operates on: TCS identity and running state, the per-TCS event
// queue, the EnclaveAbort control-flow outcomes, and the Handler
// interface the reactor drives. It mirrors the way fuseops holds the
// typed request/response shapes for the connection in the root
// package, independent of how they get dispatched.
package usercall
