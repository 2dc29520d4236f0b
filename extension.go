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

import "net"

// Extension supplies optional overrides for bind_stream and
// connect_stream. Returning (nil, false, nil) from either method
// means "use the built-in TCP implementation"; returning a non-nil
// value with ok=true installs it directly, bypassing net.Listen /
// net.Dial.
type Extension interface {
	BindStream(addr string) (net.Listener, bool, error)
	ConnectStream(addr string) (net.Conn, bool, error)
}

// NoExtension is the default "always use TCP" extension, used when
// Config.Ext is nil.
type NoExtension struct{}

func (NoExtension) BindStream(addr string) (net.Listener, bool, error) {
	return nil, false, nil
}

func (NoExtension) ConnectStream(addr string) (net.Conn, bool, error) {
	return nil, false, nil
}
