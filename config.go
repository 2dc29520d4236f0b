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
	"io"
	"os"

	"github.com/jacobsa/timeutil"
)

// Config is optional configuration accepted by MainEntry and Library,
// modeled on the teacher's MountConfig: a small struct of knobs,
// defaulted sensibly when the zero value is passed.
type Config struct {
	// ForwardPanics, if true, makes an enclave panic abort the host
	// process (via log.Fatal) instead of being reported through the
	// ordinary error return. Only MainEntry honours it; Library
	// ignores it and LibraryEntry always reports a panic as an error.
	ForwardPanics bool

	// Workers overrides the worker-pool size for a command enclave.
	// Zero means runtime.NumCPU().
	Workers int

	// Ext supplies optional overrides for bind_stream/connect_stream.
	// Nil means "always use the built-in TCP implementation".
	Ext Extension

	// Clock supplies insecure_time's answer. Nil means the real wall
	// clock (timeutil.RealClock()).
	Clock timeutil.Clock

	// Stdin, Stdout, Stderr back fds 0, 1, 2. Nil means the host's own
	// os.Stdin/os.Stdout/os.Stderr.
	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

func (c Config) clock() timeutil.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return timeutil.RealClock()
}

func (c Config) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

func (c Config) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c Config) stderr() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}
