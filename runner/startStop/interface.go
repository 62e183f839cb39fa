/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2023 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package startStop wraps one long-running function and its shutdown
// counterpart into a restartable lifecycle: the run function executes in
// a dedicated goroutine under a cancellable context, and the runner
// tracks running state, uptime and the errors of the last run.
package startStop

import (
	"context"
	"time"
)

// FuncRun is the signature of both the run and the close function: a
// context-bound operation returning its terminal error.
type FuncRun func(ctx context.Context) error

// StartStop drives one background run function. All methods are safe
// for concurrent use.
type StartStop interface {
	// Start launches the run function in a new goroutine. A previous
	// run still in flight is cancelled first, and the error history is
	// reset. The call itself returns promptly; errors of the run
	// function are collected asynchronously (see ErrorsLast).
	Start(ctx context.Context) error

	// Stop cancels the in-flight run and invokes the close function
	// once per started run. Calling Stop on an idle runner is a no-op.
	Stop(ctx context.Context) error

	// Restart is Stop followed by Start.
	Restart(ctx context.Context) error

	// IsRunning reports whether the run function is currently executing.
	IsRunning() bool

	// Uptime returns the elapsed time since the current run started,
	// or zero when idle.
	Uptime() time.Duration

	// ErrorsLast returns the most recent error of the current run, or
	// nil if none occurred.
	ErrorsLast() error

	// ErrorsList returns all errors collected since the last Start.
	ErrorsList() []error
}

// New returns a StartStop runner around the given run and close
// functions. Either function may be nil; starting or stopping then
// records an invalid-function error instead of panicking.
func New(run FuncRun, cls FuncRun) StartStop {
	return &sRun{
		fs: run,
		fe: cls,
	}
}
