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

// Package runner holds the shared helpers of the lifecycle runners
// (see the startStop subpackage) and the panic-recovery reporting used
// by every long-lived goroutine of this module.
package runner

import (
	"fmt"
	"os"
	"runtime/debug"
)

// RecoveryCaller reports a recovered panic from a background goroutine.
// It is a no-op when rec is nil, so callers can invoke it directly with
// the result of recover(). The report goes to stderr rather than the
// logger: the logger's own hooks run through goroutines guarded by this
// very function.
func RecoveryCaller(caller string, rec interface{}, info ...string) {
	if rec == nil {
		return
	}

	_, _ = fmt.Fprintf(os.Stderr, "panic recovered [%s]: %v\n", caller, rec)

	for _, i := range info {
		_, _ = fmt.Fprintf(os.Stderr, "\t%s\n", i)
	}

	_, _ = os.Stderr.Write(debug.Stack())
}
