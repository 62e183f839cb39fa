/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package acceptor

import (
	"sync/atomic"

	liblog "github.com/sabouaram/netacceptor/logger"
)

// ConnectionCounter supplies the live counters canAccept needs to evaluate
// load-shed thresholds. A nil ConnectionCounter means admission is
// unconditional.
type ConnectionCounter interface {
	// CurrentConnections is this worker's own live connection count, checked
	// against ServerSocketConfig's per-worker ceiling on the fast path.
	CurrentConnections() int
	// GlobalTotalForShed is the process-wide connection count consulted
	// against LoadShed.MaxConnections.
	GlobalTotalForShed() int
	// GlobalActiveForShed is the process-wide active (non-idle) connection
	// count consulted against LoadShed.MaxActiveConnections.
	GlobalActiveForShed() int
}

// rejectSampler rate-limits admission rejection logging to one entry
// out of every thousand rejects.
type rejectSampler struct {
	n uint64
}

func (s *rejectSampler) shouldLog() bool {
	return atomic.AddUint64(&s.n, 1)%1000 == 1
}

// canAccept runs the admission algorithm: a fast path on the
// per-worker ceiling, a whitelist bypass, and a lazily-evaluated load-shed
// check otherwise.
func (a *Acceptor) canAccept(remoteAddr string) bool {
	counter := a.connCounter
	if counter == nil {
		return true
	}

	maxConnections := a.socketConfig.MaxNumPendingConnectionsPerWorker
	if maxConnections == 0 {
		return true
	}

	if counter.CurrentConnections() < maxConnections {
		return true
	}

	if a.loadShed != nil && a.loadShed.IsWhitelisted(remoteAddr) {
		return true
	}

	totalExceeded := a.loadShed != nil &&
		a.loadShed.MaxConnections > 0 &&
		uint64(counter.GlobalTotalForShed()) >= a.loadShed.MaxConnections

	activeExceeded := false
	if !totalExceeded && a.loadShed != nil {
		activeExceeded = a.loadShed.MaxActiveConnections > 0 &&
			uint64(counter.GlobalActiveForShed()) >= a.loadShed.MaxActiveConnections
	}

	accepted := !totalExceeded && !activeExceeded
	if !accepted && a.rejects.shouldLog() {
		liblog.WarnLevel.Logf("acceptor %q: rejecting %s under load-shed (totalExceeded=%v activeExceeded=%v)", a.name, remoteAddr, totalExceeded, activeExceeded)
	}

	return accepted
}
