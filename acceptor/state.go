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

	libatm "github.com/sabouaram/netacceptor/atomic"
)

// State is the Acceptor's position in its init -> running -> draining ->
// done lifecycle. Transitions are monotonic, with running -> done permitted
// for a forced stop.
type State int32

const (
	StateInit State = iota
	StateRunning
	StateDraining
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// globalPendingHandshakes aggregates numPendingHandshakes across every
// Acceptor in the process; the per-worker counters always sum to this
// aggregate.
var globalPendingHandshakes int32

// GlobalPendingHandshakes returns the process-wide pending-handshake count.
func GlobalPendingHandshakes() int32 {
	return atomic.LoadInt32(&globalPendingHandshakes)
}

func (a *Acceptor) state() State {
	return State(a.stateValue.Load())
}

func (a *Acceptor) setState(s State) {
	a.stateValue.Store(int32(s))
}

func newStateValue() libatm.Value[int32] {
	v := libatm.NewValue[int32]()
	v.Store(int32(StateInit))
	return v
}

func (a *Acceptor) incrementPendingHandshakes() {
	atomic.AddInt32(&a.numPendingHandshakes, 1)
	atomic.AddInt32(&globalPendingHandshakes, 1)
}

// DecrementPendingHandshakes implements handshake.Acceptor: it is called
// exactly once per handshake, on its terminal state.
func (a *Acceptor) DecrementPendingHandshakes() {
	atomic.AddInt32(&a.numPendingHandshakes, -1)
	atomic.AddInt32(&globalPendingHandshakes, -1)
	a.CheckDrained()
}

// NumPendingHandshakes returns this worker's in-flight handshake count.
func (a *Acceptor) NumPendingHandshakes() int32 {
	return atomic.LoadInt32(&a.numPendingHandshakes)
}
