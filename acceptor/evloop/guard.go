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

package evloop

import "sync/atomic"

// Guarded embeds the delayed-destruction bookkeeping: a pending-guard
// counter plus a "destroy requested" flag. Hold a Guard for the duration of
// any callback dispatch that might, directly or indirectly, request this
// object's destruction; actual destruction is deferred until the last guard
// of the current dispatch unwinds.
type Guarded struct {
	refs    int32
	pending int32
	fired   int32
	destroy func()
}

// OnDestroy sets the function invoked once the object has no outstanding
// guard and destruction has been requested. Set it before the first Guard
// or RequestDestroy; it is read without further synchronization.
func (g *Guarded) OnDestroy(f func()) {
	g.destroy = f
}

// Guard acquires a delayed-destruction guard; release it with Release,
// typically via defer immediately after acquiring it.
func (g *Guarded) Guard() *Guard {
	atomic.AddInt32(&g.refs, 1)
	return &Guard{g: g}
}

// RequestDestroy marks the object for destruction. If no guard is currently
// held, destroy fires synchronously; otherwise it fires when the last held
// guard releases.
func (g *Guarded) RequestDestroy() {
	atomic.StoreInt32(&g.pending, 1)
	g.maybeFire()
}

func (g *Guarded) maybeFire() {
	if atomic.LoadInt32(&g.pending) != 1 || atomic.LoadInt32(&g.refs) != 0 || g.destroy == nil {
		return
	}

	if atomic.CompareAndSwapInt32(&g.fired, 0, 1) {
		g.destroy()
	}
}

// Guard is a single outstanding delayed-destruction hold.
type Guard struct {
	g        *Guarded
	released bool
}

// Release unwinds this guard. Safe to call more than once.
func (dg *Guard) Release() {
	if dg == nil || dg.released {
		return
	}

	dg.released = true
	atomic.AddInt32(&dg.g.refs, -1)
	dg.g.maybeFire()
}
