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

// Package evloop implements a minimal single-goroutine cooperative event
// loop: every task posted to it runs serialized, one at a time, on the same
// worker goroutine. Callers that route their state changes through one loop
// get cross-callback ordering without any locking of their own.
package evloop

import (
	"sync/atomic"
	"time"
)

// Loop serializes work onto a single worker goroutine.
type Loop struct {
	tasks  chan func()
	active int32
	closed chan struct{}
}

// New starts the loop's worker goroutine and returns the handle to post to.
func New() *Loop {
	l := &Loop{
		tasks:  make(chan func(), 1024),
		closed: make(chan struct{}),
	}

	go l.run()

	return l
}

func (l *Loop) run() {
	for {
		select {
		case t, ok := <-l.tasks:
			if !ok {
				close(l.closed)
				return
			}

			atomic.StoreInt32(&l.active, 1)
			t()
			atomic.StoreInt32(&l.active, 0)
		}
	}
}

// RunInLoop posts f to run on the loop goroutine and returns immediately.
func (l *Loop) RunInLoop(f func()) {
	l.tasks <- f
}

// RunInLoopThreadAndWait posts f and blocks until it has run.
func (l *Loop) RunInLoopThreadAndWait(f func()) {
	done := make(chan struct{})

	l.tasks <- func() {
		f()
		close(done)
	}

	<-done
}

// RunAfter schedules f to be posted to the loop after d elapses.
func (l *Loop) RunAfter(d time.Duration, f func()) *time.Timer {
	return time.AfterFunc(d, func() {
		l.RunInLoop(f)
	})
}

// IsInLoopThread is a best-effort check: true only while a task posted to
// this loop is actively executing. It is meaningful when called from inside
// a callback dispatched by this loop, which is its only legitimate use.
func (l *Loop) IsInLoopThread() bool {
	return atomic.LoadInt32(&l.active) == 1
}

// Terminate stops accepting new work. Tasks already queued still run.
func (l *Loop) Terminate() {
	close(l.tasks)
	<-l.closed
}
