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

// Package semaphore bounds the number of concurrently running workers
// behind a context-aware acquire / release pair, optionally rendering
// progress bars (mpb) for long-running batches.
package semaphore

import (
	"context"
	"runtime"

	sdksmp "golang.org/x/sync/semaphore"
)

// Semaphore bounds a group of workers. It is also a context.Context
// covering the whole group: cancelling it releases every blocked
// NewWorker call.
type Semaphore interface {
	context.Context

	// New returns a fresh, independent semaphore with the same parent
	// context, weight and progress mode.
	New() Semaphore

	// Clone is New, but a progress-enabled semaphore shares its bar
	// container with the clone so their bars render together.
	Clone() Semaphore

	// Weighted returns the configured maximum number of simultaneous
	// workers, or a negative value for an unbounded semaphore.
	Weighted() int64

	// NewWorker blocks until a worker slot is free, or the semaphore's
	// context ends.
	NewWorker() error

	// NewWorkerTry acquires a worker slot only if one is immediately
	// free.
	NewWorkerTry() bool

	// DeferWorker releases one worker slot.
	DeferWorker()

	// WaitAll blocks until every worker slot is free again.
	WaitAll() error

	// DeferMain terminates the semaphore: the group context is
	// cancelled and the progress rendering, if any, is released.
	DeferMain()

	// BarBytes registers a byte-count progress bar (sizes rendered in
	// binary units). prev, when not nil, queues this bar after it.
	BarBytes(name, msg string, total int64, drop bool, prev Bar) Bar

	// BarTime registers a progress bar decorated with elapsed time.
	BarTime(name, msg string, total int64, drop bool, prev Bar) Bar

	// BarNumber registers a plain counter progress bar.
	BarNumber(name, msg string, total int64, drop bool, prev Bar) Bar

	// BarOpts registers an undecorated bar.
	BarOpts(total int64, drop bool) Bar
}

// Bar is one progress bar tied to its semaphore: worker slots acquired
// through the bar increment it on release. On a semaphore built without
// progress every bar is a no-op shell with a zero total.
type Bar interface {
	// NewWorker acquires a worker slot from the owning semaphore.
	NewWorker() error

	// NewWorkerTry acquires a worker slot only if immediately free.
	NewWorkerTry() bool

	// DeferWorker increments the bar then releases the worker slot.
	DeferWorker()

	// Total returns the bar total, zero when progress is disabled.
	Total() int64

	// Inc advances the bar.
	Inc(n int)

	// Inc64 advances the bar.
	Inc64(n int64)

	// Complete marks the bar finished.
	Complete()

	// Completed reports whether the bar finished.
	Completed() bool
}

// MaxSimultaneous returns the hard ceiling applied to any requested
// concurrency, derived from the host's CPU count.
func MaxSimultaneous() int64 {
	return int64(runtime.NumCPU())
}

// SetSimultaneous clamps a requested concurrency into ]0, MaxSimultaneous].
func SetSimultaneous(n int64) int64 {
	if m := MaxSimultaneous(); n <= 0 || n > m {
		return m
	}

	return n
}

// New returns a semaphore allowing up to nbr simultaneous workers (a
// negative nbr means unbounded), bound to the given parent context.
// With pgb, worker batches can render progress bars.
func New(ctx context.Context, nbr int, pgb bool) Semaphore {
	if ctx == nil {
		ctx = context.Background()
	}

	x, n := context.WithCancel(ctx)

	o := &sem{
		prt: ctx,
		ctx: x,
		cnl: n,
		nbr: int64(nbr),
	}

	if nbr > 0 {
		o.swg = sdksmp.NewWeighted(int64(nbr))
	}

	if pgb {
		o.pgb = newProgress(x)
	}

	return o
}
