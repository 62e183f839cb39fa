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

package semaphore

import (
	"context"
	"time"

	sdksmp "golang.org/x/sync/semaphore"
	"github.com/vbauerster/mpb/v8"
)

type sem struct {
	prt context.Context
	ctx context.Context
	cnl context.CancelFunc
	nbr int64
	swg *sdksmp.Weighted
	pgb *mpb.Progress
}

func (o *sem) Deadline() (time.Time, bool) {
	return o.ctx.Deadline()
}

func (o *sem) Done() <-chan struct{} {
	return o.ctx.Done()
}

func (o *sem) Err() error {
	return o.ctx.Err()
}

func (o *sem) Value(key any) any {
	return o.ctx.Value(key)
}

func (o *sem) New() Semaphore {
	return New(o.prt, int(o.nbr), o.pgb != nil)
}

func (o *sem) Clone() Semaphore {
	x, n := context.WithCancel(o.prt)

	c := &sem{
		prt: o.prt,
		ctx: x,
		cnl: n,
		nbr: o.nbr,
		pgb: o.pgb,
	}

	if o.nbr > 0 {
		c.swg = sdksmp.NewWeighted(o.nbr)
	}

	return c
}

func (o *sem) Weighted() int64 {
	return o.nbr
}

func (o *sem) NewWorker() error {
	if o.swg == nil {
		return nil
	}

	return o.swg.Acquire(o.ctx, 1)
}

func (o *sem) NewWorkerTry() bool {
	if o.swg == nil {
		return true
	}

	return o.swg.TryAcquire(1)
}

func (o *sem) DeferWorker() {
	if o.swg != nil {
		o.swg.Release(1)
	}
}

func (o *sem) WaitAll() error {
	if o.swg == nil {
		return nil
	}

	if e := o.swg.Acquire(o.ctx, o.nbr); e != nil {
		return e
	}

	o.swg.Release(o.nbr)
	return nil
}

// GetMPB exposes the shared progress container, nil when progress is
// disabled. Callers reach it through a type assertion to keep the
// Semaphore interface free of the mpb dependency.
func (o *sem) GetMPB() interface{} {
	if o.pgb == nil {
		return nil
	}

	return o.pgb
}

func (o *sem) DeferMain() {
	if o.cnl != nil {
		o.cnl()
	}
}
