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
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func newProgress(ctx context.Context) *mpb.Progress {
	return mpb.NewWithContext(
		ctx,
		mpb.WithWidth(64),
	)
}

type sBar struct {
	s *sem
	b *mpb.Bar
	t int64
	c atomic.Bool
}

func (o *sem) newBar(total int64, drop bool, prev Bar, decorators ...mpb.BarOption) Bar {
	if o.pgb == nil {
		return &sBar{s: o}
	}

	opt := make([]mpb.BarOption, 0, len(decorators)+2)
	opt = append(opt, decorators...)

	if drop {
		opt = append(opt, mpb.BarRemoveOnComplete())
	}

	if p, k := prev.(*sBar); k && p != nil && p.b != nil {
		opt = append(opt, mpb.BarQueueAfter(p.b))
	}

	return &sBar{
		s: o,
		b: o.pgb.AddBar(total, opt...),
		t: total,
	}
}

func (o *sem) BarBytes(name, msg string, total int64, drop bool, prev Bar) Bar {
	return o.newBar(total, drop, prev,
		mpb.PrependDecorators(
			decor.Name(name),
			decor.Name(" "),
			decor.Name(msg),
		),
		mpb.AppendDecorators(
			decor.Counters(decor.SizeB1024(0), "% .2f / % .2f"),
			decor.Percentage(),
		),
	)
}

func (o *sem) BarTime(name, msg string, total int64, drop bool, prev Bar) Bar {
	return o.newBar(total, drop, prev,
		mpb.PrependDecorators(
			decor.Name(name),
			decor.Name(" "),
			decor.Name(msg),
		),
		mpb.AppendDecorators(
			decor.Elapsed(decor.ET_STYLE_GO),
			decor.Percentage(),
		),
	)
}

func (o *sem) BarNumber(name, msg string, total int64, drop bool, prev Bar) Bar {
	return o.newBar(total, drop, prev,
		mpb.PrependDecorators(
			decor.Name(name),
			decor.Name(" "),
			decor.Name(msg),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("%d / %d"),
			decor.Percentage(),
		),
	)
}

func (o *sem) BarOpts(total int64, drop bool) Bar {
	return o.newBar(total, drop, nil)
}

func (o *sBar) NewWorker() error {
	return o.s.NewWorker()
}

func (o *sBar) NewWorkerTry() bool {
	return o.s.NewWorkerTry()
}

func (o *sBar) DeferWorker() {
	o.Inc(1)
	o.s.DeferWorker()
}

func (o *sBar) Total() int64 {
	return o.t
}

func (o *sBar) Inc(n int) {
	if o.b != nil {
		o.b.IncrBy(n)
	}
}

func (o *sBar) Inc64(n int64) {
	if o.b != nil {
		o.b.IncrInt64(n)
	}
}

func (o *sBar) Complete() {
	o.c.Store(true)

	if o.b != nil {
		o.b.SetTotal(-1, true)
	}
}

func (o *sBar) Completed() bool {
	if o.b != nil && o.b.Completed() {
		return true
	}

	return o.c.Load()
}
