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

package startStop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	libsrv "github.com/sabouaram/netacceptor/runner"
)

// instance is the state of one launched run. Each Start creates a fresh
// instance so a cancelled run's teardown never clobbers the state of
// its successor.
type instance struct {
	cnl context.CancelFunc
	run atomic.Bool
	ts  atomic.Int64
	one sync.Once
}

type sRun struct {
	ms sync.Mutex
	fs FuncRun
	fe FuncRun

	cur atomic.Pointer[instance]

	me  sync.Mutex
	err []error
}

func (o *sRun) appendError(e error) {
	if e == nil {
		return
	}

	o.me.Lock()
	defer o.me.Unlock()

	o.err = append(o.err, e)
}

func (o *sRun) resetErrors() {
	o.me.Lock()
	defer o.me.Unlock()

	o.err = nil
}

func (o *sRun) Start(ctx context.Context) error {
	o.ms.Lock()
	defer o.ms.Unlock()

	if old := o.cur.Load(); old != nil && old.cnl != nil {
		old.cnl()
	}

	o.resetErrors()

	x, n := context.WithCancel(ctx)
	ins := &instance{
		cnl: n,
	}

	o.cur.Store(ins)

	go o.process(ins, x)

	return nil
}

func (o *sRun) process(ins *instance, ctx context.Context) {
	defer func() {
		libsrv.RecoveryCaller("golib/runner/startstop/process", recover())
	}()

	ins.ts.Store(time.Now().UnixNano())
	ins.run.Store(true)

	defer func() {
		ins.run.Store(false)
		ins.ts.Store(0)
	}()

	if o.fs == nil {
		o.appendError(fmt.Errorf("startstop runner: invalid start function"))
		return
	}

	o.appendError(o.fs(ctx))
}

func (o *sRun) Stop(ctx context.Context) error {
	o.ms.Lock()
	defer o.ms.Unlock()

	ins := o.cur.Load()
	if ins == nil {
		return nil
	}

	var fst bool

	ins.one.Do(func() {
		if ins.cnl != nil {
			ins.cnl()
		}
		fst = true
	})

	if !fst {
		return nil
	}

	if o.fe == nil {
		o.appendError(fmt.Errorf("startstop runner: invalid stop function"))
		return nil
	}

	o.appendError(o.fe(ctx))
	return nil
}

func (o *sRun) Restart(ctx context.Context) error {
	if e := o.Stop(ctx); e != nil {
		return e
	}

	return o.Start(ctx)
}

func (o *sRun) IsRunning() bool {
	if ins := o.cur.Load(); ins != nil {
		return ins.run.Load()
	}

	return false
}

func (o *sRun) Uptime() time.Duration {
	ins := o.cur.Load()
	if ins == nil || !ins.run.Load() {
		return 0
	}

	ts := ins.ts.Load()
	if ts == 0 {
		return 0
	}

	return time.Since(time.Unix(0, ts))
}

func (o *sRun) ErrorsLast() error {
	o.me.Lock()
	defer o.me.Unlock()

	if len(o.err) == 0 {
		return nil
	}

	return o.err[len(o.err)-1]
}

func (o *sRun) ErrorsList() []error {
	o.me.Lock()
	defer o.me.Unlock()

	if len(o.err) == 0 {
		return nil
	}

	lst := make([]error, len(o.err))
	copy(lst, o.err)
	return lst
}
